package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/viz"
)

var palette = []string{"#00ff88", "#00ccff", "#ffcc00", "#ff6b6b", "#ff9ff3", "#feca57", "#54a0ff", "#5fd068"}

func header(sb *strings.Builder, w, h float64) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, w, h, w, h))
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	dw, dh := canvas.Dots()
	var sb strings.Builder
	header(&sb, float64(dw)*scale, float64(dh)*scale)
	sb.WriteString("<g fill=\"#00ff00\">\n")

	dotRadius := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// FinalStateSVG draws the box and every particle at its recorded position.
// size is the rendered edge length in pixels; y grows upward as in the box.
func FinalStateSVG(width int, states []particle.State, size int) string {
	if width <= 0 || size <= 0 {
		return ""
	}
	scale := float64(size) / float64(width)

	var sb strings.Builder
	header(&sb, float64(size), float64(size))
	sb.WriteString(fmt.Sprintf("<rect x=\"0.5\" y=\"0.5\" width=\"%d\" height=\"%d\" fill=\"none\" stroke=\"#444466\"/>\n", size-1, size-1))

	for i, s := range states {
		color := palette[i%len(palette)]
		cx := s.X * scale
		cy := float64(size) - s.Y*scale
		sb.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\"><title>%s</title></circle>\n",
			cx, cy, s.Radius*scale, color, escape(s.Name)))

		// velocity arrow over one time unit
		sb.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"1\"/>\n",
			cx, cy, cx+s.VX*scale, cy-s.VY*scale, color))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectorySVG draws the path through a particle's recorded impact points in
// box coordinates. Between impacts motion is straight, so the polyline is exact.
func TrajectorySVG(points [][2]float64, width int, size int, strokeColor string) string {
	if len(points) < 2 || width <= 0 || size <= 0 {
		return ""
	}
	scale := float64(size) / float64(width)

	var sb strings.Builder
	header(&sb, float64(size), float64(size))
	sb.WriteString(fmt.Sprintf("<rect x=\"0.5\" y=\"0.5\" width=\"%d\" height=\"%d\" fill=\"none\" stroke=\"#444466\"/>\n", size-1, size-1))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))

	for i, p := range points {
		x := p[0] * scale
		y := float64(size) - p[1]*scale
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
