package export

import (
	"strings"
	"testing"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2) != "" {
		t.Error("nil canvas should give empty output")
	}

	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 2)

	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 dots, got %d", got)
	}
	if !strings.Contains(svg, `width="8" height="8"`) {
		t.Errorf("unexpected size in %s", svg)
	}
}

func TestFinalStateSVG(t *testing.T) {
	states := []particle.State{
		{Name: "A", X: 25, Y: 25, VX: 1, Radius: 5},
		{Name: "<B>", X: 75, Y: 50, Radius: 10},
	}
	svg := FinalStateSVG(100, states, 200)

	if !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("svg not closed")
	}
	if !strings.Contains(svg, `cx="50.00" cy="150.00" r="10.00"`) {
		t.Errorf("particle A misplaced:\n%s", svg)
	}
	if !strings.Contains(svg, `cx="150.00" cy="100.00" r="20.00"`) {
		t.Errorf("particle B misplaced:\n%s", svg)
	}
	if !strings.Contains(svg, "&lt;B&gt;") {
		t.Error("name not escaped")
	}
	if FinalStateSVG(0, states, 200) != "" {
		t.Error("zero width should give empty output")
	}
}

func TestTrajectorySVG(t *testing.T) {
	if TrajectorySVG([][2]float64{{1, 1}}, 100, 100, "#fff") != "" {
		t.Error("single point should give empty output")
	}

	svg := TrajectorySVG([][2]float64{{95, 50}, {5, 50}, {95, 50}}, 100, 100, "#00ff00")
	if !strings.Contains(svg, `d="M95.0,50.0 L5.0,50.0 L95.0,50.0"`) {
		t.Errorf("unexpected path:\n%s", svg)
	}
}
