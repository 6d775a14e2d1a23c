package config

import (
	"math"
	"sort"

	"github.com/san-kum/particlesim/internal/particle"
)

var Presets = map[string]*Config{
	"head_on": {
		Name: "head_on", Width: 100, Duration: 100, Speed: 10, FPS: DefaultFPS,
		Particles: []particle.State{
			{Name: "A", X: 10, Y: 50, VX: 5, VY: 0, Radius: 5},
			{Name: "B", X: 90, Y: 50, VX: -5, VY: 0, Radius: 5},
		},
	},
	"wall_bounce": {
		Name: "wall_bounce", Width: 100, Duration: 40, Speed: 5, FPS: DefaultFPS,
		Particles: []particle.State{
			{Name: "P", X: 90, Y: 50, VX: 5, VY: 0, Radius: 5},
		},
	},
	"diverging": {
		Name: "diverging", Width: 100, Duration: 8, Speed: 2, FPS: DefaultFPS,
		Particles: []particle.State{
			{Name: "L", X: 40, Y: 50, VX: -5, VY: 0, Radius: 5},
			{Name: "R", X: 60, Y: 50, VX: 5, VY: 0, Radius: 5},
		},
	},
	"newton_cradle": {
		Name: "newton_cradle", Width: 200, Duration: 120, Speed: 20, FPS: DefaultFPS,
		Particles: []particle.State{
			{Name: "striker", X: 20, Y: 100, VX: 10, VY: 0, Radius: 10},
			{Name: "b1", X: 80, Y: 100, Radius: 10},
			{Name: "b2", X: 105, Y: 100, Radius: 10},
			{Name: "b3", X: 130, Y: 100, Radius: 10},
			{Name: "b4", X: 155, Y: 100, Radius: 10},
		},
	},
	"gas": {
		Name: "gas", Width: 400, Duration: 200, Speed: 20, FPS: DefaultFPS,
		Particles: lattice(4, 400, 8, 6),
	},
}

// lattice lays out n*n particles on a regular grid with deterministic
// velocities of the given speed.
func lattice(n int, width, radius, speed float64) []particle.State {
	out := make([]particle.State, 0, n*n)
	step := width / float64(n+1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			angle := float64(i*n+j) * 2.399963 // golden angle
			out = append(out, particle.State{
				X:      step * float64(i+1),
				Y:      step * float64(j+1),
				VX:     speed * math.Cos(angle),
				VY:     speed * math.Sin(angle),
				Radius: radius,
			})
		}
	}
	return out
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
