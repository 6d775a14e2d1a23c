// Package metrics turns the stream of applied collisions into run summaries.
package metrics

import (
	"sort"

	"github.com/san-kum/particlesim/internal/sim"
)

type Metric interface {
	Name() string
	Observe(f sim.Frame)
	Value() float64
	Reset()
}

// Finisher is implemented by metrics that depend on the total run time.
type Finisher interface {
	Finish(t float64)
}

// Set fans frames out to a group of metrics. It satisfies sim.Observer.
type Set struct {
	metrics []Metric
}

func NewSet(ms ...Metric) *Set { return &Set{metrics: ms} }

// Default returns the metrics reported for every run.
func Default(width, initialEnergy float64, n int) *Set {
	return NewSet(
		NewEnergyDrift(initialEnergy),
		NewCollisionRate(),
		NewWallShare(),
		NewMeanFreeTime(n),
		NewPressure(width),
		NewContainment(width),
	)
}

func (s *Set) Add(m Metric) { s.metrics = append(s.metrics, m) }

func (s *Set) OnEvent(f sim.Frame) {
	for _, m := range s.metrics {
		m.Observe(f)
	}
}

func (s *Set) Finish(t float64) {
	for _, m := range s.metrics {
		if fin, ok := m.(Finisher); ok {
			fin.Finish(t)
		}
	}
}

func (s *Set) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names returns the metric names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.metrics))
	for _, m := range s.metrics {
		names = append(names, m.Name())
	}
	sort.Strings(names)
	return names
}
