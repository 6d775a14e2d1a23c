package metrics

import (
	"math"

	"github.com/san-kum/particlesim/internal/sim"
)

// CollisionRate is applied collisions per unit of simulated time. It is NaN
// for a run of zero length.
type CollisionRate struct {
	count int
	end   float64
}

func NewCollisionRate() *CollisionRate { return &CollisionRate{} }

func (c *CollisionRate) Name() string { return "collision_rate" }

func (c *CollisionRate) Observe(f sim.Frame) {
	c.count++
	c.end = f.Time
}

func (c *CollisionRate) Finish(t float64) { c.end = t }

func (c *CollisionRate) Value() float64 {
	if c.end == 0 {
		return math.NaN()
	}
	return float64(c.count) / c.end
}

func (c *CollisionRate) Reset() { *c = CollisionRate{} }

// WallShare is the fraction of applied collisions that hit a wall, NaN when
// nothing collided.
type WallShare struct {
	walls, total int
}

func NewWallShare() *WallShare { return &WallShare{} }

func (w *WallShare) Name() string { return "wall_share" }

func (w *WallShare) Observe(f sim.Frame) {
	w.total++
	if f.Event.Kind == sim.KindWall {
		w.walls++
	}
}

func (w *WallShare) Value() float64 {
	if w.total == 0 {
		return math.NaN()
	}
	return float64(w.walls) / float64(w.total)
}

func (w *WallShare) Reset() { *w = WallShare{} }

// MeanFreeTime averages the interval between consecutive collisions of the
// same particle, walls included. It is NaN until some particle collides twice.
type MeanFreeTime struct {
	last      []float64
	sum       float64
	intervals int
}

func NewMeanFreeTime(n int) *MeanFreeTime {
	m := &MeanFreeTime{last: make([]float64, n)}
	m.Reset()
	return m
}

func (m *MeanFreeTime) Name() string { return "mean_free_time" }

func (m *MeanFreeTime) Observe(f sim.Frame) {
	for _, i := range f.Event.Participants() {
		if i >= len(m.last) {
			continue
		}
		if !math.IsNaN(m.last[i]) {
			m.sum += f.Time - m.last[i]
			m.intervals++
		}
		m.last[i] = f.Time
	}
}

func (m *MeanFreeTime) Value() float64 {
	if m.intervals == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.intervals)
}

func (m *MeanFreeTime) Reset() {
	for i := range m.last {
		m.last[i] = math.NaN()
	}
	m.sum = 0
	m.intervals = 0
}
