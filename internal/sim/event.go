package sim

import (
	"fmt"

	"github.com/san-kum/particlesim/internal/particle"
)

type Kind uint8

const (
	KindPair Kind = iota
	KindWall
	KindTermination
)

func (k Kind) String() string {
	switch k {
	case KindPair:
		return "pair"
	case KindWall:
		return "wall"
	case KindTermination:
		return "termination"
	}
	return "unknown"
}

// Event is an immutable prediction. A and B index the engine's particle
// slice; B is only meaningful for KindPair and Wall only for KindWall.
type Event struct {
	Time    float64
	Created float64
	Kind    Kind
	A, B    int
	Wall    particle.Wall

	seq uint64
}

type stamp float64

func (s stamp) Created() float64 { return float64(s) }

func (e Event) stamp() stamp { return stamp(e.Created) }

// Participants returns the particle indices the event touches.
func (e Event) Participants() []int {
	switch e.Kind {
	case KindPair:
		return []int{e.A, e.B}
	case KindWall:
		return []int{e.A}
	}
	return nil
}

func (e Event) String() string {
	switch e.Kind {
	case KindPair:
		return fmt.Sprintf("t=%.6f pair %d-%d", e.Time, e.A, e.B)
	case KindWall:
		return fmt.Sprintf("t=%.6f wall %d-%s", e.Time, e.A, e.Wall)
	}
	return fmt.Sprintf("t=%.6f %s", e.Time, e.Kind)
}

// before orders events by time, falling back to insertion order so that
// simultaneous events replay identically.
func before(a, b Event) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.seq < b.seq
}
