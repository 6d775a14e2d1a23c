package sim

import "github.com/san-kum/particlesim/internal/particle"

// Config holds the constructor arguments of an Engine. The box is square with
// side Width; the run ends when the clock reaches Duration.
type Config struct {
	Width    float64
	Duration float64
}

// Phase is the lifecycle state of an Engine.
type Phase int

const (
	Seeded Phase = iota
	Running
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Seeded:
		return "seeded"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// Frame describes one applied event and the particles right after it.
type Frame struct {
	Time      float64
	Delta     float64
	Event     Event
	Particles []particle.State
}

// Observer receives a Frame after every applied event. It is never called for
// stale or termination events and must not retain Particles across calls if it
// mutates them.
type Observer interface {
	OnEvent(f Frame)
}

type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnEvent(f Frame) { fn(f) }

type Stats struct {
	Applied        int `json:"applied"`
	Stale          int `json:"stale"`
	PairCollisions int `json:"pair_collisions"`
	WallCollisions int `json:"wall_collisions"`
	Scheduled      int `json:"scheduled"`
	PeakQueue      int `json:"peak_queue"`
}
