package storage

import (
	"fmt"
	"strconv"

	"github.com/san-kum/particlesim/internal/sim"
)

var eventHeader = []string{"time", "kind", "a", "b", "wall", "ax", "ay", "bx", "by"}

// EventRecord is one applied collision with the participants' positions at
// the moment of impact. B is -1 and Wall empty when they do not apply.
type EventRecord struct {
	Time float64 `json:"time"`
	Kind string  `json:"kind"`
	A    int     `json:"a"`
	B    int     `json:"b"`
	Wall string  `json:"wall,omitempty"`
	AX   float64 `json:"ax"`
	AY   float64 `json:"ay"`
	BX   float64 `json:"bx,omitempty"`
	BY   float64 `json:"by,omitempty"`
}

func RecordFrame(f sim.Frame) EventRecord {
	ev := f.Event
	a := f.Particles[ev.A]
	rec := EventRecord{Time: f.Time, Kind: ev.Kind.String(), A: ev.A, B: -1, AX: a.X, AY: a.Y}
	switch ev.Kind {
	case sim.KindPair:
		b := f.Particles[ev.B]
		rec.B, rec.BX, rec.BY = ev.B, b.X, b.Y
	case sim.KindWall:
		rec.Wall = ev.Wall.String()
	}
	return rec
}

func (r EventRecord) row() []string {
	return []string{
		ftoa(r.Time), r.Kind, strconv.Itoa(r.A), strconv.Itoa(r.B), r.Wall,
		ftoa(r.AX), ftoa(r.AY), ftoa(r.BX), ftoa(r.BY),
	}
}

func parseRow(rec []string) (EventRecord, error) {
	var r EventRecord
	var err error

	floats := []struct {
		dst *float64
		src string
	}{{&r.Time, rec[0]}, {&r.AX, rec[5]}, {&r.AY, rec[6]}, {&r.BX, rec[7]}, {&r.BY, rec[8]}}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(f.src, 64); err != nil {
			return r, fmt.Errorf("bad number %q", f.src)
		}
	}
	if r.A, err = strconv.Atoi(rec[2]); err != nil {
		return r, fmt.Errorf("bad index %q", rec[2])
	}
	if r.B, err = strconv.Atoi(rec[3]); err != nil {
		return r, fmt.Errorf("bad index %q", rec[3])
	}
	r.Kind, r.Wall = rec[1], rec[4]
	return r, nil
}

// Recorder is a sim.Observer collecting every applied event.
type Recorder struct {
	Events []EventRecord
}

func NewRecorder() *Recorder { return &Recorder{Events: make([]EventRecord, 0)} }

func (r *Recorder) OnEvent(f sim.Frame) { r.Events = append(r.Events, RecordFrame(f)) }

// Trajectory returns the recorded impact positions of particle i in order.
func Trajectory(events []EventRecord, i int) [][2]float64 {
	out := make([][2]float64, 0)
	for _, ev := range events {
		switch i {
		case ev.A:
			out = append(out, [2]float64{ev.AX, ev.AY})
		case ev.B:
			out = append(out, [2]float64{ev.BX, ev.BY})
		}
	}
	return out
}

// CumulativeCollisions samples the number of applied collisions at the end of
// each of n equal slices of [0, duration].
func CumulativeCollisions(events []EventRecord, duration float64, n int) []float64 {
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	j := 0
	for i := range out {
		end := duration * float64(i+1) / float64(n)
		for j < len(events) && events[j].Time <= end {
			j++
		}
		out[i] = float64(j)
	}
	return out
}
