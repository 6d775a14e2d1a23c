// Package scenario reads and writes the plain-text particle format:
//
//	<width> <duration>
//	<name> <x> <y> <vx> <vy> <radius>
//	...
//
// The same layout is used for the end-of-run report.
package scenario

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/sim"
)

var ErrMalformed = errors.New("scenario: malformed input")

type Scenario struct {
	Width     int
	Duration  float64
	Particles []particle.State
}

func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse reads a scenario. The width and duration are the first two tokens and
// may span lines; every following non-blank line is one particle. A particle
// line with only five fields has no name.
func Parse(r io.Reader) (*Scenario, error) {
	sc := &Scenario{}
	scanner := bufio.NewScanner(r)

	var header []string
	lineNo := 0
	for len(header) < 2 && scanner.Scan() {
		lineNo++
		header = append(header, strings.Fields(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: missing width and duration", ErrMalformed)
	}
	if len(header) > 2 {
		return nil, fmt.Errorf("%w: line %d: unexpected tokens after duration", ErrMalformed, lineNo)
	}

	width, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fmt.Errorf("%w: width %q is not an integer", ErrMalformed, header[0])
	}
	duration, err := strconv.ParseFloat(header[1], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: duration %q", ErrMalformed, header[1])
	}
	sc.Width, sc.Duration = width, duration

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		s, err := parseParticle(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
		}
		sc.Particles = append(sc.Particles, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sc, nil
}

func parseParticle(fields []string) (particle.State, error) {
	var s particle.State
	switch len(fields) {
	case 6:
		s.Name, fields = fields[0], fields[1:]
	case 5:
	default:
		return s, fmt.Errorf("want 5 or 6 fields, got %d", len(fields))
	}

	nums := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return s, fmt.Errorf("field %q is not a number", f)
		}
		nums[i] = v
	}
	s.X, s.Y, s.VX, s.VY, s.Radius = nums[0], nums[1], nums[2], nums[3], nums[4]
	return s, nil
}

func (sc *Scenario) Config() sim.Config {
	return sim.Config{Width: float64(sc.Width), Duration: sc.Duration}
}

// Build turns the parsed states into particles, failing on the first invalid one.
func (sc *Scenario) Build() ([]*particle.Particle, error) {
	out := make([]*particle.Particle, 0, len(sc.Particles))
	for i, s := range sc.Particles {
		p, err := particle.FromState(s)
		if err != nil {
			return nil, &sim.ParticleError{Index: i, Err: err}
		}
		out = append(out, p)
	}
	return out, nil
}

// Engine builds a ready-to-run engine for the scenario.
func (sc *Scenario) Engine() (*sim.Engine, error) {
	ps, err := sc.Build()
	if err != nil {
		return nil, err
	}
	return sim.New(sc.Config(), ps)
}

// Write prints width, duration and one line per particle.
func Write(w io.Writer, width int, duration float64, states []particle.State) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, width)
	fmt.Fprintln(bw, strconv.FormatFloat(duration, 'g', -1, 64))
	for _, s := range states {
		fmt.Fprintln(bw, s.String())
	}
	return bw.Flush()
}

func (sc *Scenario) Write(w io.Writer) error {
	return Write(w, sc.Width, sc.Duration, sc.Particles)
}
