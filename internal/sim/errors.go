package sim

import (
	"errors"
	"fmt"
)

var (
	ErrNoParticles     = errors.New("sim: no particles")
	ErrInvalidWidth    = errors.New("sim: box width must be positive and finite")
	ErrInvalidDuration = errors.New("sim: duration must be non-negative and finite")

	// ErrQueueUnderflow means the termination event went missing, which is a
	// bug rather than an input problem.
	ErrQueueUnderflow = errors.New("sim: event queue underflow")

	ErrNotTerminated = errors.New("sim: run has not terminated")
)

// ParticleError reports which input particle failed validation.
type ParticleError struct {
	Index int
	Err   error
}

func (e *ParticleError) Error() string {
	return fmt.Sprintf("sim: particle %d: %v", e.Index, e.Err)
}

func (e *ParticleError) Unwrap() error { return e.Err }
