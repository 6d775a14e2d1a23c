// Package analysis characterizes finished runs.
//
//   - [Periodicity]: dominant period of the collision stream via FFT
//   - [SpeedHistogram]: distribution of particle speeds
//   - [Equipartition]: ratio of x to y kinetic energy
//
// A box of many particles relaxes toward a 2D Maxwell distribution, so the
// speed histogram approaches a Rayleigh shape and the equipartition ratio
// approaches 1. A lone particle bouncing between two walls shows up instead
// as a sharp period in the collision spectrum:
//
//	period, _ := analysis.Periodicity(times, duration, 512)
package analysis
