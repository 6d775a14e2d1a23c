// Package viz provides terminal playback of particle simulations.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live playback of one engine in simulated time
//   - [Menu]: scenario picker that launches a [Model]
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	+/-   - Double/halve playback speed
//	N     - Jump to the next collision
//	T     - Cycle color themes
//	?     - Show help
//
// Playback never changes the simulation: each frame applies every event up
// to the frame time and draws the straight-line extrapolation from there.
package viz
