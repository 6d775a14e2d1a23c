// Package particle models the discs of the collision simulation and the
// closed-form math used to predict and resolve their collisions.
package particle

import "fmt"

// Wall identifies one side of the square box. Left and Right bound x, Top and
// Bottom bound y; y grows downward as on a screen.
type Wall uint8

const (
	Left Wall = iota
	Right
	Top
	Bottom
)

// Walls lists every wall in prediction order.
var Walls = [...]Wall{Left, Right, Top, Bottom}

var wallNames = [...]string{"left", "right", "top", "bottom"}

func (w Wall) String() string {
	if int(w) < len(wallNames) {
		return wallNames[w]
	}
	return fmt.Sprintf("wall(%d)", w)
}

func ParseWall(s string) (Wall, error) {
	for i, name := range wallNames {
		if name == s {
			return Wall(i), nil
		}
	}
	return 0, fmt.Errorf("particle: unknown wall %q", s)
}
