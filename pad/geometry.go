// Package pad describes the radial sound pad: 24 small circles laid out
// along 8 directions in 3 rings around one center circle.
package pad

import (
	"errors"
	"fmt"
	"time"
)

const (
	NumDirections = 8
	NumRings      = 3
	NumCircles    = NumDirections * NumRings

	// Center is the index used for the center circle.
	Center = -1

	// CenterSample is the "droplet" sample played by the center circle.
	CenterSample = 5

	// GridSize is the side of the square grid the pad fits in.
	GridSize = 2*NumRings + 1
)

var ErrBadIndex = errors.New("circle index out of range")

// Direction is one of the 8 compass points around the center.
type Direction struct {
	Name   string
	DX, DY int // grid step, y grows downward
	Sample int // audio sample number (1-9)
}

// Directions in stored index order: index/3 selects the direction.
// Samples follow the compass name, so bottom-left is 7 and bottom-right 9.
var Directions = [NumDirections]Direction{
	{Name: "top", DX: 0, DY: -1, Sample: 2},
	{Name: "bottom", DX: 0, DY: 1, Sample: 8},
	{Name: "left", DX: -1, DY: 0, Sample: 4},
	{Name: "right", DX: 1, DY: 0, Sample: 6},
	{Name: "top-right", DX: 1, DY: -1, Sample: 3},
	{Name: "top-left", DX: -1, DY: -1, Sample: 1},
	{Name: "bottom-right", DX: 1, DY: 1, Sample: 9},
	{Name: "bottom-left", DX: -1, DY: 1, Sample: 7},
}

// Circle is a small circle located on the pad.
type Circle struct {
	Index     int
	Direction int // 0-7
	Ring      int // 0-2
}

// Radian is the 1-based ring distance from the center.
func (c Circle) Radian() int {
	return c.Ring + 1
}

// Locate maps a circle index to its direction and ring.
func Locate(index int) (Circle, error) {
	if index < 0 || index >= NumCircles {
		return Circle{}, fmt.Errorf("%w: %d", ErrBadIndex, index)
	}
	return Circle{
		Index:     index,
		Direction: index / NumRings,
		Ring:      index % NumRings,
	}, nil
}

// Valid reports whether index names a small circle.
func Valid(index int) bool {
	return index >= 0 && index < NumCircles
}

// Index is the inverse of Locate.
func Index(direction, ring int) int {
	return direction*NumRings + ring
}

// Playback offsets per radian (0 = center)
var radianOffsets = [NumRings + 1]time.Duration{
	0,
	250 * time.Millisecond,
	500 * time.Millisecond,
	750 * time.Millisecond,
}

// RadianOffset returns when a ring plays relative to the center.
func RadianOffset(radian int) time.Duration {
	if radian < 0 || radian > NumRings {
		return 0
	}
	return radianOffsets[radian]
}

// SampleFor returns the sample number for a circle index (or Center).
// Invalid indices return 0.
func SampleFor(index int) int {
	if index == Center {
		return CenterSample
	}
	c, err := Locate(index)
	if err != nil {
		return 0
	}
	return Directions[c.Direction].Sample
}

// GridPos places a circle on a GridSize x GridSize grid, row 0 at the top.
func GridPos(index int) (row, col int, ok bool) {
	mid := NumRings
	if index == Center {
		return mid, mid, true
	}
	c, err := Locate(index)
	if err != nil {
		return 0, 0, false
	}
	d := Directions[c.Direction]
	dist := c.Radian()
	return mid + d.DY*dist, mid + d.DX*dist, true
}

// FromGridPos returns the circle at a grid cell, if any.
func FromGridPos(row, col int) (int, bool) {
	mid := NumRings
	dy, dx := row-mid, col-mid
	if dx == 0 && dy == 0 {
		return Center, true
	}
	dist := max(abs(dx), abs(dy))
	if dist > NumRings {
		return 0, false
	}
	// Only straight lines and exact diagonals hold circles.
	if dx != 0 && dy != 0 && abs(dx) != abs(dy) {
		return 0, false
	}
	sx, sy := sign(dx), sign(dy)
	for i, d := range Directions {
		if d.DX == sx && d.DY == sy {
			return Index(i, dist-1), true
		}
	}
	return 0, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
