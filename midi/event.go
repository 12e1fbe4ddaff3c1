package midi

import "glossolalia/pad"

// The pad's 7x7 grid sits in the lower-left of the Launchpad's 8x8 grid.

// CenterNote is the keyboard key that plays the center circle (C4).
const CenterNote = 60

// PadToCircle maps a Launchpad pad to a circle index (or pad.Center).
func PadToCircle(row, col int) (int, bool) {
	if row < 0 || row >= pad.GridSize || col < 0 || col >= pad.GridSize {
		return 0, false
	}
	return pad.FromGridPos(pad.GridSize-1-row, col)
}

// CircleToPad is the inverse of PadToCircle.
func CircleToPad(index int) (row, col int, ok bool) {
	r, c, ok := pad.GridPos(index)
	if !ok {
		return 0, 0, false
	}
	return pad.GridSize - 1 - r, c, true
}

// NoteToCircle maps keyboard keys onto the pad: CenterNote is the center
// and the next 24 keys are circles 0-23.
func NoteToCircle(note uint8) (int, bool) {
	if note == CenterNote {
		return pad.Center, true
	}
	idx := int(note) - CenterNote - 1
	if !pad.Valid(idx) {
		return 0, false
	}
	return idx, true
}

// CircleForPad maps a pad event, ignoring pads outside the pad grid.
func CircleForPad(ev PadEvent) (int, bool) {
	return PadToCircle(ev.Row, ev.Col)
}
