// Package widgets renders the pad and sequence thumbnails for the terminal.
package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"glossolalia/pad"
	"glossolalia/theme"
)

// CellWidth is how many columns one grid cell takes.
const CellWidth = 3

// Surface is the visual state a pad is drawn from.
type Surface interface {
	Intensity(index int) float64
	Ripples() []pad.RippleState
}

// PadView describes one rendering of the pad.
type PadView struct {
	Surface  Surface
	Selected []int // circles in the sequence being edited
	Cursor   int   // circle index or pad.Center
	Focused  bool  // draw the cursor
}

// RenderPad draws the 7x7 pad grid.
func RenderPad(th *theme.Theme, v PadView) string {
	selected := make(map[int]bool, len(v.Selected))
	for _, idx := range v.Selected {
		selected[idx] = true
	}
	var ripples []pad.RippleState
	if v.Surface != nil {
		ripples = v.Surface.Ripples()
	}

	lines := make([]string, pad.GridSize)
	for row := 0; row < pad.GridSize; row++ {
		var line strings.Builder
		for col := 0; col < pad.GridSize; col++ {
			idx, ok := pad.FromGridPos(row, col)
			if !ok {
				line.WriteString(rippleCell(th, row, col, ripples))
				continue
			}
			var intensity float64
			if v.Surface != nil {
				intensity = v.Surface.Intensity(idx)
			}
			glyph := circleGlyph(th, idx, intensity, selected[idx])
			style := lipgloss.NewStyle().Foreground(th.CircleColor(intensity))
			if selected[idx] && intensity == 0 {
				style = style.Foreground(th.Accent())
			}
			cell := " " + string(glyph) + " "
			if v.Focused && idx == v.Cursor {
				cell = "[" + string(glyph) + "]"
				style = style.Bold(true)
			}
			line.WriteString(style.Render(cell))
		}
		lines[row] = line.String()
	}
	return strings.Join(lines, "\n")
}

func circleGlyph(th *theme.Theme, idx int, intensity float64, selected bool) rune {
	lit := intensity > 0
	switch {
	case idx == pad.Center && lit:
		return th.Symbols.CenterLit
	case idx == pad.Center:
		return th.Symbols.Center
	case lit:
		return th.Symbols.CircleLit
	case selected:
		return th.Symbols.Selected
	}
	return th.Symbols.Circle
}

// rippleCell draws a ripple dot in an empty cell the ring is passing over.
func rippleCell(th *theme.Theme, row, col int, ripples []pad.RippleState) string {
	mid := float64(pad.NumRings)
	dist := math.Hypot(float64(row)-mid, float64(col)-mid) / (mid * math.Sqrt2)
	for _, r := range ripples {
		if math.Abs(dist-r.Radius) < 0.15 {
			return lipgloss.NewStyle().Foreground(th.RippleColor(r.Alpha)).
				Render(" " + string(th.Symbols.Ripple) + " ")
		}
	}
	return strings.Repeat(" ", CellWidth)
}

// CircleAt maps a position inside a rendered pad to a circle.
func CircleAt(x, y int) (int, bool) {
	if x < 0 || y < 0 {
		return 0, false
	}
	return pad.FromGridPos(y, x/CellWidth)
}
