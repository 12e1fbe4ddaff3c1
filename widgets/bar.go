package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"glossolalia/pad"
	"glossolalia/sequencer"
	"glossolalia/theme"
)

// Thumb is one saved sequence in the bar.
type Thumb struct {
	Sequence sequencer.Sequence
	IsLoop   bool
	Interval int // seconds
	Looping  bool
	Selected bool
}

// ThumbWidth is the outer width of a rendered thumbnail.
const ThumbWidth = pad.GridSize + 4

// RenderThumb draws a miniature of the sequence with a status line.
func RenderThumb(th *theme.Theme, t Thumb) string {
	in := make(map[int]bool, len(t.Sequence))
	for _, idx := range t.Sequence {
		in[idx] = true
	}

	var rows []string
	for row := 0; row < pad.GridSize; row++ {
		var line strings.Builder
		for col := 0; col < pad.GridSize; col++ {
			idx, ok := pad.FromGridPos(row, col)
			switch {
			case !ok:
				line.WriteByte(' ')
			case in[idx]:
				line.WriteString(lipgloss.NewStyle().Foreground(th.Accent()).Render("●"))
			case idx == pad.Center:
				line.WriteString(lipgloss.NewStyle().Foreground(th.Muted()).Render("◦"))
			default:
				line.WriteString(lipgloss.NewStyle().Foreground(th.Muted()).Render("·"))
			}
		}
		rows = append(rows, line.String())
	}
	rows = append(rows, thumbStatus(th, t))

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Muted()).
		Padding(0, 1)
	if t.Selected {
		border = border.BorderForeground(th.Accent())
	}
	return border.Render(strings.Join(rows, "\n"))
}

func thumbStatus(th *theme.Theme, t Thumb) string {
	switch {
	case t.Looping:
		return lipgloss.NewStyle().Foreground(th.Success()).
			Render(fmt.Sprintf("%c %ds", th.Symbols.Loop, t.Interval))
	case t.IsLoop:
		return lipgloss.NewStyle().Foreground(th.Muted()).Render(fmt.Sprintf("%c %ds", th.Symbols.Loop, t.Interval))
	}
	return lipgloss.NewStyle().Foreground(th.Muted()).Render("▶")
}

// RenderBar lays thumbnails out side by side, starting at offset.
func RenderBar(th *theme.Theme, thumbs []Thumb, offset, width int) string {
	if len(thumbs) == 0 {
		return lipgloss.NewStyle().Foreground(th.Muted()).Italic(true).
			Render("no saved sequences: press n to make one")
	}
	var cells []string
	used := 0
	for i := offset; i < len(thumbs); i++ {
		if width > 0 && used+ThumbWidth > width {
			break
		}
		cells = append(cells, RenderThumb(th, thumbs[i]))
		used += ThumbWidth
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// VisibleThumbs returns how many thumbnails fit in width.
func VisibleThumbs(width int) int {
	return max(width/ThumbWidth, 1)
}
