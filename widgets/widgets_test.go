package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"glossolalia/config"
	"glossolalia/pad"
	"glossolalia/theme"
)

type fakeSurface struct {
	lit     map[int]float64
	ripples []pad.RippleState
}

func (f fakeSurface) Intensity(i int) float64    { return f.lit[i] }
func (f fakeSurface) Ripples() []pad.RippleState { return f.ripples }

func testTheme() *theme.Theme {
	return theme.New(config.ThemeDark, nil)
}

func TestRenderPadShape(t *testing.T) {
	out := RenderPad(testTheme(), PadView{Surface: fakeSurface{}})
	lines := strings.Split(out, "\n")
	if len(lines) != pad.GridSize {
		t.Fatalf("rows = %d", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != pad.GridSize*CellWidth {
			t.Fatalf("row %d width = %d", i, w)
		}
	}
	if got := strings.Count(out, "○"); got != pad.NumCircles {
		t.Fatalf("idle circles = %d", got)
	}
	if !strings.Contains(out, "◎") {
		t.Fatalf("center missing")
	}
}

func TestRenderPadStates(t *testing.T) {
	th := testTheme()
	out := RenderPad(th, PadView{
		Surface:  fakeSurface{lit: map[int]float64{0: 0.8, pad.Center: 0.5}},
		Selected: []int{3, 4},
		Cursor:   5,
		Focused:  true,
	})
	if got := strings.Count(out, "●"); got != 1 {
		t.Fatalf("lit circles = %d", got)
	}
	if !strings.Contains(out, "◉") {
		t.Fatalf("lit center missing")
	}
	if got := strings.Count(out, "◆"); got != 2 {
		t.Fatalf("selected circles = %d", got)
	}
	if got := strings.Count(out, "[○]"); got != 1 {
		t.Fatalf("cursor brackets = %d", got)
	}
}

func TestRenderPadRipple(t *testing.T) {
	out := RenderPad(testTheme(), PadView{
		Surface: fakeSurface{ripples: []pad.RippleState{{Radius: 0.5, Alpha: 0.5}}},
	})
	if !strings.Contains(out, "·") {
		t.Fatalf("ripple not drawn:\n%s", out)
	}
}

func TestCircleAt(t *testing.T) {
	for idx := pad.Center; idx < pad.NumCircles; idx++ {
		row, col, _ := pad.GridPos(idx)
		got, ok := CircleAt(col*CellWidth+1, row)
		if !ok || got != idx {
			t.Fatalf("CircleAt for circle %d = %d,%v", idx, got, ok)
		}
	}
	if _, ok := CircleAt(-1, 0); ok {
		t.Fatalf("negative x mapped")
	}
	if _, ok := CircleAt(CellWidth, 0); ok {
		t.Fatalf("gap cell mapped")
	}
}

func TestRenderBar(t *testing.T) {
	th := testTheme()
	if out := RenderBar(th, nil, 0, 80); !strings.Contains(out, "no saved sequences") {
		t.Fatalf("empty bar = %q", out)
	}

	thumbs := []Thumb{
		{Sequence: []int{0, 8}, Selected: true},
		{Sequence: []int{16}, IsLoop: true, Interval: 3, Looping: true},
		{Sequence: []int{1}},
	}
	out := RenderBar(th, thumbs, 0, ThumbWidth*2)
	if !strings.Contains(out, "↻ 3s") {
		t.Fatalf("loop status missing:\n%s", out)
	}
	if w := lipgloss.Width(out); w != ThumbWidth*2 {
		t.Fatalf("bar width = %d, want %d", w, ThumbWidth*2)
	}
	if got := strings.Count(out, "●"); got != 3 {
		t.Fatalf("sequence dots = %d", got)
	}
}
