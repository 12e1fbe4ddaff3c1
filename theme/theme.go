// Package theme holds the colors and glyphs the terminal pad is drawn with.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"glossolalia/config"
)

// Highlight is the color a fully lit circle blends to.
var Highlight = RGB{255, 107, 107}

type Theme struct {
	Mode    config.ThemeMode
	Dark    bool
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Circle    rune // ○ idle circle
	CircleLit rune // ● highlighted circle
	Center    rune // ◎ idle center
	CenterLit rune // ◉ highlighted center
	Selected  rune // ◆ part of the sequence being edited
	Ripple    rune // · ripple ring
	Loop      rune // ↻ looping thumbnail marker
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.25
	RoleMuted   = 0.5
	RoleFG      = 1.0
)

// New builds a theme for mode. A custom palette replaces the built-in ramp
// for its mode; "system" asks the terminal for its background.
func New(mode config.ThemeMode, custom *Palette) *Theme {
	dark := mode == config.ThemeDark
	if mode == config.ThemeSystem || mode == "" {
		dark = lipgloss.HasDarkBackground()
	}
	p := custom
	if p == nil {
		p = LightPalette
		if dark {
			p = DarkPalette
		}
	}
	return &Theme{
		Mode:    mode,
		Dark:    dark,
		Palette: p,
		Symbols: Symbols{
			Circle:    '○',
			CircleLit: '●',
			Center:    '◎',
			CenterLit: '◉',
			Selected:  '◆',
			Ripple:    '·',
			Loop:      '↻',
		},
	}
}

func (t *Theme) BG() lipgloss.Color      { return color(t.Palette.Lookup(RoleBG)) }
func (t *Theme) Surface() lipgloss.Color { return color(t.Palette.Lookup(RoleSurface)) }
func (t *Theme) Muted() lipgloss.Color   { return color(t.Palette.Lookup(RoleMuted)) }
func (t *Theme) FG() lipgloss.Color      { return color(t.Palette.Lookup(RoleFG)) }

func (t *Theme) Accent() lipgloss.Color  { return color(Highlight) }
func (t *Theme) Warning() lipgloss.Color { return color(RGB{255, 170, 40}) }
func (t *Theme) Success() lipgloss.Color { return color(RGB{90, 200, 120}) }

// CircleRGB is the circle color at a highlight intensity (0-1).
func (t *Theme) CircleRGB(intensity float64) RGB {
	return Blend(t.Palette.Lookup(RoleMuted), Highlight, intensity)
}

// CircleColor is CircleRGB as a lipgloss color.
func (t *Theme) CircleColor(intensity float64) lipgloss.Color {
	return color(t.CircleRGB(intensity))
}

// RippleColor fades a ripple ring into the background.
func (t *Theme) RippleColor(alpha float64) lipgloss.Color {
	return color(Blend(t.Palette.Lookup(RoleBG), Highlight, alpha*0.6))
}

func color(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
