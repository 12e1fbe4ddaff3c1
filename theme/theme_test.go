package theme

import (
	"strings"
	"testing"

	"glossolalia/config"
)

const samplePalette = `GIMP Palette
Name: test ramp
Columns: 2
# comment
0 0 0	black
255 255 255	white
300 1 1	out of range
`

func TestParseGPL(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(samplePalette))
	if err != nil {
		t.Fatalf("ParseGPL: %v", err)
	}
	if p.Name != "test ramp" || len(p.Colors) != 2 {
		t.Fatalf("palette = %+v", p)
	}
	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n1 2 3\n")); err == nil {
		t.Fatalf("single color palette accepted")
	}
}

func TestLookupEnds(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {100, 100, 100}, {255, 255, 255}}}
	if got := p.Lookup(-1); got != p.Colors[0] {
		t.Fatalf("Lookup(-1) = %v", got)
	}
	if got := p.Lookup(2); got != p.Colors[2] {
		t.Fatalf("Lookup(2) = %v", got)
	}
	if got := p.Lookup(0.5); got != p.Colors[1] {
		t.Fatalf("Lookup(0.5) = %v", got)
	}
}

func TestBlendEnds(t *testing.T) {
	a, b := RGB{10, 20, 30}, Highlight
	if got := Blend(a, b, 0); got != a {
		t.Fatalf("Blend 0 = %v", got)
	}
	if got := Blend(a, b, 1); got != b {
		t.Fatalf("Blend 1 = %v", got)
	}
	mid := Blend(a, b, 0.5)
	if mid == a || mid == b {
		t.Fatalf("Blend 0.5 = %v", mid)
	}
}

func TestCircleRGBFollowsIntensity(t *testing.T) {
	th := New(config.ThemeDark, nil)
	if !th.Dark || th.Palette != DarkPalette {
		t.Fatalf("dark theme = %+v", th)
	}
	if got := th.CircleRGB(1); got != Highlight {
		t.Fatalf("lit circle = %v", got)
	}
	if got := th.CircleRGB(0); got != th.Palette.Lookup(RoleMuted) {
		t.Fatalf("idle circle = %v", got)
	}

	light := New(config.ThemeLight, nil)
	if light.Dark || light.Palette != LightPalette {
		t.Fatalf("light theme = %+v", light)
	}
}

func TestCustomPaletteWins(t *testing.T) {
	p := &Palette{Name: "x", Colors: []RGB{{1, 1, 1}, {2, 2, 2}}}
	if th := New(config.ThemeDark, p); th.Palette != p {
		t.Fatalf("custom palette ignored")
	}
}
