package theme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

type RGB [3]uint8

// Palette is a color ramp from background (0) to foreground (1).
type Palette struct {
	Name   string
	Colors []RGB
}

// Built-in ramps for the two background modes.
var (
	DarkPalette = &Palette{Name: "dusk", Colors: []RGB{
		{26, 26, 46}, {42, 42, 72}, {86, 90, 130}, {150, 160, 200}, {225, 228, 245},
	}}
	LightPalette = &Palette{Name: "paper", Colors: []RGB{
		{248, 246, 240}, {230, 226, 216}, {170, 166, 160}, {100, 98, 110}, {34, 34, 48},
	}}
)

// LoadGPL reads a GIMP palette file.
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := ParseGPL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseGPL parses GIMP palette text: "R G B [name]" per line.
func ParseGPL(r io.Reader) (*Palette, error) {
	p := &Palette{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if name, ok := strings.CutPrefix(line, "Name:"); ok {
			p.Name = strings.TrimSpace(name)
			continue
		}
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		var c RGB
		ok := true
		for i := range c {
			v, err := strconv.Atoi(fields[i])
			if err != nil || v < 0 || v > 255 {
				ok = false
				break
			}
			c[i] = uint8(v)
		}
		if ok {
			p.Colors = append(p.Colors, c)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) < 2 {
		return nil, fmt.Errorf("palette needs at least 2 colors, found %d", len(p.Colors))
	}
	return p, nil
}

// Lookup returns the ramp color at norm (0-1), blended in Lab space.
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}
	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	return Blend(p.Colors[i], p.Colors[i+1], pos-float64(i))
}

// Blend mixes a toward b by t (0-1).
func Blend(a, b RGB, t float64) RGB {
	t = min(max(t, 0), 1)
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	return fromColorful(a.colorful().BlendLab(b.colorful(), t).Clamped())
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.RGB255()
	return RGB{r, g, b}
}

// Hex formats c as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
