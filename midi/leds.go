package midi

import (
	"context"
	"time"

	"glossolalia/pad"
)

// IntensitySource reports how lit a circle is, 0-1.
type IntensitySource interface {
	Intensity(index int) float64
}

// LEDRenderer turns board intensities into LED updates, sending only pads
// whose color changed since the last frame.
type LEDRenderer struct {
	Idle   [3]uint8
	Center [3]uint8
	Lit    [3]uint8

	prev map[[2]int][3]uint8
}

func NewLEDRenderer() *LEDRenderer {
	return &LEDRenderer{
		Idle:   [3]uint8{40, 60, 120},
		Center: [3]uint8{127, 127, 127},
		Lit:    [3]uint8{255, 107, 107},
		prev:   make(map[[2]int][3]uint8),
	}
}

// Frame returns the updates needed to show src.
func (r *LEDRenderer) Frame(src IntensitySource) []LEDUpdate {
	var updates []LEDUpdate
	for idx := pad.Center; idx < pad.NumCircles; idx++ {
		row, col, ok := CircleToPad(idx)
		if !ok {
			continue
		}
		base := r.Idle
		if idx == pad.Center {
			base = r.Center
		}
		color := lerp(base, r.Lit, src.Intensity(idx))
		key := [2]int{row, col}
		if prev, ok := r.prev[key]; ok && prev == color {
			continue
		}
		r.prev[key] = color
		updates = append(updates, LEDUpdate{Row: row, Col: col, Color: color, Channel: ChannelStatic})
	}
	return updates
}

// Reset forgets what was sent so the next frame repaints every pad.
func (r *LEDRenderer) Reset() {
	r.prev = make(map[[2]int][3]uint8)
}

// Mirror paints src onto c at fps until ctx is done.
func Mirror(ctx context.Context, c Controller, src IntensitySource, fps int) {
	if fps <= 0 {
		fps = 30
	}
	r := NewLEDRenderer()
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.SetLEDBatch(r.Frame(src)); err != nil {
				return
			}
		}
	}
}

func lerp(a, b [3]uint8, t float64) [3]uint8 {
	t = min(max(t, 0), 1)
	var out [3]uint8
	for i := range out {
		out[i] = uint8(float64(a[i]) + (float64(b[i])-float64(a[i]))*t + 0.5)
	}
	return out
}
