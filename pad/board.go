package pad

import (
	"math"
	"sync"
	"time"
)

// Highlight and ripple timing
const (
	HighlightDuration       = 600 * time.Millisecond
	CenterHighlightDuration = 400 * time.Millisecond
	RippleDuration          = 900 * time.Millisecond
)

type highlight struct {
	start    time.Time
	duration time.Duration
}

// RippleState is one expanding ring, both fields normalized to 0-1.
type RippleState struct {
	Radius float64
	Alpha  float64
}

// Board holds the transient visual state of one pad surface: which circles
// are lit and which ripples are expanding. Playback timers call into it from
// their own goroutines while the renderer reads it, so all access is locked.
type Board struct {
	mu      sync.Mutex
	now     func() time.Time
	lit     map[int]highlight
	ripples []time.Time
}

func NewBoard() *Board {
	return &Board{
		now: time.Now,
		lit: make(map[int]highlight),
	}
}

// SetNowFunc overrides the clock (tests).
func (b *Board) SetNowFunc(f func() time.Time) {
	b.mu.Lock()
	b.now = f
	b.mu.Unlock()
}

// HighlightCircle lights a circle (or Center) for d, restarting any pulse
// already running on it.
func (b *Board) HighlightCircle(index int, d time.Duration) {
	if index != Center && !Valid(index) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lit[index] = highlight{start: b.now(), duration: d}
}

// ClearAllHighlights drops every lit circle.
func (b *Board) ClearAllHighlights() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.lit)
}

// Ripple starts a ring expanding from the center.
func (b *Board) Ripple() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ripples = append(b.ripples, b.now())
}

// Intensity returns the pulse brightness of a circle in [0,1]. Expired
// highlights are removed.
func (b *Board) Intensity(index int) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, ok := b.lit[index]
	if !ok {
		return 0
	}
	v := pulse(b.now().Sub(h.start), h.duration)
	if v <= 0 {
		delete(b.lit, index)
		return 0
	}
	return v
}

// Lit returns the indices currently highlighted (expired ones included until
// the next Intensity or Prune).
func (b *Board) Lit() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]int, 0, len(b.lit))
	for idx := range b.lit {
		out = append(out, idx)
	}
	return out
}

// Ripples returns the live ripples, oldest first.
func (b *Board) Ripples() []RippleState {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	var out []RippleState
	kept := b.ripples[:0]
	for _, start := range b.ripples {
		p := float64(now.Sub(start)) / float64(RippleDuration)
		if p >= 1 {
			continue
		}
		kept = append(kept, start)
		out = append(out, RippleState{Radius: max(p, 0), Alpha: 1 - max(p, 0)})
	}
	b.ripples = kept
	return out
}

// Prune drops expired highlights and ripples.
func (b *Board) Prune() {
	b.mu.Lock()
	now := b.now()
	for idx, h := range b.lit {
		if now.Sub(h.start) >= h.duration {
			delete(b.lit, idx)
		}
	}
	b.mu.Unlock()
	b.Ripples()
}

// Animating reports whether anything on the board still needs redrawing.
func (b *Board) Animating() bool {
	b.Prune()
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lit) > 0 || len(b.ripples) > 0
}

// pulse fades out over duration while oscillating between 0.4 and 1.0.
func pulse(elapsed, duration time.Duration) float64 {
	if duration <= 0 || elapsed >= duration {
		return 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	progress := float64(elapsed) / float64(duration)
	base := math.Max(0, 1-progress)
	ms := float64(elapsed) / float64(time.Millisecond)
	return base * (math.Sin(ms*4/100)*0.3 + 0.7)
}
