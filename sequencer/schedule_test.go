package sequencer

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"glossolalia/debug"
	"glossolalia/pad"
)

type played struct {
	at     time.Duration
	sample int
}

type fakePlayer struct {
	mu     sync.Mutex
	timers *ManualTimers
	calls  []played
	fail   map[int]error
}

func (p *fakePlayer) Play(sample int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, played{at: p.timers.Now(), sample: sample})
	return p.fail[sample]
}

func (p *fakePlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type lit struct {
	index int
	d     time.Duration
}

type fakeSurface struct {
	mu      sync.Mutex
	lit     []lit
	clears  int
	ripples int
}

func (f *fakeSurface) HighlightCircle(index int, d time.Duration) {
	f.mu.Lock()
	f.lit = append(f.lit, lit{index, d})
	f.mu.Unlock()
}

func (f *fakeSurface) ClearAllHighlights() {
	f.mu.Lock()
	f.clears++
	f.mu.Unlock()
}

func (f *fakeSurface) Ripple() {
	f.mu.Lock()
	f.ripples++
	f.mu.Unlock()
}

func newTestScheduler() (*Scheduler, *ManualTimers, *fakePlayer, *fakeSurface) {
	timers := NewManualTimers()
	player := &fakePlayer{timers: timers}
	surface := &fakeSurface{}
	return NewScheduler(player, surface, timers), timers, player, surface
}

func TestPlanSameRingStagger(t *testing.T) {
	// 0, 3, 6 are ring 1 of directions top, bottom, left
	steps := Plan(Sequence{0, 3, 6})
	want := []time.Duration{0, 250 * time.Millisecond, 260 * time.Millisecond, 270 * time.Millisecond}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i, s := range steps {
		if s.Delay != want[i] {
			t.Fatalf("step %d delay = %v, want %v", i, s.Delay, want[i])
		}
	}
	if steps[0].Circle != pad.Center || steps[0].Sample != pad.CenterSample {
		t.Fatalf("first step should be the center, got %+v", steps[0])
	}
	for i, idx := range []int{0, 3, 6} {
		if steps[i+1].Circle != idx {
			t.Fatalf("step %d circle = %d, want %d (declaration order)", i+1, steps[i+1].Circle, idx)
		}
	}
}

func TestPlanOneDirectionAllRings(t *testing.T) {
	steps := Plan(Sequence{0, 1, 2})
	want := []time.Duration{0, 250 * time.Millisecond, 500 * time.Millisecond, 750 * time.Millisecond}
	for i, s := range steps {
		if s.Delay != want[i] {
			t.Fatalf("step %d delay = %v, want %v", i, s.Delay, want[i])
		}
		if i > 0 && s.Sample != pad.Directions[0].Sample {
			t.Fatalf("step %d sample = %d", i, s.Sample)
		}
	}
}

func TestPlanGroupsByRingRegardlessOfInputOrder(t *testing.T) {
	// ring 3, ring 1, ring 2, ring 1
	steps := Plan(Sequence{2, 3, 16, 9})
	got := make([]int, 0, len(steps))
	for _, s := range steps[1:] {
		got = append(got, s.Circle)
	}
	wantOrder := []int{3, 9, 16, 2}
	for i := range wantOrder {
		if got[i] != wantOrder[i] {
			t.Fatalf("order = %v, want %v", got, wantOrder)
		}
	}
	if steps[2].Delay != 260*time.Millisecond {
		t.Fatalf("second ring-1 circle delay = %v", steps[2].Delay)
	}
}

func TestPlanHighlightDurations(t *testing.T) {
	steps := Plan(Sequence{5})
	if steps[0].Highlight != 400*time.Millisecond {
		t.Fatalf("center highlight = %v", steps[0].Highlight)
	}
	if steps[1].Highlight != 600*time.Millisecond {
		t.Fatalf("circle highlight = %v", steps[1].Highlight)
	}
}

func TestPlanDropsInvalidIndices(t *testing.T) {
	steps := Plan(Sequence{0, 99, -4})
	if len(steps) != 2 {
		t.Fatalf("expected center + 1 step, got %d", len(steps))
	}
}

func TestPlayIssuesOneCallPerIndexPlusCenter(t *testing.T) {
	s, timers, player, surface := newTestScheduler()
	seq := Sequence{0, 4, 8, 12, 23}

	if err := s.Play(seq, Options{}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if player.count() != 0 {
		t.Fatalf("Play must not block or play synchronously")
	}
	timers.Advance(time.Second)

	if player.count() != len(seq)+1 {
		t.Fatalf("play calls = %d, want %d", player.count(), len(seq)+1)
	}
	if surface.clears != 1 || surface.ripples != 1 {
		t.Fatalf("clears=%d ripples=%d", surface.clears, surface.ripples)
	}
	if len(surface.lit) != len(seq)+1 {
		t.Fatalf("highlights = %d", len(surface.lit))
	}
	if s.Pending() != 0 {
		t.Fatalf("pending after playback = %d", s.Pending())
	}
}

func TestPlayTimingScenario(t *testing.T) {
	s, timers, player, _ := newTestScheduler()
	if err := s.Play(Sequence{0, 3, 6}, Options{}); err != nil {
		t.Fatal(err)
	}
	timers.Advance(time.Second)

	want := []time.Duration{0, 250 * time.Millisecond, 260 * time.Millisecond, 270 * time.Millisecond}
	for i, c := range player.calls {
		if c.at != want[i] {
			t.Fatalf("call %d at %v, want %v", i, c.at, want[i])
		}
	}
	if player.calls[0].sample != pad.CenterSample {
		t.Fatalf("first sound should be the droplet, got %d", player.calls[0].sample)
	}
}

func TestPlayEmptyIsNoop(t *testing.T) {
	var buf bytes.Buffer
	debug.SetOutput(&buf)
	defer debug.Disable()

	s, timers, player, surface := newTestScheduler()
	for _, seq := range []Sequence{nil, {}} {
		if err := s.Play(seq, Options{}); err != nil {
			t.Fatalf("Play(%v) = %v", seq, err)
		}
	}
	timers.Advance(time.Second)

	if player.count() != 0 || surface.clears != 0 {
		t.Fatalf("empty sequence must not play or clear")
	}
	if !strings.Contains(buf.String(), "no sequence to play") {
		t.Fatalf("expected a warning, log = %q", buf.String())
	}
}

func TestPlayContinuesAfterSampleFailure(t *testing.T) {
	var buf bytes.Buffer
	debug.SetOutput(&buf)
	defer debug.Disable()

	s, timers, player, surface := newTestScheduler()
	player.fail = map[int]error{pad.SampleFor(0): errors.New("autoplay blocked")}

	if err := s.Play(Sequence{0, 3, 6}, Options{}); err != nil {
		t.Fatal(err)
	}
	timers.Advance(time.Second)

	if player.count() != 4 {
		t.Fatalf("play calls = %d, want 4", player.count())
	}
	if len(surface.lit) != 4 {
		t.Fatalf("failed sample should still be highlighted")
	}
	if !strings.Contains(buf.String(), "autoplay blocked") {
		t.Fatalf("failure not logged: %q", buf.String())
	}
}

func TestPlayInModalUsesBothSurfaces(t *testing.T) {
	s, timers, _, main := newTestScheduler()
	modal := &fakeSurface{}
	s.SetModal(modal)

	s.Play(Sequence{1}, Options{})
	timers.Advance(time.Second)
	if len(modal.lit) != 0 || modal.clears != 0 {
		t.Fatalf("modal touched outside modal playback")
	}

	s.Play(Sequence{1}, Options{InModal: true})
	timers.Advance(time.Second)
	if len(modal.lit) != 2 || modal.clears != 1 || modal.ripples != 1 {
		t.Fatalf("modal lit=%d clears=%d ripples=%d", len(modal.lit), modal.clears, modal.ripples)
	}
	if len(main.lit) != 4 {
		t.Fatalf("main lit = %d, want 4", len(main.lit))
	}
	if modal.lit[0].index != pad.Center || modal.lit[0].d != pad.CenterHighlightDuration {
		t.Fatalf("modal center highlight = %+v", modal.lit[0])
	}
}

func TestCloseCancelsPendingSteps(t *testing.T) {
	s, timers, player, _ := newTestScheduler()
	s.Play(Sequence{0, 1, 2}, Options{})
	timers.Advance(300 * time.Millisecond)
	if player.count() != 2 {
		t.Fatalf("calls before close = %d", player.count())
	}

	s.Close()
	timers.Advance(time.Second)
	if player.count() != 2 {
		t.Fatalf("steps fired after close: %d", player.count())
	}
	if err := s.Play(Sequence{0}, Options{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Play after Close = %v", err)
	}
}

func TestSequenceKey(t *testing.T) {
	a := Sequence{0, 8, 16}
	b := Sequence{0, 8, 16}
	if a.Key() != "[0,8,16]" || a.Key() != b.Key() || !a.Equal(b) {
		t.Fatalf("keys differ: %s %s", a.Key(), b.Key())
	}
	if (Sequence{16, 8, 0}).Key() == a.Key() {
		t.Fatalf("order must matter for identity")
	}
	if Sequence(nil).Key() != "[]" {
		t.Fatalf("nil key = %s", Sequence(nil).Key())
	}
}
