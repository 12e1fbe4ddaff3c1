package sequencer

import (
	"errors"
	"sync"
	"time"

	"glossolalia/debug"
	"glossolalia/pad"
)

// SampleStagger separates samples that share a ring so they stay audible.
const SampleStagger = 10 * time.Millisecond

var ErrClosed = errors.New("scheduler closed")

// Player plays a numbered sample from the start.
type Player interface {
	Play(sample int) error
}

// Highlighter is a rendering surface the scheduler lights up.
type Highlighter interface {
	HighlightCircle(index int, d time.Duration)
	ClearAllHighlights()
	Ripple()
}

// Options for one playback.
type Options struct {
	InModal bool // also light the editor surface
}

// Step is one timed sound + highlight of a playback.
type Step struct {
	Delay     time.Duration
	Circle    int // pad.Center or 0-23
	Sample    int
	Highlight time.Duration
}

// Plan turns a sequence into its timed steps: the center at 0, then each
// ring at its offset with same-ring circles staggered in declaration order.
// Indices outside the pad are dropped.
func Plan(seq Sequence) []Step {
	if len(seq) == 0 {
		return nil
	}

	var groups [pad.NumRings + 1][]int
	for _, idx := range seq {
		c, err := pad.Locate(idx)
		if err != nil {
			debug.Warn("sched", "skipping %v", err)
			continue
		}
		groups[c.Radian()] = append(groups[c.Radian()], idx)
	}

	steps := []Step{{
		Delay:     0,
		Circle:    pad.Center,
		Sample:    pad.CenterSample,
		Highlight: pad.CenterHighlightDuration,
	}}
	for radian := 1; radian <= pad.NumRings; radian++ {
		base := pad.RadianOffset(radian)
		for k, idx := range groups[radian] {
			steps = append(steps, Step{
				Delay:     base + time.Duration(k)*SampleStagger,
				Circle:    idx,
				Sample:    pad.SampleFor(idx),
				Highlight: pad.HighlightDuration,
			})
		}
	}
	return steps
}

// Scheduler turns sequences into timed audio and highlight callbacks.
type Scheduler struct {
	player Player
	main   Highlighter
	modal  Highlighter
	timers Timers

	mu      sync.Mutex
	pending map[int]Cancel
	nextID  int
	closed  bool
}

func NewScheduler(player Player, main Highlighter, timers Timers) *Scheduler {
	if timers == nil {
		timers = RealTimers{}
	}
	return &Scheduler{
		player:  player,
		main:    main,
		timers:  timers,
		pending: make(map[int]Cancel),
	}
}

// SetModal sets the editor surface used when Options.InModal is set.
func (s *Scheduler) SetModal(h Highlighter) {
	s.mu.Lock()
	s.modal = h
	s.mu.Unlock()
}

// Play schedules one playback of seq. An empty sequence is a no-op.
func (s *Scheduler) Play(seq Sequence, opts Options) error {
	if len(seq) == 0 {
		debug.Warn("sched", "no sequence to play")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	surfaces := s.surfaces(opts)
	for _, h := range surfaces {
		h.ClearAllHighlights()
		h.Ripple()
	}

	for _, step := range Plan(seq) {
		id := s.nextID
		s.nextID++
		s.pending[id] = s.timers.AfterFunc(step.Delay, func() {
			s.mu.Lock()
			_, live := s.pending[id]
			delete(s.pending, id)
			s.mu.Unlock()
			if live {
				s.fire(step, surfaces)
			}
		})
	}
	return nil
}

func (s *Scheduler) surfaces(opts Options) []Highlighter {
	var out []Highlighter
	if s.main != nil {
		out = append(out, s.main)
	}
	if opts.InModal && s.modal != nil {
		out = append(out, s.modal)
	}
	return out
}

func (s *Scheduler) fire(step Step, surfaces []Highlighter) {
	if s.player != nil {
		if err := s.player.Play(step.Sample); err != nil {
			debug.Warn("audio", "failed to play circle %d (sample %d): %v", step.Circle, step.Sample, err)
		}
	}
	for _, h := range surfaces {
		h.HighlightCircle(step.Circle, step.Highlight)
	}
}

// Pending counts steps scheduled but not yet fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close cancels everything still scheduled. Later Play calls fail.
func (s *Scheduler) Close() {
	s.mu.Lock()
	pending := s.pending
	s.pending = make(map[int]Cancel)
	s.closed = true
	s.mu.Unlock()

	for _, cancel := range pending {
		cancel()
	}
}
