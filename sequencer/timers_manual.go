package sequencer

import (
	"sync"
	"time"
)

// ManualTimers is a Timers whose clock only moves when Advance is called.
// The UI tests and the sequencer tests use it to step playback
// deterministically.
type ManualTimers struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	order int
	at    time.Duration
	every time.Duration
	f     func()
	dead  bool
}

func NewManualTimers() *ManualTimers {
	return &ManualTimers{}
}

func (m *ManualTimers) AfterFunc(d time.Duration, f func()) Cancel {
	return m.add(d, 0, f)
}

func (m *ManualTimers) Every(d time.Duration, f func()) Cancel {
	if d <= 0 {
		d = time.Millisecond
	}
	return m.add(d, d, f)
}

func (m *ManualTimers) add(d, every time.Duration, f func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{order: m.seq, at: m.now + d, every: every, f: f}
	m.pending = append(m.pending, t)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t.dead = true
		m.remove(t)
	}
}

func (m *ManualTimers) remove(t *manualTimer) {
	for i, p := range m.pending {
		if p == t {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward, firing due callbacks in time order
// (registration order for ties). Callbacks run without the lock held so
// they may register or cancel timers.
func (m *ManualTimers) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.at
		if next.every > 0 {
			next.at += next.every
			m.seq++
			next.order = m.seq
		} else {
			next.dead = true
			m.remove(next)
		}
		m.mu.Unlock()
		next.f()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

func (m *ManualTimers) nextDue(target time.Duration) *manualTimer {
	var best *manualTimer
	for _, t := range m.pending {
		if t.dead || t.at > target {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.order < best.order) {
			best = t
		}
	}
	return best
}

// Now is the elapsed manual time.
func (m *ManualTimers) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending counts timers still registered (one-shot and repeating).
func (m *ManualTimers) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Repeating counts registered Every timers.
func (m *ManualTimers) Repeating() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if t.every > 0 {
			n++
		}
	}
	return n
}
