package sequencer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"glossolalia/debug"
)

const (
	MaxLoops            = 5
	DefaultLoopInterval = 3 * time.Second
)

var ErrTooManyLoops = errors.New("too many loops running")

// LoopState of one sequence
type LoopState int

const (
	Idle LoopState = iota
	Looping
)

func (s LoopState) String() string {
	if s == Looping {
		return "looping"
	}
	return "idle"
}

// PlayFunc plays a sequence once.
type PlayFunc func(Sequence) error

type loop struct {
	seq      Sequence
	interval time.Duration
	cancel   Cancel
}

// LoopManager runs independent repeating playbacks keyed by sequence value.
// Timer ticks arrive on their own goroutines, so the registry is locked.
type LoopManager struct {
	play   PlayFunc
	timers Timers

	mu       sync.Mutex
	max      int
	active   map[string]*loop
	order    []string
	onReject func(Sequence)
	onStop   func(Sequence, error)
	onChange func()
}

func NewLoopManager(play PlayFunc, timers Timers) *LoopManager {
	if timers == nil {
		timers = RealTimers{}
	}
	return &LoopManager{
		play:   play,
		timers: timers,
		max:    MaxLoops,
		active: make(map[string]*loop),
	}
}

// SetMax changes the concurrency cap for future starts.
func (lm *LoopManager) SetMax(n int) {
	if n < 1 {
		n = 1
	}
	lm.mu.Lock()
	lm.max = n
	lm.mu.Unlock()
}

// SetOnReject is called when a start is refused for capacity.
func (lm *LoopManager) SetOnReject(f func(Sequence)) {
	lm.mu.Lock()
	lm.onReject = f
	lm.mu.Unlock()
}

// SetOnStop is called when a loop stops itself after a failed tick.
func (lm *LoopManager) SetOnStop(f func(Sequence, error)) {
	lm.mu.Lock()
	lm.onStop = f
	lm.mu.Unlock()
}

// SetOnChange is called after any loop starts or stops.
func (lm *LoopManager) SetOnChange(f func()) {
	lm.mu.Lock()
	lm.onChange = f
	lm.mu.Unlock()
}

// Toggle starts seq looping every interval, or stops it if it already is.
// Starting plays once immediately. Past the cap nothing changes and
// ErrTooManyLoops is returned.
func (lm *LoopManager) Toggle(seq Sequence, interval time.Duration) (LoopState, error) {
	if len(seq) == 0 {
		debug.Warn("loop", "no sequence to loop")
		return Idle, nil
	}
	if interval <= 0 {
		interval = DefaultLoopInterval
	}
	key := seq.Key()

	lm.mu.Lock()
	if l, ok := lm.active[key]; ok {
		lm.removeLocked(key)
		lm.mu.Unlock()
		if l.cancel != nil {
			l.cancel()
		}
		debug.Log("loop", "stopped %s", key)
		lm.changed()
		return Idle, nil
	}
	if len(lm.active) >= lm.max {
		reject := lm.onReject
		lm.mu.Unlock()
		debug.Log("loop", "rejected %s: %d loops already running", key, lm.max)
		if reject != nil {
			reject(seq)
		}
		return Idle, ErrTooManyLoops
	}
	l := &loop{seq: seq.Clone(), interval: interval}
	lm.active[key] = l
	lm.order = append(lm.order, key)
	lm.mu.Unlock()

	if err := lm.safePlay(l.seq); err != nil {
		lm.stop(key, l, err)
		return Idle, fmt.Errorf("start loop %s: %w", key, err)
	}

	lm.mu.Lock()
	if lm.active[key] != l {
		// toggled off while the first playback was being scheduled
		lm.mu.Unlock()
		return Idle, nil
	}
	l.cancel = lm.timers.Every(interval, func() { lm.tick(key, l) })
	lm.mu.Unlock()

	debug.Log("loop", "started %s every %v", key, interval)
	lm.changed()
	return Looping, nil
}

func (lm *LoopManager) tick(key string, l *loop) {
	lm.mu.Lock()
	live := lm.active[key] == l
	lm.mu.Unlock()
	if !live {
		return
	}
	if err := lm.safePlay(l.seq); err != nil {
		debug.Log("loop", "error in loop %s: %v", key, err)
		lm.stop(key, l, err)
	}
}

// safePlay turns a panicking playback into an error so one broken loop
// cannot take the process down.
func (lm *LoopManager) safePlay(seq Sequence) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("playback panic: %v", r)
		}
	}()
	if lm.play == nil {
		return nil
	}
	return lm.play(seq)
}

func (lm *LoopManager) stop(key string, l *loop, cause error) {
	lm.mu.Lock()
	if lm.active[key] != l {
		lm.mu.Unlock()
		return
	}
	lm.removeLocked(key)
	onStop := lm.onStop
	lm.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	if onStop != nil {
		onStop(l.seq, cause)
	}
	lm.changed()
}

func (lm *LoopManager) removeLocked(key string) {
	delete(lm.active, key)
	for i, k := range lm.order {
		if k == key {
			lm.order = append(lm.order[:i], lm.order[i+1:]...)
			break
		}
	}
}

func (lm *LoopManager) changed() {
	lm.mu.Lock()
	f := lm.onChange
	lm.mu.Unlock()
	if f != nil {
		f()
	}
}

// IsLooping compares by value, so a reloaded copy of a looping sequence
// reports true.
func (lm *LoopManager) IsLooping(seq Sequence) bool {
	if len(seq) == 0 {
		return false
	}
	lm.mu.Lock()
	defer lm.mu.Unlock()
	_, ok := lm.active[seq.Key()]
	return ok
}

// Stop ends seq's loop if it is running.
func (lm *LoopManager) Stop(seq Sequence) bool {
	if !lm.IsLooping(seq) {
		return false
	}
	key := seq.Key()
	lm.mu.Lock()
	l, ok := lm.active[key]
	if ok {
		lm.removeLocked(key)
	}
	lm.mu.Unlock()
	if !ok {
		return false
	}
	if l.cancel != nil {
		l.cancel()
	}
	lm.changed()
	return true
}

// StopAll ends every loop.
func (lm *LoopManager) StopAll() {
	lm.mu.Lock()
	loops := make([]*loop, 0, len(lm.active))
	for _, l := range lm.active {
		loops = append(loops, l)
	}
	clear(lm.active)
	lm.order = nil
	lm.mu.Unlock()

	for _, l := range loops {
		if l.cancel != nil {
			l.cancel()
		}
	}
	if len(loops) > 0 {
		lm.changed()
	}
}

// Active returns running sequences in start order.
func (lm *LoopManager) Active() []Sequence {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	out := make([]Sequence, 0, len(lm.order))
	for _, k := range lm.order {
		out = append(out, lm.active[k].seq.Clone())
	}
	return out
}

// Count is the number of running loops.
func (lm *LoopManager) Count() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.active)
}

// Max is the current cap.
func (lm *LoopManager) Max() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.max
}
