// Package app ties the pad, the scheduler, the loop manager and the
// sequence store together for the front ends.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"glossolalia/config"
	"glossolalia/debug"
	"glossolalia/midi"
	"glossolalia/pad"
	"glossolalia/sequencer"
	"glossolalia/store"
)

// StatusDuration is how long a transient status message stays visible.
const StatusDuration = 2 * time.Second

// Animation refresh rate while the board is moving
const frameFPS = 30

// Manager owns the runtime state of one pad session.
type Manager struct {
	Board *pad.Board // main pad
	Modal *pad.Board // editor preview

	cfg    *config.Config
	store  store.Store
	player sequencer.Player
	timers sequencer.Timers
	sched  *sequencer.Scheduler
	loops  *sequencer.LoopManager

	mu          sync.Mutex
	records     []store.Record
	status      string
	statusUntil time.Time
	now         func() time.Time

	// Notify the UI of updates
	UpdateChan chan struct{}
}

// NewManager loads the saved sequences and wires playback.
func NewManager(cfg *config.Config, st store.Store, player sequencer.Player, timers sequencer.Timers) (*Manager, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	recs, err := st.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load sequences: %w", err)
	}

	m := &Manager{
		Board:      pad.NewBoard(),
		Modal:      pad.NewBoard(),
		cfg:        cfg,
		store:      st,
		player:     player,
		timers:     timers,
		records:    recs,
		now:        time.Now,
		UpdateChan: make(chan struct{}, 1),
	}
	m.sched = sequencer.NewScheduler(player, m.Board, timers)
	m.sched.SetModal(m.Modal)

	m.loops = sequencer.NewLoopManager(m.Play, timers)
	m.loops.SetMax(cfg.Loops.Max)
	m.loops.SetOnReject(func(seq sequencer.Sequence) {
		m.SetStatus(fmt.Sprintf("maximum %d loops reached", m.loops.Max()))
	})
	m.loops.SetOnStop(func(seq sequencer.Sequence, err error) {
		if err != nil {
			m.SetStatus(fmt.Sprintf("loop %s stopped: %v", seq.Key(), err))
		}
	})
	m.loops.SetOnChange(m.notifyUpdate)

	debug.Log("app", "loaded %d sequences", len(recs))
	return m, nil
}

// SetNowFunc overrides the clock used for status expiry and both boards.
func (m *Manager) SetNowFunc(f func() time.Time) {
	m.mu.Lock()
	m.now = f
	m.mu.Unlock()
	m.Board.SetNowFunc(f)
	m.Modal.SetNowFunc(f)
}

// Config returns the live configuration.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Tap plays one circle right away, as when it is clicked.
func (m *Manager) Tap(index int) error {
	return m.tap(m.Board, index)
}

// TapModal is Tap on the editor preview.
func (m *Manager) TapModal(index int) error {
	return m.tap(m.Modal, index)
}

func (m *Manager) tap(b *pad.Board, index int) error {
	if index != pad.Center && !pad.Valid(index) {
		return fmt.Errorf("%w: %d", pad.ErrBadIndex, index)
	}
	if err := m.player.Play(pad.SampleFor(index)); err != nil {
		debug.Warn("audio", "failed to play circle %d: %v", index, err)
	}
	d := pad.HighlightDuration
	if index == pad.Center {
		d = pad.CenterHighlightDuration
	}
	b.Ripple()
	b.HighlightCircle(index, d)
	m.notifyUpdate()
	return nil
}

// Play schedules a one-shot playback on the main pad.
func (m *Manager) Play(seq sequencer.Sequence) error {
	err := m.sched.Play(seq, sequencer.Options{})
	m.notifyUpdate()
	return err
}

// TestInModal plays seq on the main pad and the editor preview.
func (m *Manager) TestInModal(seq sequencer.Sequence) error {
	err := m.sched.Play(seq, sequencer.Options{InModal: true})
	m.notifyUpdate()
	return err
}

// Records returns a copy of the saved sequences.
func (m *Manager) Records() []store.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Record, len(m.records))
	for i, r := range m.records {
		r.Sequence = r.Sequence.Clone()
		out[i] = r
	}
	return out
}

func (m *Manager) record(i int) (store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.records) {
		return store.Record{}, fmt.Errorf("%w: %d", store.ErrIndexOutOfRange, i)
	}
	return m.records[i], nil
}

// PlayRecord activates saved sequence i: loop records toggle their loop,
// others play once.
func (m *Manager) PlayRecord(i int) (sequencer.LoopState, error) {
	rec, err := m.record(i)
	if err != nil {
		return sequencer.Idle, err
	}
	if rec.IsLoop {
		return m.ToggleLoop(rec.Sequence, rec.Interval())
	}
	return sequencer.Idle, m.Play(rec.Sequence)
}

// ToggleLoop starts or stops a loop. A capacity rejection is reported on
// the status line and not returned as an error.
func (m *Manager) ToggleLoop(seq sequencer.Sequence, interval time.Duration) (sequencer.LoopState, error) {
	if interval <= 0 {
		interval = time.Duration(m.cfg.Loops.DefaultInterval) * time.Second
	}
	state, err := m.loops.Toggle(seq, interval)
	if errors.Is(err, sequencer.ErrTooManyLoops) {
		return state, nil
	}
	return state, err
}

// IsLooping reports whether seq is looping.
func (m *Manager) IsLooping(seq sequencer.Sequence) bool {
	return m.loops.IsLooping(seq)
}

// ActiveLoops returns the looping sequences in start order.
func (m *Manager) ActiveLoops() []sequencer.Sequence {
	return m.loops.Active()
}

// MaxLoops is the loop capacity.
func (m *Manager) MaxLoops() int {
	return m.loops.Max()
}

// StopAllLoops stops every loop.
func (m *Manager) StopAllLoops() {
	m.loops.StopAll()
}

// SaveRecord appends a new sequence.
func (m *Manager) SaveRecord(rec store.Record) error {
	if len(rec.Sequence) == 0 {
		return errors.New("sequence is empty")
	}
	if err := m.store.Save(rec); err != nil {
		return err
	}
	m.cfg.TutorialSeen = true
	return m.reload()
}

// UpdateRecord replaces sequence i. A loop running for the old sequence is
// stopped.
func (m *Manager) UpdateRecord(i int, rec store.Record) error {
	old, err := m.record(i)
	if err != nil {
		return err
	}
	if len(rec.Sequence) == 0 {
		return errors.New("sequence is empty")
	}
	m.loops.Stop(old.Sequence)
	if err := m.store.Update(i, rec); err != nil {
		return err
	}
	return m.reload()
}

// DeleteRecord removes sequence i, stopping its loop.
func (m *Manager) DeleteRecord(i int) error {
	old, err := m.record(i)
	if err != nil {
		return err
	}
	m.loops.Stop(old.Sequence)
	if err := m.store.Delete(i); err != nil {
		return err
	}
	return m.reload()
}

// ClearRecords removes every sequence and stops all loops.
func (m *Manager) ClearRecords() error {
	m.loops.StopAll()
	if err := m.store.Clear(); err != nil {
		return err
	}
	return m.reload()
}

func (m *Manager) reload() error {
	recs, err := m.store.LoadAll()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.records = recs
	m.mu.Unlock()
	m.notifyUpdate()
	return nil
}

// SetStatus shows msg for StatusDuration.
func (m *Manager) SetStatus(msg string) {
	m.mu.Lock()
	m.status = msg
	m.statusUntil = m.now().Add(StatusDuration)
	m.mu.Unlock()
	debug.Log("status", "%s", msg)
	m.notifyUpdate()
}

// Status returns the current transient message, if any.
func (m *Manager) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != "" && !m.now().Before(m.statusUntil) {
		m.status = ""
	}
	return m.status
}

// StartRuntime keeps the UI redrawing while anything animates, until ctx
// is done.
func (m *Manager) StartRuntime(ctx context.Context) {
	go m.frameLoop(ctx)
}

func (m *Manager) frameLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / frameFPS)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.Board.Animating() || m.Modal.Animating() || m.Status() != "" {
				m.notifyUpdate()
			}
		}
	}
}

// AttachController routes a controller's presses to Tap and, for grid
// controllers, mirrors the main board onto its LEDs. It returns when the
// controller closes or ctx is done.
func (m *Manager) AttachController(ctx context.Context, c midi.Controller) {
	debug.Log("app", "attached %s (%s)", c.ID(), c.Type())
	if c.Type() == midi.ControllerLaunchpad {
		go midi.Mirror(ctx, c, m.Board, frameFPS)
	}
	pads, notes := c.PadEvents(), c.NoteEvents()
	for pads != nil || notes != nil {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-pads:
			if !ok {
				pads = nil
				continue
			}
			if idx, ok := midi.CircleForPad(ev); ok {
				m.Tap(idx)
			}
		case ev, ok := <-notes:
			if !ok {
				notes = nil
				continue
			}
			if idx, ok := midi.NoteToCircle(ev.Note); ok {
				m.Tap(idx)
			}
		}
	}
}

// WatchDevices attaches every controller dm reports until ctx is done.
func (m *Manager) WatchDevices(ctx context.Context, dm *midi.DeviceManager) {
	for ev := range dm.Events() {
		switch ev.Type {
		case midi.DeviceConnected:
			go m.AttachController(ctx, ev.Controller)
			m.SetStatus("connected " + ev.ID)
		case midi.DeviceDisconnected:
			m.SetStatus("disconnected " + ev.ID)
		}
	}
}

// Close stops all loops and pending playback.
func (m *Manager) Close() {
	m.loops.StopAll()
	m.sched.Close()
}

// notifyUpdate wakes the UI without blocking
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
