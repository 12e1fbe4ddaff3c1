package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"glossolalia/app"
	"glossolalia/config"
	"glossolalia/debug"
	"glossolalia/midi"
	"glossolalia/pad"
	"glossolalia/sequencer"
	"glossolalia/store"
	"glossolalia/theme"
	"glossolalia/widgets"
)

type mode int

const (
	modePad mode = iota
	modeBar
	modeEditor
	modeConfirm
)

// Loop interval bounds offered by the editor, in seconds
const (
	minInterval = 1
	maxInterval = 60
)

// layoutBounds holds where View last drew things, for mouse hit testing
type layoutBounds struct {
	padTop, padLeft int
	barTop          int
	barHeight       int
}

// editor is the modal sequence editor state.
type editor struct {
	index    int // record being edited, -1 for a new one
	seq      sequencer.Sequence
	isLoop   bool
	interval int
	cursor   int
}

// Options are hooks into the rest of the program.
type Options struct {
	SaveConfig func(*config.Config) error
	SetVolume  func(float64)
	Palette    *theme.Palette // custom ramp, nil for built-in
}

type Model struct {
	Manager   *app.Manager
	DeviceMgr *midi.DeviceManager
	Theme     *theme.Theme
	opts      Options

	mode      mode
	cursor    int
	barSel    int
	barOffset int
	edit      editor
	confirm   int
	help      help.Model
	width     int
	height    int
	quitting  bool
	bounds    *layoutBounds
}

type UpdateMsg struct{}

func NewModel(manager *app.Manager, deviceMgr *midi.DeviceManager, opts Options) Model {
	cfg := manager.Config()
	return Model{
		Manager:   manager,
		DeviceMgr: deviceMgr,
		Theme:     theme.New(cfg.Preferences.Theme, opts.Palette),
		opts:      opts,
		cursor:    pad.Center,
		help:      help.New(),
		width:     80,
		bounds:    &layoutBounds{},
	}
}

func ListenForUpdates(manager *app.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Manager)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case UpdateMsg:
		m.clampBar()
		return m, ListenForUpdates(m.Manager)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.click(msg.X, msg.Y)
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.mode {
		case modePad:
			return m.updatePad(msg)
		case modeBar:
			return m.updateBar(msg)
		case modeEditor:
			m.updateEditor(msg)
		case modeConfirm:
			m.updateConfirm(msg)
		}
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.Manager.Close()
	return m, tea.Quit
}

func (m Model) updatePad(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := padKeys
	if dr, dc, ok := direction(msg, k.Up, k.Down, k.Left, k.Right); ok {
		m.cursor = move(m.cursor, dr, dc)
		return m, nil
	}
	switch {
	case key.Matches(msg, k.Quit):
		return m.quit()
	case key.Matches(msg, k.Tap):
		m.Manager.Tap(m.cursor)
	case key.Matches(msg, k.New):
		m.openEditor(-1)
	case key.Matches(msg, k.Bar):
		if len(m.Manager.Records()) > 0 {
			m.mode = modeBar
			m.clampBar()
		}
	case key.Matches(msg, k.StopAll):
		m.Manager.StopAllLoops()
	default:
		m.global(msg)
	}
	return m, nil
}

func (m Model) updateBar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := barKeys
	recs := m.Manager.Records()
	selected := m.barSel < len(recs)
	switch {
	case key.Matches(msg, padKeys.Quit):
		return m.quit()
	case key.Matches(msg, k.Back):
		m.mode = modePad
	case key.Matches(msg, k.Prev):
		m.barSel--
	case key.Matches(msg, k.Next):
		m.barSel++
	case key.Matches(msg, k.Play) && selected:
		if _, err := m.Manager.PlayRecord(m.barSel); err != nil {
			m.Manager.SetStatus(err.Error())
		}
	case key.Matches(msg, k.Loop) && selected:
		rec := recs[m.barSel]
		if _, err := m.Manager.ToggleLoop(rec.Sequence, rec.Interval()); err != nil {
			m.Manager.SetStatus(err.Error())
		}
	case key.Matches(msg, k.Edit) && selected:
		m.openEditor(m.barSel)
	case key.Matches(msg, k.Delete) && selected:
		m.confirm = m.barSel
		m.mode = modeConfirm
	case key.Matches(msg, padKeys.StopAll):
		m.Manager.StopAllLoops()
	default:
		m.global(msg)
	}
	m.clampBar()
	return m, nil
}

func (m *Model) updateEditor(msg tea.KeyMsg) {
	k := editorKeys
	if dr, dc, ok := direction(msg, k.Up, k.Down, k.Left, k.Right); ok {
		m.edit.cursor = move(m.edit.cursor, dr, dc)
		return
	}
	switch {
	case key.Matches(msg, k.Cancel):
		m.closeEditor()
	case key.Matches(msg, k.Toggle):
		m.toggleCircle(m.edit.cursor)
	case key.Matches(msg, k.Loop):
		m.edit.isLoop = !m.edit.isLoop
	case key.Matches(msg, k.Shorter):
		m.edit.interval = max(m.edit.interval-1, minInterval)
	case key.Matches(msg, k.Longer):
		m.edit.interval = min(m.edit.interval+1, maxInterval)
	case key.Matches(msg, k.Clear):
		m.edit.seq = nil
	case key.Matches(msg, k.Test):
		m.Manager.TestInModal(m.edit.seq)
	case key.Matches(msg, k.Save):
		m.saveEditor()
	}
}

func (m *Model) updateConfirm(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, confirmKeys.Yes):
		if err := m.Manager.DeleteRecord(m.confirm); err != nil {
			m.Manager.SetStatus(err.Error())
		}
		m.mode = modeBar
		if len(m.Manager.Records()) == 0 {
			m.mode = modePad
		}
		m.clampBar()
	case key.Matches(msg, confirmKeys.No):
		m.mode = modeBar
	}
}

// global handles keys shared by the pad and the bar.
func (m *Model) global(msg tea.KeyMsg) {
	cfg := m.Manager.Config()
	switch {
	case key.Matches(msg, globalKeys.Theme):
		mode := cfg.NextTheme()
		m.Theme = theme.New(mode, m.opts.Palette)
		m.Manager.SetStatus("theme: " + string(mode))
		m.saveConfig()
	case key.Matches(msg, globalKeys.VolUp):
		m.setVolume(cfg.Preferences.Volume + 0.1)
	case key.Matches(msg, globalKeys.VolDown):
		m.setVolume(cfg.Preferences.Volume - 0.1)
	case key.Matches(msg, globalKeys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
}

func (m *Model) setVolume(v float64) {
	cfg := m.Manager.Config()
	v = min(max(v, 0), 1)
	cfg.Preferences.Volume = float64(int(v*10+0.5)) / 10
	if m.opts.SetVolume != nil {
		m.opts.SetVolume(cfg.Preferences.Volume)
	}
	m.Manager.SetStatus(fmt.Sprintf("volume %d%%", int(cfg.Preferences.Volume*100+0.5)))
	m.saveConfig()
}

func (m *Model) saveConfig() {
	if m.opts.SaveConfig == nil {
		return
	}
	if err := m.opts.SaveConfig(m.Manager.Config()); err != nil {
		debug.Warn("config", "save failed: %v", err)
	}
}

func (m *Model) openEditor(index int) {
	e := editor{index: index, interval: m.Manager.Config().Loops.DefaultInterval, cursor: pad.Center}
	if index >= 0 {
		rec := m.Manager.Records()[index]
		e.seq = rec.Sequence.Clone()
		e.isLoop = rec.IsLoop
		e.interval = rec.LoopInterval
	}
	m.edit = e
	m.mode = modeEditor
	m.Manager.Modal.ClearAllHighlights()
}

func (m *Model) closeEditor() {
	m.Manager.Modal.ClearAllHighlights()
	m.mode = modePad
	if m.edit.index >= 0 {
		m.mode = modeBar
	}
}

// toggleCircle adds or removes a small circle from the edited sequence,
// playing it as feedback.
func (m *Model) toggleCircle(idx int) {
	if !pad.Valid(idx) {
		return
	}
	if i := slices.Index(m.edit.seq, idx); i >= 0 {
		m.edit.seq = slices.Delete(m.edit.seq, i, i+1)
		return
	}
	m.edit.seq = append(m.edit.seq, idx)
	m.Manager.TapModal(idx)
}

func (m *Model) saveEditor() {
	if len(m.edit.seq) == 0 {
		m.Manager.SetStatus("select at least one circle")
		return
	}
	rec := store.NewRecord(m.edit.seq, m.edit.isLoop, m.edit.interval)
	var err error
	if m.edit.index >= 0 {
		err = m.Manager.UpdateRecord(m.edit.index, rec)
	} else {
		err = m.Manager.SaveRecord(rec)
		m.barSel = len(m.Manager.Records()) - 1
	}
	if err != nil {
		m.Manager.SetStatus("save failed: " + err.Error())
		return
	}
	m.saveConfig()
	m.Manager.Modal.ClearAllHighlights()
	m.mode = modeBar
	m.clampBar()
}

func (m *Model) click(x, y int) {
	b := m.bounds
	if y >= b.padTop && y < b.padTop+pad.GridSize {
		idx, ok := widgets.CircleAt(x-b.padLeft, y-b.padTop)
		if !ok {
			return
		}
		if m.mode == modeEditor {
			m.edit.cursor = idx
			m.toggleCircle(idx)
			return
		}
		m.cursor = idx
		m.Manager.Tap(idx)
		return
	}
	if m.mode == modeEditor || m.mode == modeConfirm {
		return
	}
	if b.barHeight > 0 && y >= b.barTop && y < b.barTop+b.barHeight && x >= 0 {
		i := m.barOffset + x/widgets.ThumbWidth
		if i < len(m.Manager.Records()) {
			m.mode = modeBar
			m.barSel = i
			if _, err := m.Manager.PlayRecord(i); err != nil {
				m.Manager.SetStatus(err.Error())
			}
		}
	}
}

// clampBar keeps the selection valid and scrolled into view.
func (m *Model) clampBar() {
	n := len(m.Manager.Records())
	m.barSel = min(max(m.barSel, 0), max(n-1, 0))
	visible := widgets.VisibleThumbs(m.width)
	if m.barSel < m.barOffset {
		m.barOffset = m.barSel
	}
	if m.barSel >= m.barOffset+visible {
		m.barOffset = m.barSel - visible + 1
	}
	m.barOffset = min(max(m.barOffset, 0), max(n-visible, 0))
}

// move walks the grid from circle idx by (dr, dc) until it reaches the
// next circle.
func move(idx, dr, dc int) int {
	row, col, ok := pad.GridPos(idx)
	if !ok {
		return idx
	}
	for step := 1; step < pad.GridSize; step++ {
		r, c := row+dr*step, col+dc*step
		if r < 0 || r >= pad.GridSize || c < 0 || c >= pad.GridSize {
			break
		}
		if next, ok := pad.FromGridPos(r, c); ok {
			return next
		}
	}
	return idx
}
