package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"glossolalia/app"
	"glossolalia/config"
	"glossolalia/pad"
	"glossolalia/sequencer"
	"glossolalia/store"
)

type nopPlayer struct{ plays int }

func (p *nopPlayer) Play(int) error { p.plays++; return nil }

func newTestModel(t *testing.T, recs ...store.Record) (Model, *sequencer.ManualTimers, *nopPlayer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Preferences.Theme = config.ThemeDark
	timers := sequencer.NewManualTimers()
	player := &nopPlayer{}
	mgr, err := app.NewManager(cfg, store.NewMemoryStore(recs...), player, timers)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(mgr.Close)
	return NewModel(mgr, nil, Options{}), timers, player
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func TestMoveWalksToNextCircle(t *testing.T) {
	cases := []struct {
		from   int
		dr, dc int
		want   int
	}{
		{pad.Center, -1, 0, pad.Index(0, 0)},
		{pad.Center, 0, -1, pad.Index(2, 0)},
		{pad.Index(0, 2), 0, 1, pad.Index(4, 2)}, // top ring 3 -> top-right ring 3
		{pad.Index(4, 2), 0, 1, pad.Index(4, 2)}, // edge
		{pad.Index(0, 0), 1, 0, pad.Center},
	}
	for _, c := range cases {
		if got := move(c.from, c.dr, c.dc); got != c.want {
			t.Errorf("move(%d, %d, %d) = %d, want %d", c.from, c.dr, c.dc, got, c.want)
		}
	}
}

func TestHelpFollowsMode(t *testing.T) {
	m, _, _ := newTestModel(t)
	if !strings.Contains(m.View(), "new sequence") {
		t.Fatalf("pad help missing")
	}
	m = press(m, "n")
	if !strings.Contains(m.View(), "shorter") {
		t.Fatalf("editor help missing:\n%s", m.View())
	}
	m = press(m, "esc", "?")
	if !m.help.ShowAll || !strings.Contains(m.View(), "stop loops") {
		t.Fatalf("full help missing")
	}
}

func TestTapFromKeyboard(t *testing.T) {
	m, _, player := newTestModel(t)
	m = press(m, "k", " ")
	if player.plays != 1 {
		t.Fatalf("plays = %d", player.plays)
	}
	if m.Manager.Board.Intensity(pad.Index(0, 0)) == 0 {
		t.Fatalf("tapped circle not lit")
	}
}

func TestRecordNewSequence(t *testing.T) {
	m, _, _ := newTestModel(t)
	if !strings.Contains(m.View(), "first sequence") {
		t.Fatalf("tutorial hint missing")
	}

	m = press(m, "n")
	if m.mode != modeEditor {
		t.Fatalf("n did not open the editor")
	}
	m = press(m, "k", " ", "k", " ", "L", "]", "s")
	if m.mode != modeBar {
		t.Fatalf("mode after save = %v", m.mode)
	}
	recs := m.Manager.Records()
	if len(recs) != 1 {
		t.Fatalf("records = %+v", recs)
	}
	want := sequencer.Sequence{pad.Index(0, 0), pad.Index(0, 1)}
	if !recs[0].Sequence.Equal(want) || !recs[0].IsLoop || recs[0].LoopInterval != 4 {
		t.Fatalf("saved = %+v", recs[0])
	}
	if strings.Contains(m.View(), "first sequence") {
		t.Fatalf("tutorial hint still shown")
	}
}

func TestEditorToggleRemoves(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "n", "l", " ", " ")
	if len(m.edit.seq) != 0 {
		t.Fatalf("second toggle should remove, seq = %v", m.edit.seq)
	}
	m = press(m, "s")
	if m.mode != modeEditor || len(m.Manager.Records()) != 0 {
		t.Fatalf("empty sequence must not save")
	}
	m = press(m, "esc")
	if m.mode != modePad {
		t.Fatalf("esc from new sequence = %v", m.mode)
	}
}

func TestBarLoopAndDelete(t *testing.T) {
	seq := sequencer.Sequence{0, 8, 16}
	m, timers, _ := newTestModel(t,
		store.NewRecord(sequencer.Sequence{1}, false, 0),
		store.NewRecord(seq, true, 3),
	)

	m = press(m, "tab", "l", "enter")
	if !m.Manager.IsLooping(seq) {
		t.Fatalf("enter on a loop record should start it")
	}
	if !strings.Contains(m.View(), "loops 1/5") {
		t.Fatalf("header missing loop count:\n%s", m.View())
	}

	m = press(m, "d")
	if m.mode != modeConfirm {
		t.Fatalf("d should ask first")
	}
	m = press(m, "n")
	if len(m.Manager.Records()) != 2 {
		t.Fatalf("cancelled delete removed a record")
	}

	m = press(m, "d", "y")
	if len(m.Manager.Records()) != 1 || m.Manager.IsLooping(seq) {
		t.Fatalf("delete should remove the record and stop its loop")
	}
	if timers.Repeating() != 0 {
		t.Fatalf("loop timer left armed")
	}
	if m.barSel != 0 {
		t.Fatalf("selection not clamped: %d", m.barSel)
	}
}

func TestEditLoopingSequenceStopsLoop(t *testing.T) {
	seq := sequencer.Sequence{5}
	m, _, _ := newTestModel(t, store.NewRecord(seq, true, 3))
	m = press(m, "tab", "enter")
	if !m.Manager.IsLooping(seq) {
		t.Fatal("loop not started")
	}
	m = press(m, "e")
	if m.mode != modeEditor || !m.edit.seq.Equal(seq) || m.edit.index != 0 {
		t.Fatalf("editor = %+v", m.edit)
	}
	m = press(m, "l", " ", "s")
	if m.Manager.IsLooping(seq) || len(m.Manager.ActiveLoops()) != 0 {
		t.Fatalf("editing should stop the old loop")
	}
}

func TestLoopCapacityShowsStatus(t *testing.T) {
	var recs []store.Record
	for i := 0; i < 6; i++ {
		recs = append(recs, store.NewRecord(sequencer.Sequence{i}, true, 3))
	}
	m, _, _ := newTestModel(t, recs...)
	m = press(m, "tab")
	for i := 0; i < 6; i++ {
		m = press(m, "enter", "l")
	}
	if n := len(m.Manager.ActiveLoops()); n != 5 {
		t.Fatalf("active loops = %d", n)
	}
	if !strings.Contains(m.View(), "maximum 5 loops") {
		t.Fatalf("rejection not shown:\n%s", m.View())
	}
}

func TestTestInEditorLightsPreview(t *testing.T) {
	m, timers, player := newTestModel(t)
	m = press(m, "n", "h", " ")
	m.Manager.Modal.ClearAllHighlights()
	before := player.plays

	m = press(m, "t")
	timers.Advance(time.Second)
	if player.plays != before+2 {
		t.Fatalf("test playback plays = %d, want center + 1", player.plays-before)
	}
	if len(m.Manager.Modal.Lit()) == 0 {
		t.Fatalf("test playback did not light the preview")
	}
}

func TestMouseTap(t *testing.T) {
	m, _, player := newTestModel(t)
	m.View()
	row, col, _ := pad.GridPos(pad.Index(3, 2))
	msg := tea.MouseMsg{
		X:      m.bounds.padLeft + col*3 + 1,
		Y:      m.bounds.padTop + row,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	}
	next, _ := m.Update(msg)
	m = next.(Model)
	if player.plays != 1 || m.cursor != pad.Index(3, 2) {
		t.Fatalf("click: plays=%d cursor=%d", player.plays, m.cursor)
	}
}

func TestThemeCycle(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "T")
	if m.Manager.Config().Preferences.Theme != config.ThemeSystem {
		t.Fatalf("theme after dark = %s", m.Manager.Config().Preferences.Theme)
	}
	m = press(m, "T")
	if m.Theme.Dark {
		t.Fatalf("light theme reports dark")
	}
}

func TestVolumeKeys(t *testing.T) {
	var set []float64
	m, _, _ := newTestModel(t)
	m.opts.SetVolume = func(v float64) { set = append(set, v) }
	m = press(m, "+", "+", "+", "+")
	if v := m.Manager.Config().Preferences.Volume; v != 1 {
		t.Fatalf("volume = %v", v)
	}
	m = press(m, "-")
	if len(set) != 5 || set[4] != 0.9 {
		t.Fatalf("SetVolume calls = %v", set)
	}
}
