package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

type padKeyMap struct {
	Up, Down, Left, Right key.Binding
	Tap, New, Bar         key.Binding
	StopAll, Quit         key.Binding
}

type barKeyMap struct {
	Prev, Next, Play, Loop key.Binding
	Edit, Delete, Back     key.Binding
}

type editorKeyMap struct {
	Up, Down, Left, Right  key.Binding
	Toggle, Loop           key.Binding
	Shorter, Longer, Clear key.Binding
	Test, Save, Cancel     key.Binding
}

type confirmKeyMap struct {
	Yes, No key.Binding
}

// shared by the pad and the bar
type globalKeyMap struct {
	Theme, VolUp, VolDown, Help key.Binding
}

var (
	padKeys = padKeyMap{
		Up:      binding("up", "k", "up"),
		Down:    binding("down", "j", "down"),
		Left:    binding("left", "h", "left"),
		Right:   binding("right", "l", "right"),
		Tap:     binding("tap", "space", " ", "enter"),
		New:     binding("new sequence", "n"),
		Bar:     binding("sequences", "tab"),
		StopAll: binding("stop loops", "x"),
		Quit:    binding("quit", "q", "ctrl+c"),
	}
	barKeys = barKeyMap{
		Prev:   binding("prev", "h", "left"),
		Next:   binding("next", "l", "right"),
		Play:   binding("play", "enter", " ", "space"),
		Loop:   binding("loop", "L"),
		Edit:   binding("edit", "e"),
		Delete: binding("delete", "d"),
		Back:   binding("pad", "tab", "esc"),
	}
	editorKeys = editorKeyMap{
		Up:      binding("up", "k", "up"),
		Down:    binding("down", "j", "down"),
		Left:    binding("left", "h", "left"),
		Right:   binding("right", "l", "right"),
		Toggle:  binding("toggle", "space", " "),
		Loop:    binding("loop", "L"),
		Shorter: binding("shorter", "["),
		Longer:  binding("longer", "]"),
		Clear:   binding("clear", "c"),
		Test:    binding("test", "t"),
		Save:    binding("save", "s", "enter"),
		Cancel:  binding("cancel", "esc"),
	}
	confirmKeys = confirmKeyMap{
		Yes: binding("delete", "y", "Y"),
		No:  binding("keep", "n", "N", "esc"),
	}
	globalKeys = globalKeyMap{
		Theme:   binding("theme", "T"),
		VolUp:   binding("louder", "+", "="),
		VolDown: binding("quieter", "-", "_"),
		Help:    binding("help", "?"),
	}
)

// direction returns the grid step for an arrow binding.
func direction(msg tea.KeyMsg, up, down, left, right key.Binding) (dr, dc int, ok bool) {
	switch {
	case key.Matches(msg, up):
		return -1, 0, true
	case key.Matches(msg, down):
		return 1, 0, true
	case key.Matches(msg, left):
		return 0, -1, true
	case key.Matches(msg, right):
		return 0, 1, true
	}
	return 0, 0, false
}

// help.KeyMap for each mode

type modeHelp struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h modeHelp) ShortHelp() []key.Binding  { return h.short }
func (h modeHelp) FullHelp() [][]key.Binding { return h.full }

func (m Model) helpKeys() modeHelp {
	g := []key.Binding{globalKeys.Theme, globalKeys.VolUp, globalKeys.VolDown, globalKeys.Help}
	switch m.mode {
	case modeBar:
		k := barKeys
		short := []key.Binding{k.Prev, k.Next, k.Play, k.Loop, k.Edit, k.Delete, k.Back}
		return modeHelp{short: short, full: [][]key.Binding{short, {padKeys.StopAll, padKeys.Quit}, g}}
	case modeEditor:
		k := editorKeys
		short := []key.Binding{k.Toggle, k.Loop, k.Shorter, k.Longer, k.Test, k.Save, k.Cancel}
		return modeHelp{short: short, full: [][]key.Binding{{k.Up, k.Down, k.Left, k.Right, k.Clear}, short}}
	case modeConfirm:
		return modeHelp{short: []key.Binding{confirmKeys.Yes, confirmKeys.No}}
	}
	k := padKeys
	short := []key.Binding{k.Tap, k.New, k.Bar, globalKeys.Help, k.Quit}
	return modeHelp{short: short, full: [][]key.Binding{{k.Up, k.Down, k.Left, k.Right}, {k.Tap, k.New, k.Bar, k.StopAll, k.Quit}, g}}
}
