package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"glossolalia/widgets"
)

const padMargin = 2

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	th := m.Theme
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(th.Warning())

	var lines []string
	lines = append(lines, "", headerStyle.Render("glossolalia")+"  "+dimStyle.Render(m.headerStatus()), "")

	// pad, with the editor panel beside it while editing
	view := widgets.PadView{Surface: m.Manager.Board, Cursor: m.cursor, Focused: m.mode == modePad}
	if m.mode == modeEditor {
		view = widgets.PadView{Surface: m.Manager.Modal, Selected: m.edit.seq, Cursor: m.edit.cursor, Focused: true}
	}
	padBlock := lipgloss.NewStyle().MarginLeft(padMargin).Render(widgets.RenderPad(th, view))
	if m.mode == modeEditor {
		padBlock = lipgloss.JoinHorizontal(lipgloss.Top, padBlock, "    ", m.editorPanel())
	}
	m.bounds.padTop = countLines(lines)
	m.bounds.padLeft = padMargin
	lines = append(lines, padBlock, "")

	if m.mode != modeEditor {
		thumbs := make([]widgets.Thumb, 0)
		for i, rec := range m.Manager.Records() {
			thumbs = append(thumbs, widgets.Thumb{
				Sequence: rec.Sequence,
				IsLoop:   rec.IsLoop,
				Interval: rec.LoopInterval,
				Looping:  m.Manager.IsLooping(rec.Sequence),
				Selected: m.mode != modePad && i == m.barSel,
			})
		}
		bar := widgets.RenderBar(th, thumbs, m.barOffset, m.width)
		m.bounds.barTop = countLines(lines)
		m.bounds.barHeight = 0
		if len(thumbs) > 0 {
			m.bounds.barHeight = lipgloss.Height(bar)
		}
		lines = append(lines, bar)
	}

	switch {
	case m.mode == modeConfirm:
		lines = append(lines, "", warnStyle.Render(fmt.Sprintf("delete sequence %d? (y/n)", m.confirm+1)))
	case m.Manager.Status() != "":
		lines = append(lines, "", warnStyle.Render(m.Manager.Status()))
	case m.tutorial():
		lines = append(lines, "", dimStyle.Italic(true).Render("tap circles with space, then press n to record your first sequence"))
	default:
		lines = append(lines, "")
	}

	h := m.help
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(th.FG())
	h.Styles.ShortDesc = dimStyle
	h.Styles.ShortSeparator = dimStyle
	h.Styles.FullKey = h.Styles.ShortKey
	h.Styles.FullDesc = dimStyle
	h.Styles.FullSeparator = dimStyle
	lines = append(lines, "", h.View(m.helpKeys()))
	return strings.Join(lines, "\n")
}

func (m Model) headerStatus() string {
	cfg := m.Manager.Config()
	s := fmt.Sprintf("loops %d/%d  vol %d%%  %s",
		len(m.Manager.ActiveLoops()), m.Manager.MaxLoops(),
		int(cfg.Preferences.Volume*100+0.5), cfg.Preferences.Theme)
	if m.DeviceMgr != nil {
		if n := len(m.DeviceMgr.Controllers()); n > 0 {
			s += fmt.Sprintf("  midi:%d", n)
		}
	}
	return s
}

func (m Model) editorPanel() string {
	th := m.Theme
	title := "new sequence"
	if m.edit.index >= 0 {
		title = fmt.Sprintf("edit sequence %d", m.edit.index+1)
	}
	loop := "off"
	if m.edit.isLoop {
		loop = fmt.Sprintf("every %ds", m.edit.interval)
	}
	body := []string{
		lipgloss.NewStyle().Foreground(th.Accent()).Render(title),
		"",
		fmt.Sprintf("circles  %s", m.edit.seq.Key()),
		fmt.Sprintf("loop     %s", loop),
		fmt.Sprintf("interval %ds", m.edit.interval),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Muted()).
		Padding(0, 1).
		Render(strings.Join(body, "\n"))
}

func (m Model) tutorial() bool {
	cfg := m.Manager.Config()
	return cfg.Preferences.ShowTutorial && !cfg.TutorialSeen && len(m.Manager.Records()) == 0
}

func countLines(blocks []string) int {
	n := 0
	for _, b := range blocks {
		n += lipgloss.Height(b)
	}
	return n
}
