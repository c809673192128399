// Package hud is the interactive terminal driver: a bubbletea program that
// ticks the recorder, maps key presses onto recorder commands and renders the
// status line, the visible window and transient notices.
package hud

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/banshee-data/coordrecorder/internal/marker"
	"github.com/banshee-data/coordrecorder/internal/waypoint"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1)

	disabledTitleStyle = titleStyle.Background(lipgloss.Color("240"))

	statusStyle = lipgloss.NewStyle().Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).PaddingLeft(2)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type tickMsg time.Time

// Options configures a Model.
type Options struct {
	Controller *waypoint.Controller
	Keys       KeyMap
	Notices    *Notices
	Interval   time.Duration
	Unit       string
	// Advance, if set, is called before every tick; scripted pose sources use
	// it to move the agent.
	Advance func()
}

// Model is the bubbletea model.
type Model struct {
	ctrl     *waypoint.Controller
	keys     KeyMap
	help     help.Model
	notices  *Notices
	interval time.Duration
	unit     string
	advance  func()
	ticks    int
	width    int
	quitting bool
}

// New creates a model.
func New(opt Options) Model {
	if opt.Interval <= 0 {
		opt.Interval = 100 * time.Millisecond
	}
	if opt.Notices == nil {
		opt.Notices = NewNotices(nil, 0)
	}
	return Model{
		ctrl:     opt.Controller,
		keys:     opt.Keys,
		help:     help.New(),
		notices:  opt.Notices,
		interval: opt.Interval,
		unit:     opt.Unit,
		advance:  opt.Advance,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.advance != nil {
			m.advance()
		}
		m.ctrl.OnTick()
		m.ticks++
		return m, m.tick()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			m.ctrl.Close()
			m.quitting = true
			return m, tea.Quit
		}
		if cmd, ok := m.keys.Command(msg); ok {
			m.dispatch(cmd)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m Model) dispatch(cmd waypoint.Command) {
	err := m.ctrl.Dispatch(cmd)
	switch {
	case err == nil:
		switch cmd {
		case waypoint.CmdToggleCloseBy:
			m.notices.Notify(fmt.Sprintf("CloseBy %d", m.ctrl.Snapshot().CloseBy))
		case waypoint.CmdToggleRouted:
			if m.ctrl.Snapshot().Routed {
				m.notices.Notify("Routed")
			} else {
				m.notices.Notify("Unrouted")
			}
		}
	case errors.Is(err, waypoint.ErrDisabled):
		m.notices.Notify(fmt.Sprintf("Recorder is off, press %s", m.keys.Toggle.Help().Key))
	case errors.Is(err, waypoint.ErrInvalidUndo):
		m.notices.Notify("Nothing to undo")
	}
	// Persistence errors were already reported by the controller.
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.ctrl.Snapshot()
	var header, status string
	if snap.Enabled {
		header = titleStyle.Render("Coord Recorder")
		status = statusStyle.Render(waypoint.FormatStatus(snap, m.unit))
	} else {
		header = disabledTitleStyle.Render("Coord Recorder (off)")
		status = dimStyle.Render(fmt.Sprintf("next:%d", snap.Next))
	}

	lines := []string{header, "", status, m.windowView(), ""}
	for _, text := range m.notices.Active() {
		lines = append(lines, noticeStyle.Render(text))
	}
	lines = append(lines, "", m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// windowView renders the visible labels in their marker colours.
func (m Model) windowView() string {
	pairs := m.ctrl.Window().Pairs()
	if len(pairs) == 0 {
		return dimStyle.Render("no waypoints visible")
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(marker.StyleFor(p.Routed).Color()))
		parts[i] = style.Render(fmt.Sprintf("%02d", p.Label))
	}
	return strings.Join(parts, " ") + dimStyle.Render(fmt.Sprintf("  trail:%d", m.ctrl.Trail().Len()))
}

// Ticks returns how many ticks the model has processed.
func (m Model) Ticks() int { return m.ticks }
