package hud

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/banshee-data/coordrecorder/internal/waypoint"
)

// KeyMap binds keys to recorder commands.
type KeyMap struct {
	Toggle  key.Binding
	Save    key.Binding
	CloseBy key.Binding
	Routed  key.Binding
	Undo    key.Binding
	Quit    key.Binding
}

// NewKeyMap builds a key map from action name to key, as returned by
// config.RecorderConfig.Keys.
func NewKeyMap(bindings map[string]string) (KeyMap, error) {
	km := KeyMap{
		Quit: key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
	for action, k := range bindings {
		cmd, err := waypoint.ParseCommand(action)
		if err != nil {
			return KeyMap{}, fmt.Errorf("key binding %q: %w", k, err)
		}
		b := key.NewBinding(key.WithKeys(k), key.WithHelp(k, action))
		switch cmd {
		case waypoint.CmdToggle:
			km.Toggle = b
		case waypoint.CmdSave:
			km.Save = b
		case waypoint.CmdToggleCloseBy:
			km.CloseBy = b
		case waypoint.CmdToggleRouted:
			km.Routed = b
		case waypoint.CmdUndo:
			km.Undo = b
		}
	}
	return km, nil
}

// Command returns the recorder command bound to msg, if any.
func (km KeyMap) Command(msg tea.KeyMsg) (waypoint.Command, bool) {
	switch {
	case key.Matches(msg, km.Toggle):
		return waypoint.CmdToggle, true
	case key.Matches(msg, km.Save):
		return waypoint.CmdSave, true
	case key.Matches(msg, km.CloseBy):
		return waypoint.CmdToggleCloseBy, true
	case key.Matches(msg, km.Routed):
		return waypoint.CmdToggleRouted, true
	case key.Matches(msg, km.Undo):
		return waypoint.CmdUndo, true
	}
	return 0, false
}

// ShortHelp implements help.KeyMap.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.Toggle, km.Save, km.CloseBy, km.Routed, km.Undo, km.Quit}
}

// FullHelp implements help.KeyMap.
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{km.ShortHelp()}
}
