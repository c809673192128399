package hud

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/coordrecorder/internal/fsutil"
	"github.com/banshee-data/coordrecorder/internal/marker"
	"github.com/banshee-data/coordrecorder/internal/pose"
	"github.com/banshee-data/coordrecorder/internal/testutil"
	"github.com/banshee-data/coordrecorder/internal/waypoint"
)

var defaultBindings = map[string]string{
	"toggle":  "f9",
	"save":    "f10",
	"closeby": "c",
	"routed":  "r",
	"undo":    "backspace",
}

type fixture struct {
	model   Model
	ctrl    *waypoint.Controller
	reg     *marker.Registry
	notices *Notices
	pos     *r3.Vec
	now     *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{reg: marker.NewRegistry(), pos: &r3.Vec{}}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.now = &now
	f.notices = NewNotices(func() time.Time { return *f.now }, time.Second)

	f.ctrl = waypoint.NewController(waypoint.Config{
		Log:       waypoint.NewLog(fsutil.NewMemoryFileSystem(), "coords.txt"),
		Presenter: f.reg,
		Poses: pose.ProviderFunc(func() (pose.Pose, bool) {
			return pose.Pose{Position: *f.pos, Heading: 90, Controllable: true, Alive: true}, true
		}),
		Notifier:        f.notices,
		DefaultCloseBy:  3,
		ModifiedCloseBy: 5,
	})

	keys, err := NewKeyMap(defaultBindings)
	require.NoError(t, err)
	f.model = New(Options{Controller: f.ctrl, Keys: keys, Notices: f.notices, Unit: "m"})
	return f
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	next, cmd := f.model.Update(msg)
	f.model = next.(Model)
	return cmd
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeysDriveController(t *testing.T) {
	f := newFixture(t)

	f.send(tea.KeyMsg{Type: tea.KeyF10})
	assert.Contains(t, f.notices.Active(), "Recorder is off, press f9")

	f.send(tea.KeyMsg{Type: tea.KeyF9})
	require.True(t, f.ctrl.Enabled())
	assert.Equal(t, 2, f.ctrl.Next())

	*f.pos = r3.Vec{X: 20}
	f.send(tea.KeyMsg{Type: tea.KeyF10})
	assert.Equal(t, 3, f.ctrl.Next())

	f.send(runeKey("r"))
	assert.True(t, f.ctrl.Snapshot().Routed)
	f.send(runeKey("c"))
	assert.Equal(t, 5, f.ctrl.Snapshot().CloseBy)

	f.send(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, 2, f.ctrl.Next())
	f.send(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, 2, f.ctrl.Next())
	assert.Contains(t, f.notices.Active(), "Nothing to undo")

	f.send(runeKey("x")) // unbound
	f.send(tea.KeyMsg{Type: tea.KeyF9})
	assert.False(t, f.ctrl.Enabled())
	testutil.AssertNoMarkers(t, f.reg)
}

func TestTickSamples(t *testing.T) {
	f := newFixture(t)
	advanced := 0
	f.model.advance = func() {
		advanced++
		f.pos.X += 3
	}

	cmd := f.send(tickMsg(*f.now))
	assert.NotNil(t, cmd, "ticks reschedule themselves")
	assert.Equal(t, 1, f.model.Ticks())

	f.send(tea.KeyMsg{Type: tea.KeyF9})
	for i := 0; i < 4; i++ {
		f.send(tickMsg(*f.now))
	}
	assert.Equal(t, 5, advanced)
	// Enabled at x=3, then 6, 9, 12, 15: saves at 3, 9, 15.
	assert.Equal(t, 4, f.ctrl.Next())
}

func TestQuitClosesController(t *testing.T) {
	f := newFixture(t)
	f.send(tea.KeyMsg{Type: tea.KeyF9})
	require.NotZero(t, f.reg.Count())

	cmd := f.send(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Zero(t, f.reg.Count())
	assert.Empty(t, f.model.View())
}

func TestView(t *testing.T) {
	f := newFixture(t)
	view := f.model.View()
	assert.Contains(t, view, "Coord Recorder (off)")
	assert.Contains(t, view, "no waypoints visible")
	assert.Contains(t, view, "f9")

	*f.pos = r3.Vec{X: 1, Y: 2, Z: 3}
	f.send(tea.KeyMsg{Type: tea.KeyF9})
	f.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	view = f.model.View()
	assert.Contains(t, view, "next:2 unrouted closeby:3 x:1 y:2 z:3 heading:90 distance:0.00m")
	assert.Contains(t, view, "01")
	assert.Contains(t, view, "trail:1")
	assert.Contains(t, view, "Coords 1 saved")
}

func TestNotices(t *testing.T) {
	now := time.Unix(0, 0)
	n := NewNotices(func() time.Time { return now }, time.Second)

	for i := 0; i < 6; i++ {
		n.Notify(strings.Repeat("x", i+1))
	}
	active := n.Active()
	require.Len(t, active, maxNotices)
	assert.Equal(t, "xxx", active[0])

	now = now.Add(500 * time.Millisecond)
	n.Notify("fresh")
	now = now.Add(600 * time.Millisecond)
	assert.Equal(t, []string{"fresh"}, n.Active())

	now = now.Add(time.Second)
	assert.Empty(t, n.Active())
}

func TestNewKeyMapRejectsUnknownAction(t *testing.T) {
	_, err := NewKeyMap(map[string]string{"jump": "j"})
	assert.Error(t, err)
}
