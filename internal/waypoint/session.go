package waypoint

import (
	"errors"
	"fmt"

	"github.com/banshee-data/coordrecorder/internal/marker"
	"github.com/banshee-data/coordrecorder/internal/monitoring"
	"github.com/banshee-data/coordrecorder/internal/pose"
	"github.com/banshee-data/coordrecorder/internal/timeutil"
)

var logf = monitoring.Prefixed("waypoint")

// Config wires a Controller to its collaborators.
type Config struct {
	Log       *Log
	Presenter marker.Presenter
	Poses     pose.Provider

	// Optional collaborators.
	Notifier Notifier
	Journal  Journal
	Clock    timeutil.Clock

	DefaultCloseBy  int
	ModifiedCloseBy int
	MarkerRadius    float64
	SaveDistance    float64 // 0 uses DefaultSaveDistance
	WindowCap       int     // 0 uses WindowCap
}

// SaveResult is the outcome of a save attempt.
type SaveResult int

const (
	// SaveSkipped means no save was attempted (disabled, or the tick gate
	// did not trigger).
	SaveSkipped SaveResult = iota
	// Saved means the sample was appended and the counter advanced.
	Saved
	// SaveTooClose means the distance gate rejected the sample.
	SaveTooClose
	// SaveFailed means the log append or marker creation failed; no state changed.
	SaveFailed
	// SaveUnavailable means the agent could not be sampled.
	SaveUnavailable
)

func (r SaveResult) String() string {
	switch r {
	case SaveSkipped:
		return "skipped"
	case Saved:
		return "saved"
	case SaveTooClose:
		return "too close"
	case SaveFailed:
		return "failed"
	case SaveUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("SaveResult(%d)", int(r))
	}
}

// session is all mutable recorder state.
type session struct {
	enabled   bool
	next      int
	closeBy   int
	routed    bool
	lastSaved Position
	lastTick  Position
	distance  float64

	pose     pose.Pose
	havePose bool
}

// Controller drives a recording session: enable/resume, per-tick sampling,
// manual saves, metadata toggles and undo. It is not safe for concurrent use;
// drivers call it from a single goroutine.
type Controller struct {
	log     *Log
	window  *Window
	trail   *Trail
	poses   pose.Provider
	notify  Notifier
	journal Journal
	clock   timeutil.Clock
	gate    DistanceGate

	defaultCloseBy  int
	modifiedCloseBy int

	st session
}

// NewController creates a disabled controller.
func NewController(cfg Config) *Controller {
	threshold := cfg.SaveDistance
	if threshold <= 0 {
		threshold = DefaultSaveDistance
	}
	notify := cfg.Notifier
	if notify == nil {
		notify = NotifierFunc(func(text string) { logf("%s", text) })
	}
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	return &Controller{
		log:             cfg.Log,
		window:          NewWindow(cfg.Presenter, cfg.WindowCap, cfg.MarkerRadius),
		trail:           NewTrail(cfg.Presenter),
		poses:           cfg.Poses,
		notify:          notify,
		journal:         cfg.Journal,
		clock:           clock,
		gate:            DistanceGate{Threshold: threshold},
		defaultCloseBy:  cfg.DefaultCloseBy,
		modifiedCloseBy: cfg.ModifiedCloseBy,
		st: session{
			next:    1,
			closeBy: cfg.DefaultCloseBy,
		},
	}
}

// Enabled reports whether the session is recording.
func (c *Controller) Enabled() bool { return c.st.enabled }

// Next returns the sequence number the next save will receive.
func (c *Controller) Next() int { return c.st.next }

// Window exposes the visible window for rendering.
func (c *Controller) Window() *Window { return c.window }

// Trail exposes the resume trail for rendering.
func (c *Controller) Trail() *Trail { return c.trail }

// Toggle enables a disabled session and disables an enabled one.
func (c *Controller) Toggle() error {
	if c.st.enabled {
		c.Disable()
		return nil
	}
	return c.Enable()
}

// Enable resumes from the log and starts recording. The counter becomes the
// log's line count plus one, the last ten decodable entries get full marker
// pairs, every decodable entry gets a trail marker, and the current pose is
// saved immediately. If the log cannot be read the session stays disabled.
func (c *Controller) Enable() error {
	if c.st.enabled {
		return nil
	}

	res, err := c.log.ReadAll()
	if err != nil {
		c.notify.Notify("Failed to read coords log")
		logf("enable: %v", err)
		return err
	}
	if len(res.Lost) > 0 {
		c.notify.Notify(fmt.Sprintf("Skipped %d unreadable coords", len(res.Lost)))
	}

	c.st.enabled = true
	c.st.next = res.Lines + 1
	c.st.lastSaved = Unset()
	c.st.lastTick = Unset()
	c.st.distance = 0

	for _, e := range res.Entries {
		if err := c.trail.Add(e.Sample, e.Seq); err != nil {
			logf("resume trail: %v", err)
		}
	}
	if err := c.window.Rebuild(res.Tail(c.window.capacity)); err != nil {
		logf("resume window: %v", err)
	}

	c.record(Event{Kind: EventEnabled, Next: c.st.next})

	p, ok := c.samplePose()
	if ok {
		c.save(p)
		c.st.lastTick = At(p.Position)
	} else {
		c.notify.Notify("Coords unavailable")
	}

	if !c.st.lastSaved.IsSet() {
		if last, ok := res.Last(); ok {
			c.st.lastSaved = At(last.Sample.Position())
		}
	}
	return nil
}

// Disable stops recording and deletes every marker. The log and the counter
// are left as they are.
func (c *Controller) Disable() {
	if !c.st.enabled {
		return
	}
	c.window.Clear()
	c.trail.Clear()
	c.st.enabled = false
	c.st.lastSaved = Unset()
	c.st.lastTick = Unset()
	c.st.havePose = false
	c.record(Event{Kind: EventDisabled, Next: c.st.next, Distance: c.st.distance})
}

// Close releases every marker; call it when the host shuts down.
func (c *Controller) Close() {
	c.Disable()
}

// OnTick samples the agent, accumulates distance travelled and saves when
// the agent has moved far enough from the last save.
func (c *Controller) OnTick() SaveResult {
	if !c.st.enabled {
		return SaveSkipped
	}
	p, ok := c.samplePose()
	if !ok {
		return SaveSkipped
	}

	if c.st.lastTick.IsSet() {
		c.st.distance += Distance(c.st.lastTick.Vec(), p.Position)
	}
	c.st.lastTick = At(p.Position)

	if !c.gate.ShouldSave(c.st.lastSaved, p.Position) {
		return SaveSkipped
	}
	return c.save(p)
}

// ManualSave runs the save path on request. A rejection by the distance gate
// is reported as a notice and SaveTooClose, not as an error.
func (c *Controller) ManualSave() SaveResult {
	if !c.st.enabled {
		return SaveSkipped
	}
	p, ok := c.samplePose()
	if !ok {
		c.notify.Notify("Coords unavailable")
		return SaveUnavailable
	}
	return c.save(p)
}

// save gates, stages the markers, appends to the log and only then commits
// the window entry and advances the counter.
func (c *Controller) save(p pose.Pose) SaveResult {
	seq := c.st.next
	if !c.gate.ShouldSave(c.st.lastSaved, p.Position) {
		c.notify.Notify(fmt.Sprintf("Too close to coords %d", seq-1))
		return SaveTooClose
	}

	s := NewSample(p.Position, p.Heading, c.st.closeBy, c.st.routed)

	pair, err := c.window.Stage(s, seq)
	if err != nil {
		c.notify.Notify(fmt.Sprintf("Failed to save coords %d", seq))
		logf("save %d: %v", seq, err)
		c.record(Event{Kind: EventSaveFailed, Seq: seq, Sample: s, Next: seq, Distance: c.st.distance})
		return SaveFailed
	}
	if err := c.log.Append(s); err != nil {
		c.window.Discard(pair)
		c.notify.Notify(fmt.Sprintf("Failed to save coords %d", seq))
		logf("save %d: %v", seq, err)
		c.record(Event{Kind: EventSaveFailed, Seq: seq, Sample: s, Next: seq, Distance: c.st.distance})
		return SaveFailed
	}

	c.window.Commit(pair)
	if err := c.trail.Add(s, seq); err != nil {
		logf("save %d: %v", seq, err)
	}
	c.st.lastSaved = At(p.Position)
	c.st.next++

	c.notify.Notify(fmt.Sprintf("Coords %d saved", seq))
	c.record(Event{Kind: EventSaved, Seq: seq, Sample: s, Next: c.st.next, Distance: c.st.distance})
	return Saved
}

// Undo removes the most recent entry from the window, the trail and the log,
// then decrements the counter. The first entry is never removed. The window
// goes first so an interrupted undo can only leave a log line without a
// marker, which the next resume repairs.
func (c *Controller) Undo() error {
	if !c.st.enabled {
		return ErrDisabled
	}
	if c.st.next <= 2 {
		return ErrInvalidUndo
	}

	// A corrupt final line has no markers; leave the previous waypoint's alone.
	c.window.RemoveSeq(c.st.next - 1)
	c.trail.RemoveSeq(c.st.next - 1)

	removed, err := c.log.TruncateLast()
	if err != nil {
		c.notify.Notify(fmt.Sprintf("Failed to delete coords %d", c.st.next-1))
		logf("undo: %v", err)
		return err
	}

	c.st.next--
	c.notify.Notify(fmt.Sprintf("Coords %d deleted", c.st.next))

	ev := Event{Kind: EventUndone, Seq: c.st.next, Next: c.st.next, Distance: c.st.distance}
	if s, err := ParseLine(removed); err == nil {
		ev.Sample = s
	}
	c.record(ev)
	return nil
}

// ToggleCloseBy swaps the closeBy value attached to future samples between
// the default and modified values.
func (c *Controller) ToggleCloseBy() (int, error) {
	if !c.st.enabled {
		return c.st.closeBy, ErrDisabled
	}
	if c.st.closeBy == c.defaultCloseBy {
		c.st.closeBy = c.modifiedCloseBy
	} else {
		c.st.closeBy = c.defaultCloseBy
	}
	return c.st.closeBy, nil
}

// ToggleRouted flips the routed flag attached to future samples.
func (c *Controller) ToggleRouted() (bool, error) {
	if !c.st.enabled {
		return c.st.routed, ErrDisabled
	}
	c.st.routed = !c.st.routed
	return c.st.routed, nil
}

// samplePose asks the provider for a usable pose and caches it for the
// status line.
func (c *Controller) samplePose() (pose.Pose, bool) {
	if c.poses == nil {
		return pose.Pose{}, false
	}
	p, ok := c.poses.CurrentPose()
	if !ok || !p.Usable() {
		return pose.Pose{}, false
	}
	c.st.pose = p
	c.st.havePose = true
	return p, true
}

func (c *Controller) record(ev Event) {
	if c.journal == nil {
		return
	}
	ev.At = c.clock.Now()
	if err := c.journal.Record(ev); err != nil {
		logf("journal %s: %v", ev.Kind, err)
	}
}

// Command is a discrete user request delivered by a driver.
type Command int

const (
	CmdToggle Command = iota + 1
	CmdSave
	CmdToggleCloseBy
	CmdToggleRouted
	CmdUndo
)

var commandNames = map[Command]string{
	CmdToggle:        "toggle",
	CmdSave:          "save",
	CmdToggleCloseBy: "closeby",
	CmdToggleRouted:  "routed",
	CmdUndo:          "undo",
}

func (cmd Command) String() string {
	if name, ok := commandNames[cmd]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", int(cmd))
}

// ParseCommand parses a command name as printed by Command.String.
func ParseCommand(name string) (Command, error) {
	for cmd, n := range commandNames {
		if n == name {
			return cmd, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", name)
}

// Dispatch runs cmd. Requests other than CmdToggle return ErrDisabled while
// the session is disabled; an undo at the floor returns ErrInvalidUndo.
func (c *Controller) Dispatch(cmd Command) error {
	switch cmd {
	case CmdToggle:
		return c.Toggle()
	case CmdSave:
		if !c.st.enabled {
			return ErrDisabled
		}
		c.ManualSave()
		return nil
	case CmdToggleCloseBy:
		_, err := c.ToggleCloseBy()
		return err
	case CmdToggleRouted:
		_, err := c.ToggleRouted()
		return err
	case CmdUndo:
		return c.Undo()
	default:
		return errors.New("unknown command")
	}
}
