package waypoint

import "time"

// EventKind names a session event reported to a Journal.
type EventKind string

const (
	EventEnabled    EventKind = "enabled"
	EventDisabled   EventKind = "disabled"
	EventSaved      EventKind = "saved"
	EventSaveFailed EventKind = "save_failed"
	EventUndone     EventKind = "undone"
)

// Event is one session event. Seq and Sample are set for saves and undos;
// Next is the counter after the event; Distance is the accumulated distance
// since enable.
type Event struct {
	Kind     EventKind
	At       time.Time
	Seq      int
	Sample   Sample
	Next     int
	Distance float64
}

// Journal receives session events. It is a history, not a source of truth:
// the controller logs and otherwise ignores Record errors.
type Journal interface {
	Record(ev Event) error
}

// Notifier shows short transient messages to the user.
type Notifier interface {
	Notify(text string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(text string)

// Notify calls f.
func (f NotifierFunc) Notify(text string) { f(text) }
