// Package marker defines the on-map marker boundary used by the recorder and
// an in-memory Registry implementation of it.
//
// The recorder never draws anything itself. It asks a Presenter to create a
// marker and gets back an opaque Handle, which it must later hand back to
// DeleteMarker exactly once.
package marker

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind distinguishes the marker flavours the recorder creates.
type Kind int

const (
	// KindCheckpoint is the numbered ring drawn at a waypoint.
	KindCheckpoint Kind = iota
	// KindBlip is the numbered map blip paired with a checkpoint.
	KindBlip
	// KindTrail is the lightweight blip recreated for every logged waypoint on resume.
	KindTrail
)

func (k Kind) String() string {
	switch k {
	case KindCheckpoint:
		return "checkpoint"
	case KindBlip:
		return "blip"
	case KindTrail:
		return "trail"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Style is the colour coding of a marker. Routed and unrouted waypoints must
// always be visually distinct.
type Style int

const (
	StyleRouted Style = iota
	StyleUnrouted
)

// StyleFor returns the style for a routed flag.
func StyleFor(routed bool) Style {
	if routed {
		return StyleRouted
	}
	return StyleUnrouted
}

func (s Style) String() string {
	if s == StyleRouted {
		return "routed"
	}
	return "unrouted"
}

// Color returns the hex colour used when rendering the style.
func (s Style) Color() string {
	if s == StyleRouted {
		return "#f5c400" // yellow
	}
	return "#d62828" // red
}

// Handle is an opaque reference to a created marker.
type Handle uint64

// Spec describes a marker to create.
type Spec struct {
	Kind     Kind
	Position r3.Vec
	Label    int
	Style    Style
	// Radius is only meaningful for checkpoints.
	Radius float64
}

// ErrUnknownHandle is returned when deleting a handle that is not live.
var ErrUnknownHandle = errors.New("unknown marker handle")

// Presenter creates and deletes on-map markers.
type Presenter interface {
	CreateMarker(spec Spec) (Handle, error)
	DeleteMarker(h Handle) error
}
