package waypoint

import (
	"fmt"
	"math"

	"github.com/banshee-data/coordrecorder/internal/units"
	"gonum.org/v1/gonum/spatial/r3"
)

// Snapshot is a read-only view of the session for drivers.
type Snapshot struct {
	Enabled  bool
	Next     int
	CloseBy  int
	Routed   bool
	Position r3.Vec
	Heading  float64
	HavePose bool
	Distance float64 // metres since enable
	Visible  int
	Trail    int
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Enabled:  c.st.enabled,
		Next:     c.st.next,
		CloseBy:  c.st.closeBy,
		Routed:   c.st.routed,
		Position: c.st.pose.Position,
		Heading:  c.st.pose.Heading,
		HavePose: c.st.havePose,
		Distance: c.st.distance,
		Visible:  c.window.Len(),
		Trail:    c.trail.Len(),
	}
}

// Status formats the status line in metres.
func (c *Controller) Status() string {
	return FormatStatus(c.Snapshot(), units.Meters)
}

// FormatStatus renders s as
// "next:N routed closeby:C x:X y:Y z:Z heading:H distance:D.DDm".
// Coordinates and heading are rounded to whole units.
func FormatStatus(s Snapshot, unit string) string {
	state := "unrouted"
	if s.Routed {
		state = "routed"
	}
	return fmt.Sprintf("next:%d %s closeby:%d x:%s y:%s z:%s heading:%s distance:%s",
		s.Next, state, s.CloseBy,
		roundInt(s.Position.X), roundInt(s.Position.Y), roundInt(s.Position.Z),
		roundInt(s.Heading),
		units.FormatDistance(s.Distance, unit))
}

func roundInt(v float64) string {
	r := math.Round(v)
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return fmt.Sprintf("%.0f", r)
}
