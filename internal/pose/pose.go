// Package pose supplies the agent's position and heading to the recorder.
package pose

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is a single observation of the agent.
type Pose struct {
	Position r3.Vec
	Heading  float64 // degrees

	// Liveness. A pose is only sampled when the agent is controllable and alive.
	Controllable bool
	Alive        bool
}

// Usable reports whether the recorder may sample this pose.
func (p Pose) Usable() bool {
	return p.Controllable && p.Alive
}

// Provider exposes the agent's current pose. ok is false when the agent does
// not exist or cannot be sampled right now; that is not an error.
type Provider interface {
	CurrentPose() (p Pose, ok bool)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() (Pose, bool)

// CurrentPose calls f.
func (f ProviderFunc) CurrentPose() (Pose, bool) { return f() }

// ParseLine parses a pose line of the form "x,y,z,heading[,alive]".
// alive accepts 1/0/true/false; when absent the agent is alive and
// controllable.
func ParseLine(line string) (Pose, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) < 4 {
		return Pose{}, fmt.Errorf("pose line %q: expected at least 4 fields, got %d", line, len(fields))
	}

	var vals [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return Pose{}, fmt.Errorf("pose line %q: field %d: %w", line, i+1, err)
		}
		vals[i] = v
	}

	p := Pose{
		Position:     r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]},
		Heading:      vals[3],
		Controllable: true,
		Alive:        true,
	}
	if len(fields) >= 5 {
		alive, err := strconv.ParseBool(strings.TrimSpace(fields[4]))
		if err != nil {
			return Pose{}, fmt.Errorf("pose line %q: alive flag: %w", line, err)
		}
		p.Alive = alive
		p.Controllable = alive
	}
	return p, nil
}
