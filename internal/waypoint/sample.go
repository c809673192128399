// Package waypoint records a moving agent's path as an append-only log of
// samples and keeps a bounded window of on-map markers for the most recent
// ones.
//
// The log file is the source of truth. The visible window and the trail of
// resume markers are projections of its tail and can be rebuilt from it at any
// time; the sequence counter always equals the log's line count plus one.
package waypoint

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Log line field layout.
const (
	fieldX = iota
	fieldY
	fieldZ
	fieldHeading
	fieldCloseBy
	fieldRouted
	numFields
)

// Sample is one recorded point. Samples are values and are never mutated
// once created.
type Sample struct {
	X, Y, Z float64
	Heading float64
	CloseBy int
	Routed  bool
}

// NewSample builds a sample from a position and the active metadata.
func NewSample(pos r3.Vec, heading float64, closeBy int, routed bool) Sample {
	return Sample{X: pos.X, Y: pos.Y, Z: pos.Z, Heading: heading, CloseBy: closeBy, Routed: routed}
}

// Position returns the sample's location.
func (s Sample) Position() r3.Vec {
	return r3.Vec{X: s.X, Y: s.Y, Z: s.Z}
}

// MarshalLine encodes the sample as "x,y,z,heading,closeBy,routed". Numbers
// always use '.' as the decimal separator and routed is True or False.
func (s Sample) MarshalLine() string {
	fields := [numFields]string{
		fieldX:       formatFloat(s.X),
		fieldY:       formatFloat(s.Y),
		fieldZ:       formatFloat(s.Z),
		fieldHeading: formatFloat(s.Heading),
		fieldCloseBy: strconv.Itoa(s.CloseBy),
		fieldRouted:  formatRouted(s.Routed),
	}
	return strings.Join(fields[:], ",")
}

// ParseLine decodes a log line. Lines with fewer than three fields, or with
// an unparseable coordinate, wrap ErrCorruptLine. Missing or unparseable
// trailing fields fall back to heading 0, closeBy 0 and routed true; routed
// is false only when the sixth field is exactly "False".
func ParseLine(line string) (Sample, error) {
	fields := strings.Split(strings.TrimRight(line, "\r"), ",")
	if len(fields) < 3 {
		return Sample{}, fmt.Errorf("%w: %d fields in %q", ErrCorruptLine, len(fields), line)
	}

	var xyz [3]float64
	for i := range xyz {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: field %d of %q: %v", ErrCorruptLine, i+1, line, err)
		}
		xyz[i] = v
	}

	s := Sample{X: xyz[0], Y: xyz[1], Z: xyz[2], Routed: true}
	if len(fields) > fieldHeading {
		if v, err := strconv.ParseFloat(strings.TrimSpace(fields[fieldHeading]), 64); err == nil {
			s.Heading = v
		}
	}
	if len(fields) > fieldCloseBy {
		if v, err := strconv.Atoi(strings.TrimSpace(fields[fieldCloseBy])); err == nil {
			s.CloseBy = v
		}
	}
	if len(fields) > fieldRouted {
		s.Routed = fields[fieldRouted] != "False"
	}
	return s, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatRouted(routed bool) string {
	if routed {
		return "True"
	}
	return "False"
}
