package waypoint

import "gonum.org/v1/gonum/spatial/r3"

// DefaultSaveDistance is the distance a sample must exceed from the last
// saved one before it is recorded.
const DefaultSaveDistance = 5.0

// Position is an optional point. The zero value is unset, which the distance
// gate treats as infinitely far from everything.
type Position struct {
	vec r3.Vec
	set bool
}

// Unset returns the unset sentinel.
func Unset() Position { return Position{} }

// At returns a set position.
func At(v r3.Vec) Position { return Position{vec: v, set: true} }

// IsSet reports whether p holds a point.
func (p Position) IsSet() bool { return p.set }

// Vec returns the point; it is the zero vector when unset.
func (p Position) Vec() r3.Vec { return p.vec }

// Distance returns the straight-line distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// DistanceGate decides whether a candidate is far enough from the last save.
type DistanceGate struct {
	Threshold float64
}

// ShouldSave reports whether candidate is strictly further than the threshold
// from last, or last is unset.
func (g DistanceGate) ShouldSave(last Position, candidate r3.Vec) bool {
	if !last.IsSet() {
		return true
	}
	return Distance(last.Vec(), candidate) > g.Threshold
}

// ShouldSave applies the default 5 unit gate.
func ShouldSave(last Position, candidate r3.Vec) bool {
	return DistanceGate{Threshold: DefaultSaveDistance}.ShouldSave(last, candidate)
}
