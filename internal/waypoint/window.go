package waypoint

import (
	"fmt"

	"github.com/banshee-data/coordrecorder/internal/marker"
)

// WindowCap is the number of marker pairs kept visible.
const WindowCap = 10

// Label maps a sequence number onto the two-digit marker label range [0, 99].
func Label(seq int) int {
	for seq > 99 {
		seq -= 100
	}
	for seq < 0 {
		seq += 100
	}
	return seq
}

// Pair is a checkpoint and blip drawn for one waypoint.
type Pair struct {
	Seq        int
	Label      int
	Routed     bool
	Checkpoint marker.Handle
	Blip       marker.Handle
}

// Window is the bounded, oldest-first collection of visible marker pairs.
// It owns every handle it holds and deletes them on eviction, removal and
// Clear.
type Window struct {
	presenter marker.Presenter
	radius    float64
	capacity  int
	pairs     []Pair
}

// NewWindow creates a window drawing through p. A capacity below 1 uses
// WindowCap.
func NewWindow(p marker.Presenter, capacity int, radius float64) *Window {
	if capacity < 1 {
		capacity = WindowCap
	}
	return &Window{presenter: p, capacity: capacity, radius: radius}
}

// Stage creates the markers for a pair without adding it to the window. The
// caller must either Commit or Discard the result.
func (w *Window) Stage(s Sample, seq int) (Pair, error) {
	label := Label(seq)
	style := marker.StyleFor(s.Routed)

	cp, err := w.presenter.CreateMarker(marker.Spec{
		Kind:     marker.KindCheckpoint,
		Position: s.Position(),
		Label:    label,
		Style:    style,
		Radius:   w.radius,
	})
	if err != nil {
		return Pair{}, fmt.Errorf("create checkpoint %d: %w", seq, err)
	}
	blip, err := w.presenter.CreateMarker(marker.Spec{
		Kind:     marker.KindBlip,
		Position: s.Position(),
		Label:    label,
		Style:    style,
	})
	if err != nil {
		w.release(cp)
		return Pair{}, fmt.Errorf("create blip %d: %w", seq, err)
	}
	return Pair{Seq: seq, Label: label, Routed: s.Routed, Checkpoint: cp, Blip: blip}, nil
}

// Commit appends a staged pair, evicting the oldest pair when over capacity.
func (w *Window) Commit(p Pair) {
	w.pairs = append(w.pairs, p)
	for len(w.pairs) > w.capacity {
		w.delete(w.pairs[0])
		w.pairs = w.pairs[1:]
	}
}

// Discard deletes the markers of a staged pair that was never committed.
func (w *Window) Discard(p Pair) {
	w.delete(p)
}

// Insert stages and commits a pair for s at seq.
func (w *Window) Insert(s Sample, seq int) error {
	p, err := w.Stage(s, seq)
	if err != nil {
		return err
	}
	w.Commit(p)
	return nil
}

// RemoveLast deletes the newest pair. It is a no-op on an empty window.
func (w *Window) RemoveLast() {
	if len(w.pairs) == 0 {
		return
	}
	last := len(w.pairs) - 1
	w.delete(w.pairs[last])
	w.pairs = w.pairs[:last]
}

// RemoveSeq deletes the newest pair if it was drawn for seq and reports
// whether it did.
func (w *Window) RemoveSeq(seq int) bool {
	if len(w.pairs) == 0 || w.pairs[len(w.pairs)-1].Seq != seq {
		return false
	}
	w.RemoveLast()
	return true
}

// Clear deletes every pair.
func (w *Window) Clear() {
	for _, p := range w.pairs {
		w.delete(p)
	}
	w.pairs = nil
}

// Rebuild clears the window and inserts the last capacity entries, keeping
// each entry's own sequence number so labels match what a live session would
// have assigned.
func (w *Window) Rebuild(entries []Entry) error {
	w.Clear()
	if len(entries) > w.capacity {
		entries = entries[len(entries)-w.capacity:]
	}
	for _, e := range entries {
		if err := w.Insert(e.Sample, e.Seq); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of visible pairs.
func (w *Window) Len() int { return len(w.pairs) }

// Pairs returns a copy of the visible pairs, oldest first.
func (w *Window) Pairs() []Pair {
	out := make([]Pair, len(w.pairs))
	copy(out, w.pairs)
	return out
}

// Labels returns the visible labels, oldest first.
func (w *Window) Labels() []int {
	out := make([]int, len(w.pairs))
	for i, p := range w.pairs {
		out[i] = p.Label
	}
	return out
}

func (w *Window) delete(p Pair) {
	w.release(p.Checkpoint)
	w.release(p.Blip)
}

func (w *Window) release(h marker.Handle) {
	if err := w.presenter.DeleteMarker(h); err != nil {
		logf("failed to delete marker %d: %v", h, err)
	}
}

// Trail holds one lightweight marker per logged waypoint since enable, for
// navigation along the whole recorded path.
type Trail struct {
	presenter marker.Presenter
	handles   []marker.Handle
	seqs      []int
}

// NewTrail creates an empty trail.
func NewTrail(p marker.Presenter) *Trail {
	return &Trail{presenter: p}
}

// Add creates a trail marker for s at seq.
func (t *Trail) Add(s Sample, seq int) error {
	h, err := t.presenter.CreateMarker(marker.Spec{
		Kind:     marker.KindTrail,
		Position: s.Position(),
		Label:    Label(seq),
		Style:    marker.StyleFor(s.Routed),
	})
	if err != nil {
		return fmt.Errorf("create trail marker %d: %w", seq, err)
	}
	t.handles = append(t.handles, h)
	t.seqs = append(t.seqs, seq)
	return nil
}

// RemoveLast deletes the newest trail marker, if any.
func (t *Trail) RemoveLast() {
	if len(t.handles) == 0 {
		return
	}
	last := len(t.handles) - 1
	if err := t.presenter.DeleteMarker(t.handles[last]); err != nil {
		logf("failed to delete trail marker %d: %v", t.handles[last], err)
	}
	t.handles = t.handles[:last]
	t.seqs = t.seqs[:last]
}

// RemoveSeq deletes the newest trail marker if it was drawn for seq.
func (t *Trail) RemoveSeq(seq int) bool {
	if len(t.seqs) == 0 || t.seqs[len(t.seqs)-1] != seq {
		return false
	}
	t.RemoveLast()
	return true
}

// Clear deletes every trail marker.
func (t *Trail) Clear() {
	for _, h := range t.handles {
		if err := t.presenter.DeleteMarker(h); err != nil {
			logf("failed to delete trail marker %d: %v", h, err)
		}
	}
	t.handles = nil
	t.seqs = nil
}

// Len returns the number of trail markers.
func (t *Trail) Len() int { return len(t.handles) }
