package marker

import (
	"sort"
	"sync"
)

// Marker is a live marker as tracked by a Registry.
type Marker struct {
	Handle Handle
	Spec
}

// Registry is an in-memory Presenter. It keeps every live marker so drivers
// can render them and tests can assert that every create was matched by a
// delete.
type Registry struct {
	mu      sync.Mutex
	nextID  Handle
	live    map[Handle]Spec
	created int
	deleted int
	failErr error
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[Handle]Spec)}
}

// CreateMarker records a new live marker.
func (r *Registry) CreateMarker(spec Spec) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failErr != nil {
		return 0, r.failErr
	}
	r.nextID++
	r.live[r.nextID] = spec
	r.created++
	return r.nextID, nil
}

// DeleteMarker removes a live marker.
func (r *Registry) DeleteMarker(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.live[h]; !ok {
		return ErrUnknownHandle
	}
	delete(r.live, h)
	r.deleted++
	return nil
}

// FailCreates makes CreateMarker return err until called again with nil.
func (r *Registry) FailCreates(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failErr = err
}

// Live returns the live markers in creation order.
func (r *Registry) Live() []Marker {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Marker, 0, len(r.live))
	for h, spec := range r.live {
		out = append(out, Marker{Handle: h, Spec: spec})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// LiveOf returns the live markers of one kind in creation order.
func (r *Registry) LiveOf(kind Kind) []Marker {
	all := r.Live()
	out := all[:0]
	for _, m := range all {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// Count returns the number of live markers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Totals returns how many markers were ever created and deleted.
func (r *Registry) Totals() (created, deleted int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created, r.deleted
}
