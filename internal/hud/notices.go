package hud

import (
	"sync"
	"time"
)

// DefaultNoticeTTL is how long a transient notice stays on screen.
const DefaultNoticeTTL = 3 * time.Second

const maxNotices = 4

type notice struct {
	text string
	at   time.Time
}

// Notices is a short, time-limited list of messages. It implements
// waypoint.Notifier.
type Notices struct {
	mu    sync.Mutex
	now   func() time.Time
	ttl   time.Duration
	items []notice
}

// NewNotices creates a notice buffer using now as its clock.
func NewNotices(now func() time.Time, ttl time.Duration) *Notices {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &Notices{now: now, ttl: ttl}
}

// Notify adds a message, dropping the oldest beyond the display limit.
func (n *Notices) Notify(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, notice{text: text, at: n.now()})
	if len(n.items) > maxNotices {
		n.items = n.items[len(n.items)-maxNotices:]
	}
}

// Active returns the unexpired messages, oldest first, and forgets the rest.
func (n *Notices) Active() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	kept := n.items[:0]
	for _, it := range n.items {
		if now.Sub(it.at) < n.ttl {
			kept = append(kept, it)
		}
	}
	n.items = kept

	out := make([]string, len(kept))
	for i, it := range kept {
		out[i] = it.text
	}
	return out
}
