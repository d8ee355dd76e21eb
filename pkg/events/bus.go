// Package events carries "the tree changed" notifications between components.
//
// A Bus is created by the owner of the tree and handed to whoever needs to
// listen. There is no package-level instance.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Type names what happened.
type Type string

const (
	NodeCreated  Type = "node_created"
	NodeUpdated  Type = "node_updated"
	NodeDeleted  Type = "node_deleted"
	NodeMoved    Type = "node_moved"
	TreeReloaded Type = "tree_reloaded"
)

// Event is a single change notification. NodeID is empty for TreeReloaded.
type Event struct {
	Type   Type      `json:"type"`
	NodeID string    `json:"nodeId,omitempty"`
	At     time.Time `json:"at"`
}

// Bus fans events out to subscribers. Publish never blocks: a subscriber whose
// buffer is full misses the event and its Dropped counter goes up.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscription receives events on C until it is cancelled or the bus closes.
type Subscription struct {
	C <-chan Event

	ch      chan Event
	bus     *Bus
	once    sync.Once
	dropped atomic.Int64
}

// Subscribe registers a listener with the given channel buffer. Subscribing
// to a closed bus yields an already-closed subscription.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	s := &Subscription{C: ch, ch: ch, bus: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		s.once.Do(func() { close(ch) })
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Publish delivers e to every subscriber. A zero At is set to now.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for s := range b.subs {
		select {
		case s.ch <- e:
		default:
			s.dropped.Add(1)
		}
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscription. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		s.closeChan()
		delete(b.subs, s)
	}
}

// Cancel stops delivery and closes C. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()
	s.closeChan()
}

// Dropped returns how many events were missed because C was full.
func (s *Subscription) Dropped() int64 { return s.dropped.Load() }

func (s *Subscription) closeChan() {
	s.once.Do(func() { close(s.ch) })
}
