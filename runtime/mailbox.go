package runtime

import (
	"sync"

	"chat-hub/domain/event"
)

const defaultMailboxCapacity = 256

// Mailbox is the ordered outbound queue of a single connection.
// The hub enqueues, the transport drains via Events().
//
// Capacity is bounded: when a connection is too slow to drain, Put evicts
// the oldest queued event and enqueues the new one. Enqueueing therefore
// never blocks, which lets the hub push while holding its read lock.
type Mailbox struct {
	mu     sync.Mutex
	events chan event.DomainEvent
}

func NewMailbox(capacity int) *Mailbox {
	if capacity <= 0 {
		capacity = defaultMailboxCapacity
	}
	return &Mailbox{events: make(chan event.DomainEvent, capacity)}
}

// Put enqueues e, preserving submission order for this connection.
// It reports whether an older event had to be dropped to make room.
func (m *Mailbox) Put(e event.DomainEvent) (dropped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		select {
		case m.events <- e:
			return dropped
		default:
		}
		// Full: evict the head and retry. The drain side may race us and
		// empty the channel first, hence the loop instead of a single pop.
		select {
		case <-m.events:
			dropped = true
		default:
		}
	}
}

// Events exposes the queue for the transport to drain.
func (m *Mailbox) Events() <-chan event.DomainEvent {
	return m.events
}

func (m *Mailbox) Len() int {
	return len(m.events)
}
