// ABOUTME: In-process invalidation bus
// ABOUTME: Broadcasts refresh requests without coupling producers to the scheduler
package engine

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Target names the collection an invalidation applies to.
type Target string

const (
	TargetConversations Target = "conversations"
	TargetCampaigns     Target = "campaigns"
	TargetDashboard     Target = "dashboard"
	TargetAll           Target = "all"
)

// Event is a fire-and-forget invalidation notice. There is no
// acknowledgement; subscribers that cannot keep up drop events.
type Event struct {
	ID     string
	Target Target
	At     time.Time
}

// Matches reports whether the event invalidates the given target.
func (e Event) Matches(t Target) bool {
	return e.Target == TargetAll || e.Target == t
}

// Bus is the process-wide broadcast point for invalidation events. Any
// component may publish; the refresh scheduler is the subscriber that
// matters. Safe for concurrent use.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Publish broadcasts an invalidation for target. It never blocks: a full
// subscriber buffer drops the event rather than stalling the publisher.
func (b *Bus) Publish(target Target) {
	ev := Event{
		ID:     ulid.Make().String(),
		Target: target,
		At:     time.Now(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe returns a channel of events plus an unsubscribe function. The
// channel is closed on unsubscribe or bus close.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
			b.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
