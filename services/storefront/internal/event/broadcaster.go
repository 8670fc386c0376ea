package event

import (
	"context"
	"sync"
)

// Broadcaster delivers cart count changes to in-process subscribers such as
// open server-sent-event streams. Each subscriber holds at most one pending
// value; a slow subscriber only ever sees the latest count.
type Broadcaster struct {
	mu      sync.Mutex
	subs    map[uint64]chan int
	nextID  uint64
	last    int
	hasLast bool
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[uint64]chan int)}
}

// NotifyCartCount records count and hands it to every subscriber without
// blocking.
func (b *Broadcaster) NotifyCartCount(_ context.Context, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last, b.hasLast = count, true
	for _, ch := range b.subs {
		select {
		case ch <- count:
		default:
			// Replace the stale pending value. Only this method sends, and it
			// holds the lock, so the second send cannot block.
			select {
			case <-ch:
			default:
			}
			ch <- count
		}
	}
}

// Subscribe registers a subscriber. The returned cancel function unsubscribes
// and closes the channel; it is safe to call more than once.
func (b *Broadcaster) Subscribe() (<-chan int, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan int, 1)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Last returns the most recent count, if any was broadcast.
func (b *Broadcaster) Last() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, b.hasLast
}

// Subscribers returns the number of active subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
