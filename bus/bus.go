// Package bus implements the FIFO message queue an element graph's
// application pulls diagnostics and state-change notifications from.
// Generalizes the teacher's hooks.Bus synchronous fan-out (hooks/bus.go)
// into a queue with a sync-handler hook, matching spec.md §4.7's "Bus is
// a FIFO of messages with a mutex and condvar" contract instead of
// immediate fan-out to subscribers.
package bus

import (
	"context"
	"sync"

	"github.com/flowgraph/core/message"
)

// SyncAction is what a SyncHandler tells Post to do with a message.
type SyncAction int

const (
	// Pass queues the message normally.
	Pass SyncAction = iota
	// Drop discards the message; it is never queued.
	Drop
	// Async hands ownership of the message to the handler (e.g. it will
	// re-post it later, or route it elsewhere); Post does not queue it.
	Async
)

// SyncHandler is invoked synchronously on the posting goroutine, before
// a message is queued, letting a caller intercept specific message kinds
// (e.g. turning a subset of messages into synchronous callbacks instead
// of queued, polled notifications).
type SyncHandler func(m *message.Message) SyncAction

// Bus is a thread-safe FIFO of Messages. Producers Post; consumers Pop
// (blocking or non-blocking) or Register a SyncHandler invoked before
// queueing.
type Bus struct {
	mu   sync.Mutex
	cond *sync.Cond

	queue       []*message.Message
	syncHandler SyncHandler
	flushing    bool
	closed      bool
}

// New returns an empty, open Bus.
func New() *Bus {
	b := &Bus{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// SetSyncHandler installs (or clears, with nil) the handler invoked on
// the posting goroutine before a message would be queued.
func (b *Bus) SetSyncHandler(h SyncHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncHandler = h
}

// Post appends m to the queue, after first consulting the sync handler
// (if any). Returns false if the bus is flushing or closed and the
// message was discarded.
func (b *Bus) Post(m *message.Message) bool {
	b.mu.Lock()
	if b.syncHandler != nil {
		switch b.syncHandler(m) {
		case Drop:
			b.mu.Unlock()
			return false
		case Async:
			b.mu.Unlock()
			return true
		}
	}
	if b.flushing || b.closed {
		b.mu.Unlock()
		return false
	}
	b.queue = append(b.queue, m)
	b.mu.Unlock()
	b.cond.Signal()
	return true
}

// PopNonBlocking returns the oldest queued message without blocking, or
// (nil, false) if the queue is empty.
func (b *Bus) PopNonBlocking() (*message.Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.popLocked()
}

func (b *Bus) popLocked() (*message.Message, bool) {
	if len(b.queue) == 0 {
		return nil, false
	}
	m := b.queue[0]
	b.queue = b.queue[1:]
	return m, true
}

// Pop blocks until a message is available, the bus starts flushing, the
// bus is closed, or ctx is cancelled, whichever comes first.
func (b *Bus) Pop(ctx context.Context) (*message.Message, bool) {
	if ctx.Done() != nil {
		returned := make(chan struct{})
		defer close(returned)
		go func() {
			select {
			case <-ctx.Done():
				b.cond.Broadcast()
			case <-returned:
			}
		}()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.queue) == 0 && !b.flushing && !b.closed && ctx.Err() == nil {
		b.cond.Wait()
	}
	return b.popLocked()
}

// PopFiltered blocks like Pop but skips (and discards) any message whose
// Type does not match mask, returning the first one that does.
func (b *Bus) PopFiltered(ctx context.Context, mask message.Type) (*message.Message, bool) {
	for {
		m, ok := b.Pop(ctx)
		if !ok {
			return nil, false
		}
		if m.Matches(mask) {
			return m, true
		}
	}
}

// SetFlushing discards any currently queued messages and, while true,
// makes Post discard new messages and Pop return immediately with
// (nil, false).
func (b *Bus) SetFlushing(flushing bool) {
	b.mu.Lock()
	b.flushing = flushing
	if flushing {
		b.queue = nil
	}
	b.mu.Unlock()
	b.cond.Broadcast()
}

// Close marks the bus closed: Post becomes a no-op and any blocked or
// future Pop returns (nil, false) once the queue drains.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cond.Broadcast()
}

// Len reports the number of currently queued messages.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}
