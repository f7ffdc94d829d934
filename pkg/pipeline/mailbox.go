package pipeline

import (
	"context"
	"sync/atomic"
)

// Mailbox is a capacity-1 latest-wins handoff between a producer and a
// consumer goroutine. Put never blocks: if an unconsumed value is still
// present it is replaced and counted as dropped. The consumer therefore
// always observes the newest value, never a backlog.
type Mailbox[T any] struct {
	ch    chan T
	drops atomic.Uint64
}

// NewMailbox creates an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ch: make(chan T, 1)}
}

// Put stores v, replacing any unconsumed value.
func (m *Mailbox[T]) Put(v T) {
	for {
		select {
		case m.ch <- v:
			return
		default:
		}
		// Slot occupied: evict the stale value and retry. The consumer
		// may win the race and take it first, which is fine.
		select {
		case <-m.ch:
			m.drops.Add(1)
		default:
		}
	}
}

// Get blocks until a value is available or ctx is done.
func (m *Mailbox[T]) Get(ctx context.Context) (T, error) {
	select {
	case v := <-m.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Drops returns the number of values evicted before being consumed.
func (m *Mailbox[T]) Drops() uint64 {
	return m.drops.Load()
}
