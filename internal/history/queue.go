package history

import (
	"context"
	"slices"
	"sync"
)

// ticket is a place in the effect queue. ready is closed when the ticket
// holds the queue or when it was dropped.
type ticket struct {
	ready   chan struct{}
	dropped bool
}

// effectQueue lets one effect run at a time, in the order tickets were
// enqueued. Waiting is event driven: release hands the queue to the next
// ticket by closing its ready channel.
type effectQueue struct {
	mu      sync.Mutex
	busy    bool
	waiters []*ticket
}

// enqueue takes a ticket. Callers enqueue while holding the history lock so
// queue order matches bookkeeping order.
func (q *effectQueue) enqueue() *ticket {
	t := &ticket{ready: make(chan struct{})}

	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.busy {
		q.busy = true
		close(t.ready)
		return t
	}
	q.waiters = append(q.waiters, t)
	return t
}

// wait blocks until t holds the queue. On success the caller must release.
func (q *effectQueue) wait(ctx context.Context, t *ticket) error {
	select {
	case <-t.ready:
		if t.dropped {
			return ErrDropped
		}
		return nil
	case <-ctx.Done():
	}

	q.mu.Lock()
	if i := slices.Index(q.waiters, t); i >= 0 {
		q.waiters = slices.Delete(q.waiters, i, i+1)
		q.mu.Unlock()
		return ctx.Err()
	}
	dropped := t.dropped
	q.mu.Unlock()

	if dropped {
		return ErrDropped
	}
	// Granted at the same moment the context ended; pass the queue on.
	q.release()
	return ctx.Err()
}

// release hands the queue to the next waiter or marks it idle.
func (q *effectQueue) release() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiters) == 0 {
		q.busy = false
		return
	}
	next := q.waiters[0]
	q.waiters = slices.Delete(q.waiters, 0, 1)
	close(next.ready)
}

// drop discards every waiting ticket. The ticket holding the queue, if any,
// keeps it until it releases.
func (q *effectQueue) drop() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.waiters)
	for _, t := range q.waiters {
		t.dropped = true
		close(t.ready)
	}
	q.waiters = nil
	return n
}

// inFlight reports whether a ticket holds the queue.
func (q *effectQueue) inFlight() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.busy
}

// pending returns the number of tickets waiting behind the holder.
func (q *effectQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}
