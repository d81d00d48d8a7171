package live

import "sync"

// dirtyQueue is a thread-safe, coalescing queue of query names awaiting a
// refresh.
//
// Marking a name that is already pending is a no-op, so a burst of writes
// against one table costs a single refresh. Names drain in first-marked
// order.
//
// The queue uses a buffered signal channel so the Run loop can wait in a
// select together with context cancellation.
type dirtyQueue struct {
	mu      sync.Mutex
	order   []string
	pending map[string]bool
	closed  bool
	signal  chan struct{} // Signals availability (buffered, size 1)
}

func newDirtyQueue() *dirtyQueue {
	return &dirtyQueue{
		pending: make(map[string]bool),
		signal:  make(chan struct{}, 1),
	}
}

// Mark flags a query as needing a refresh.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *dirtyQueue) Mark(name string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	if q.pending[name] {
		return true // Coalesced
	}
	q.pending[name] = true
	q.order = append(q.order, name)

	// Signal availability (non-blocking - buffer of 1 coalesces signals)
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryNext pops the oldest dirty name without blocking.
// Returns ("", false) if nothing is pending.
func (q *dirtyQueue) TryNext() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.order) == 0 {
		return "", false
	}

	name := q.order[0]
	if len(q.order) == 1 {
		q.order = q.order[:0]
	} else {
		q.order = q.order[1:]
	}
	delete(q.pending, name)
	return name, true
}

// Wait returns a channel that signals when names may be available.
// Use with select for context-aware waiting.
func (q *dirtyQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending names.
func (q *dirtyQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// Close signals that no more names will be marked.
// Wakes any blocked waiters by closing the signal channel.
func (q *dirtyQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

func (q *dirtyQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
