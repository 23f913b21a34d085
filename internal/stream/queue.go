package stream

import (
	"sync"
	"sync/atomic"
)

// OverflowPolicy defines queue behavior when full.
type OverflowPolicy uint8

const (
	// OverflowDropOldest drops the oldest item to make room.
	OverflowDropOldest OverflowPolicy = iota
	// OverflowDropNewest drops the incoming item if the queue is full.
	OverflowDropNewest
	// OverflowBlock blocks the publisher until space is available.
	// This puts backpressure on the dispatch path; use it only for subscribers that keep up.
	OverflowBlock
)

// Queue is a bounded ring buffer that decouples a slow subscriber from a topic.
type Queue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	buf      []T
	head     int
	tail     int
	size     int
	closed   bool
	policy   OverflowPolicy
	dropped  atomic.Uint64
	detach   func()
}

// NewQueue creates a bounded queue.
func NewQueue[T any](capacity int, policy OverflowPolicy) *Queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	q := &Queue[T]{
		buf:    make([]T, capacity),
		policy: policy,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Subscribe attaches a new queue to topic. Close detaches it.
func Subscribe[T any](topic *Topic[T], capacity int, policy OverflowPolicy) *Queue[T] {
	q := NewQueue[T](capacity, policy)
	q.detach = topic.Subscribe(func(v T) {
		q.Push(v)
	})
	return q
}

// Push enqueues v according to the overflow policy.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.closed {
			return false
		}
		if q.size < len(q.buf) {
			q.buf[q.tail] = v
			q.tail = (q.tail + 1) % len(q.buf)
			q.size++
			q.notEmpty.Signal()
			return true
		}
		switch q.policy {
		case OverflowBlock:
			q.notFull.Wait()
		case OverflowDropOldest:
			var zero T
			q.buf[q.head] = zero
			q.head = (q.head + 1) % len(q.buf)
			q.size--
			q.dropped.Add(1)
		default:
			q.dropped.Add(1)
			return false
		}
	}
}

// Next dequeues the next item, blocking until one is available or the queue is closed.
func (q *Queue[T]) Next() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.size > 0 {
			v := q.buf[q.head]
			var zero T
			q.buf[q.head] = zero
			q.head = (q.head + 1) % len(q.buf)
			q.size--
			q.notFull.Signal()
			return v, true
		}
		if q.closed {
			var zero T
			return zero, false
		}
		q.notEmpty.Wait()
	}
}

// TryNext dequeues without blocking.
func (q *Queue[T]) TryNext() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if q.size == 0 {
		return zero, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	q.notFull.Signal()
	return v, true
}

// Close detaches the queue from its topic and wakes blocked readers and
// writers. Items already queued can still be read; Next reports false once
// they are drained.
func (q *Queue[T]) Close() {
	if q.detach != nil {
		q.detach()
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
	q.mu.Unlock()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	size := q.size
	q.mu.Unlock()
	return size
}

// Dropped returns how many items were discarded by the overflow policy.
func (q *Queue[T]) Dropped() uint64 {
	return q.dropped.Load()
}
