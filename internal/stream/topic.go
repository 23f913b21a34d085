package stream

import (
	"sync"
	"sync/atomic"
)

// Topic is a single-type publication channel with any number of subscribers.
// Publish delivers synchronously, in subscription order, and never waits on
// Subscribe or unsubscribe.
type Topic[T any] struct {
	name   string
	mu     sync.Mutex
	nextID uint64
	subs   atomic.Pointer[[]subscriber[T]]
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// NewTopic creates an empty topic.
func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name}
}

// Name returns the topic name.
func (t *Topic[T]) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Subscribe registers fn and returns a func that removes it. The returned func is idempotent.
func (t *Topic[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if t == nil || fn == nil {
		return func() {}
	}

	t.mu.Lock()
	t.nextID++
	id := t.nextID
	var current []subscriber[T]
	if p := t.subs.Load(); p != nil {
		current = *p
	}
	next := make([]subscriber[T], len(current), len(current)+1)
	copy(next, current)
	next = append(next, subscriber[T]{id: id, fn: fn})
	t.subs.Store(&next)
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { t.remove(id) })
	}
}

func (t *Topic[T]) remove(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.subs.Load()
	if p == nil {
		return
	}
	current := *p
	next := make([]subscriber[T], 0, len(current))
	for _, s := range current {
		if s.id != id {
			next = append(next, s)
		}
	}
	t.subs.Store(&next)
}

// Publish delivers v to every current subscriber.
func (t *Topic[T]) Publish(v T) {
	if t == nil {
		return
	}
	p := t.subs.Load()
	if p == nil {
		return
	}
	for _, s := range *p {
		s.fn(v)
	}
}

// Subscribers returns the number of current subscribers.
func (t *Topic[T]) Subscribers() int {
	if t == nil {
		return 0
	}
	p := t.subs.Load()
	if p == nil {
		return 0
	}
	return len(*p)
}
