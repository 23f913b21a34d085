package response

import (
	"bmxfeed/internal/errors"
	"bmxfeed/pkg/exception"
)

// Matcher recognizes one kind of structured frame.
//
// TryHandle returns false when the envelope is not its kind. When it is,
// the frame is converted and published, and TryHandle returns true. A
// recognized frame that cannot be converted returns true with an error
// wrapping exception.ErrMalformedPayload and publishes nothing.
type Matcher interface {
	Name() string
	TryHandle(env *Envelope) (bool, error)
}

// RawMatcher recognizes one kind of non-JSON control frame.
type RawMatcher interface {
	Name() string
	TryHandle(text string) (bool, error)
}

// Publisher is the write side of a topic.
type Publisher[T any] interface {
	Publish(v T)
}

var (
	_ Matcher    = (*Registration[int])(nil)
	_ RawMatcher = (*RawRegistration[int])(nil)
)

// Registration binds a predicate and a converter to a topic.
type Registration[T any] struct {
	name    string
	match   func(env *Envelope) bool
	convert func(env *Envelope) ([]T, error)
	topic   Publisher[T]
}

// Register creates a Matcher publishing converted events on topic.
func Register[T any](name string, match func(env *Envelope) bool, convert func(env *Envelope) ([]T, error), topic Publisher[T]) *Registration[T] {
	return &Registration[T]{
		name:    name,
		match:   match,
		convert: convert,
		topic:   topic,
	}
}

func (r *Registration[T]) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

func (r *Registration[T]) TryHandle(env *Envelope) (bool, error) {
	if r == nil || env == nil || !r.match(env) {
		return false, nil
	}

	items, err := r.convert(env)
	if err != nil {
		return true, errors.Mark(exception.ErrMalformedPayload, errors.Wrap(err, r.name))
	}

	if r.topic == nil {
		return true, nil
	}

	for _, item := range items {
		r.topic.Publish(item)
	}

	return true, nil
}

// RawRegistration binds an exact-text predicate to a topic.
type RawRegistration[T any] struct {
	name    string
	match   func(text string) bool
	convert func(text string) (T, error)
	topic   Publisher[T]
}

// RegisterRaw creates a RawMatcher publishing converted events on topic.
func RegisterRaw[T any](name string, match func(text string) bool, convert func(text string) (T, error), topic Publisher[T]) *RawRegistration[T] {
	return &RawRegistration[T]{
		name:    name,
		match:   match,
		convert: convert,
		topic:   topic,
	}
}

func (r *RawRegistration[T]) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

func (r *RawRegistration[T]) TryHandle(text string) (bool, error) {
	if r == nil || !r.match(text) {
		return false, nil
	}

	item, err := r.convert(text)
	if err != nil {
		return true, errors.Mark(exception.ErrMalformedPayload, errors.Wrap(err, r.name))
	}

	if r.topic != nil {
		r.topic.Publish(item)
	}

	return true, nil
}
