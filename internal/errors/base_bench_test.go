package errors

import (
	"errors"
	"io"
	"testing"
)

var errWrapped = errors.New("wrapped error")

func BenchmarkWrap(b *testing.B) {
	b.Run("wrap nil", func(b *testing.B) {
		for b.Loop() {
			_ = Wrap(nil, "dispatch frame")
		}
	})

	b.Run("wrap error", func(b *testing.B) {
		for b.Loop() {
			err := Wrap(errWrapped, "dispatch frame")
			_ = err.Error()
		}
	})

	b.Run("mark error", func(b *testing.B) {
		for b.Loop() {
			err := Mark(errWrapped, io.ErrUnexpectedEOF)
			_ = Is(err, errWrapped)
		}
	})
}
