package errors

import (
	"errors"
	"io"
	"testing"
)

func TestWrap(t *testing.T) {
	err := Wrap(errWrapped, "Hello, Wrapped!")
	if err.Error() != "Hello, Wrapped!, err: wrapped error" {
		t.Fatalf("error mismatch: %+v", err)
	}
	if !errors.Is(err, errWrapped) {
		t.Fatalf("wrapped error should match its cause")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "ignored") != nil {
		t.Fatal("wrap nil should stay nil")
	}
	if Wrapf(nil, "ignored %d", 1) != nil {
		t.Fatal("wrapf nil should stay nil")
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(errWrapped, "open %s", "a.txt")
	if err.Error() != "open a.txt, err: wrapped error" {
		t.Fatalf("error mismatch: %+v", err)
	}
}

func TestMark(t *testing.T) {
	err := Mark(errWrapped, io.ErrUnexpectedEOF)
	if !Is(err, errWrapped) || !Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("marked error should match sentinel and cause: %v", err)
	}
	if err.Error() != "wrapped error, err: unexpected EOF" {
		t.Fatalf("error mismatch: %+v", err)
	}
	if Mark(nil, io.EOF) != io.EOF {
		t.Fatal("mark without sentinel should return cause")
	}
}
