package errors

import (
	"errors"
	"fmt"
)

var (
	_ error = (*wrappedError)(nil)
)

func New(text string) error {
	return errors.New(text)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap prefixes err with text. A nil err stays nil.
func Wrap(err error, text string) error {
	if err == nil {
		return nil
	}

	if len(text) == 0 {
		return err
	}

	return &wrappedError{
		err: err,
		msg: text,
	}
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return Wrap(err, fmt.Sprintf(format, args...))
}

// Mark attaches a sentinel to a cause so both match errors.Is.
func Mark(sentinel error, cause error) error {
	if sentinel == nil {
		return cause
	}

	if cause == nil {
		return sentinel
	}

	return &markedError{sentinel: sentinel, cause: cause}
}

type wrappedError struct {
	err error
	msg string
}

const sep = ", err: "

func (err wrappedError) Error() string {
	if err.err == nil {
		return err.msg
	}

	return err.msg + sep + err.err.Error()
}

func (err wrappedError) Unwrap() error {
	if err.err == nil {
		return errors.New(err.msg)
	}

	return err.err
}

type markedError struct {
	sentinel error
	cause    error
}

func (err markedError) Error() string {
	return err.sentinel.Error() + sep + err.cause.Error()
}

func (err markedError) Unwrap() []error {
	return []error{err.sentinel, err.cause}
}
