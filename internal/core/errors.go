package core

import (
	"errors"
	"fmt"
)

// FatalError marks a condition the process cannot continue from.
// Call sites return it instead of exiting; the top level prints the
// diagnostic, writes a crash report and terminates.
type FatalError struct {
	Msg string
	Err error
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	return e.Msg
}

// Unwrap returns the underlying cause, if any.
func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatalf builds a FatalError. A %w verb in format is honoured for Unwrap.
func Fatalf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	return &FatalError{Msg: err.Error(), Err: errors.Unwrap(err)}
}

// AsFatal promotes err to a FatalError. Nil stays nil and errors that are
// already fatal are returned unchanged.
func AsFatal(err error) error {
	if err == nil {
		return nil
	}
	var fatal *FatalError
	if errors.As(err, &fatal) {
		return err
	}
	return &FatalError{Msg: err.Error(), Err: err}
}

// IsFatal reports whether err carries a FatalError.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
