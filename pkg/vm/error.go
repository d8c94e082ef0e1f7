package vm

import (
	"errors"
	"fmt"
)

// ErrorType classifies a failure reported by the handle.
type ErrorType string

const (
	// ErrorFault is an interpreter-side failure during a cycle.
	ErrorFault ErrorType = "FAULT"
	// ErrorLoad is an interpreter rejecting a program.
	ErrorLoad ErrorType = "LOAD"
)

// ErrNoProgram is returned when Load is called with an empty program.
var ErrNoProgram = errors.New("empty program")

// HandleError wraps an interpreter error with the handle's context.
type HandleError struct {
	Type  ErrorType
	Cycle uint64 // cycles executed since the last reset
	Err   error
}

// Error implements the error interface.
func (e *HandleError) Error() string {
	if e.Type == ErrorFault {
		return fmt.Sprintf("[%s] cycle %d: %v", e.Type, e.Cycle, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the interpreter error.
func (e *HandleError) Unwrap() error {
	return e.Err
}

// IsFault reports whether err is an interpreter fault raised during a cycle.
func IsFault(err error) bool {
	var he *HandleError
	return errors.As(err, &he) && he.Type == ErrorFault
}
