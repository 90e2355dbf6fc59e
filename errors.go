package rufus

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the public API. Callers should match on these
// with errors.Is rather than on message text.
var (
	// ErrInvalidArgument is returned when a caller passes a scheduling
	// argument the scheduler can statically reject, such as scheduling an
	// EveryJob with a period shorter than the tick frequency.
	ErrInvalidArgument = errors.New("rufus: invalid argument")

	// ErrNotFound is returned when an operation references a job ID that
	// isn't (or is no longer) tracked by the scheduler.
	ErrNotFound = errors.New("rufus: job not found")

	// ErrInvalidDuration is returned by ParseDuration when its input
	// doesn't match the duration-string grammar.
	ErrInvalidDuration = errors.New("rufus: invalid duration string")

	// ErrInvalidTimeString is returned by ParseTimeString when its input
	// doesn't match any recognised absolute or relative time format.
	ErrInvalidTimeString = errors.New("rufus: invalid time string")

	// ErrInvalidCron is returned when a cron expression fails to parse, or
	// names a date that can never occur (e.g. February 30th).
	ErrInvalidCron = errors.New("rufus: invalid cron expression")

	// ErrTimeout is delivered (wrapped in a CallbackError) to a job's
	// OnError hook when the timeout supervisor finds its callable still
	// running past its timeout. The callable itself is not stopped.
	ErrTimeout = errors.New("rufus: job timed out")

	// ErrAlreadyShutdown names a scheduler that has been shut down. No
	// function in this package returns it: scheduling calls made after
	// Scheduler.Shutdown succeed, and their jobs wait in the JobArray until
	// Start is called again.
	ErrAlreadyShutdown = errors.New("rufus: scheduler is shut down")
)

// CallbackError wraps a failure that happened inside a job's callable (as
// opposed to a failure in the scheduler itself). It is the value delivered
// to a Scheduler's OnError hook.
type CallbackError struct {
	JobID string
	Err   error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("rufus: job %s: %v", e.JobID, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking callable. It always
// appears as the Err field of a CallbackError, never bare.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("rufus: callable panicked: %v", e.Value)
}
