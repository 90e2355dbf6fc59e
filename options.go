package rufus

import "time"

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithFrequency sets the tick interval the loop thread sleeps for between
// passes. The default is 300ms, per §1's resolution guarantee. Scheduling a
// periodic job whose own period is shorter than this fails with
// ErrInvalidArgument (§4.1's frequency-validation rule).
func WithFrequency(d time.Duration) Option {
	return func(s *Scheduler) {
		s.frequency = d
	}
}

// WithLogger sets the Scheduler's lifecycle/error logging hook. The default
// is NoOpLogger.
func WithLogger(l Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOnError sets the hook invoked with (job, error) whenever a callable
// fails — by panicking, or by running past its timeout. The default
// only logs via the Scheduler's Logger.
func WithOnError(fn func(*Job, error)) Option {
	return func(s *Scheduler) {
		s.onError = fn
	}
}
