package rufus

import (
	"time"
)

// safeInvoke runs invoke(callable, job, scheduledTime, now) and converts a
// panic into an error instead of letting it cross the worker boundary. Per
// §4.3's exception policy, nothing a callable does — return an error,
// panic, or run forever — may reach the scheduler's loop thread.
func safeInvoke(callable any, job *Job, scheduledTime, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	invoke(callable, job, scheduledTime, now)
	return nil
}
