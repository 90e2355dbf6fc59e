package rufus

import "time"

// Callable values are accepted by the scheduling calls (At, In, Every, Cron)
// as the payload to run on fire. Exactly one of the four shapes below is
// expected; Job.invoke type-switches on it rather than using reflection, so
// a callable that isn't one of these four shapes (as the named type or the
// equivalent unnamed func type) is rejected at scheduling time.
type (
	// Func0 receives no arguments.
	Func0 func()
	// Func1 receives the firing Job.
	Func1 func(*Job)
	// Func2 receives the firing Job and the next_time value that selected
	// this fire.
	Func2 func(*Job, time.Time)
	// Func3 receives the firing Job, the scheduled_time, and the
	// wall-clock instant the tick loop observed when it triggered.
	Func3 func(*Job, time.Time, time.Time)
)

// isCallable reports whether v is one of the four recognised callable
// shapes.
func isCallable(v any) bool {
	switch v.(type) {
	case Func0, func(), Func1, func(*Job), Func2, func(*Job, time.Time), Func3, func(*Job, time.Time, time.Time):
		return true
	default:
		return false
	}
}

// invoke calls callable with whichever of its arguments match its detected
// arity.
func invoke(callable any, job *Job, scheduledTime, now time.Time) {
	switch f := callable.(type) {
	case Func0:
		f()
	case func():
		f()
	case Func1:
		f(job)
	case func(*Job):
		f(job)
	case Func2:
		f(job, scheduledTime)
	case func(*Job, time.Time):
		f(job, scheduledTime)
	case Func3:
		f(job, scheduledTime, now)
	case func(*Job, time.Time, time.Time):
		f(job, scheduledTime, now)
	default:
		panic("rufus: unrecognised callable type; this should have been rejected at scheduling time")
	}
}
