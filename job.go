package rufus

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nadnerb/rufus-scheduler/internal/cronexpr"
)

// Kind identifies which of the four scheduling variants a Job is.
type Kind int

const (
	AtKind Kind = iota
	InKind
	EveryKind
	CronKind
)

func (k Kind) String() string {
	switch k {
	case AtKind:
		return "at"
	case InKind:
		return "in"
	case EveryKind:
		return "every"
	case CronKind:
		return "cron"
	default:
		return "unknown"
	}
}

// State is a Job's position in its lifecycle state machine.
type State int

const (
	Scheduled State = iota
	Running
	Done
	Unscheduled
	Killed
	TimedOut
)

func (s State) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case Running:
		return "running"
	case Done:
		return "done"
	case Unscheduled:
		return "unscheduled"
	case Killed:
		return "killed"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// TimeoutSpec is either an absolute deadline or a duration measured from a
// worker's start time, per §4.8.
type TimeoutSpec struct {
	at       *time.Time
	duration *time.Duration
}

// deadline resolves the spec to an absolute instant given when the worker
// executing it started.
func (t TimeoutSpec) deadline(startedAt time.Time) time.Time {
	if t.at != nil {
		return *t.at
	}
	return startedAt.Add(*t.duration)
}

func (t TimeoutSpec) isZero() bool {
	return t.at == nil && t.duration == nil
}

// resolveTimeoutSpec accepts a time.Duration, a time.Time, or a duration
// string and produces the TimeoutSpec the timeout supervisor compares
// against wall-clock time on each tick.
func resolveTimeoutSpec(v any) (TimeoutSpec, error) {
	switch val := v.(type) {
	case time.Duration:
		d := val
		return TimeoutSpec{duration: &d}, nil
	case time.Time:
		t := val
		return TimeoutSpec{at: &t}, nil
	case string:
		if secs, err := ParseDuration(val, WithQuietDuration()); err == nil && secs != 0 {
			d := time.Duration(secs * float64(time.Second))
			return TimeoutSpec{duration: &d}, nil
		}
		if t, err := ParseTimeString(val); err == nil {
			return TimeoutSpec{at: &t}, nil
		}
		return TimeoutSpec{}, fmt.Errorf("%w: unrecognised timeout spec %q", ErrInvalidArgument, val)
	default:
		return TimeoutSpec{}, fmt.Errorf("%w: timeout must be a duration, time.Time, or duration/time string", ErrInvalidArgument)
	}
}

// Job is the common representation of AtJob, InJob, EveryJob, and CronJob.
// Which variant a Job is is recorded in Kind, not by a distinct Go type:
// the four share every other field and all four lifecycle transitions.
type Job struct {
	ID           string
	Kind         Kind
	OriginalSpec string

	scheduler *Scheduler
	callable  any

	Tags        []string
	mutexNames  []string
	Blocking    bool
	Timeout     TimeoutSpec
	TimeoutReschedule bool

	FirstAt *time.Time
	LastAt  *time.Time
	Times   int // -1 means unlimited

	DiscardPast bool

	Interval time.Duration   // EveryKind
	CronExpr *cronexpr.Expr  // CronKind

	mu            sync.Mutex
	nextTime      time.Time
	lastTime      time.Time
	scheduledAt   time.Time
	unscheduledAt *time.Time
	count         int
	state         State
}

// JobOption configures a Job at scheduling time.
type JobOption func(*Job) error

// WithTags attaches tags to a job; Scheduler.Jobs can filter by them.
func WithTags(tags ...string) JobOption {
	return func(j *Job) error {
		j.Tags = append(j.Tags, tags...)
		return nil
	}
}

// WithMutex names one or more scheduler-wide mutexes that must be held for
// the duration of the callable. When more than one is given they are always
// acquired in sorted order, regardless of the order passed here.
func WithMutex(names ...string) JobOption {
	return func(j *Job) error {
		j.mutexNames = append(j.mutexNames, names...)
		return nil
	}
}

// WithBlocking runs the callable directly on the scheduler's tick loop
// instead of on its own worker, blocking the loop until it returns.
func WithBlocking() JobOption {
	return func(j *Job) error {
		j.Blocking = true
		return nil
	}
}

// WithTimeout marks the job TimedOut and reports ErrTimeout through OnError
// if its callable is still running past spec, per §4.8; the callable itself
// keeps running (see timeout.go). spec may be a time.Duration, a time.Time,
// or a duration/time string.
func WithTimeout(spec any) JobOption {
	return func(j *Job) error {
		ts, err := resolveTimeoutSpec(spec)
		if err != nil {
			return err
		}
		j.Timeout = ts
		return nil
	}
}

// WithTimeoutReschedule controls whether a periodic job that timed out is
// still rescheduled for its next natural fire (default true).
func WithTimeoutReschedule(reschedule bool) JobOption {
	return func(j *Job) error {
		j.TimeoutReschedule = reschedule
		return nil
	}
}

// WithFirstAt forces a periodic job's initial fire to an absolute instant
// rather than its natural first occurrence.
func WithFirstAt(t time.Time) JobOption {
	return func(j *Job) error {
		j.FirstAt = &t
		return nil
	}
}

// WithFirstIn forces a periodic job's initial fire to scheduling-time plus
// d rather than its natural first occurrence.
func WithFirstIn(d time.Duration) JobOption {
	return func(j *Job) error {
		t := time.Now().Add(d)
		j.FirstAt = &t
		return nil
	}
}

// WithLastAt stops a periodic job from firing again once its computed
// next_time would exceed t.
func WithLastAt(t time.Time) JobOption {
	return func(j *Job) error {
		j.LastAt = &t
		return nil
	}
}

// WithLastIn is WithLastAt relative to scheduling time.
func WithLastIn(d time.Duration) JobOption {
	return func(j *Job) error {
		t := time.Now().Add(d)
		j.LastAt = &t
		return nil
	}
}

// WithTimes caps the number of times a periodic job may fire. WithTimes(0)
// schedules a job that never fires.
func WithTimes(n int) JobOption {
	return func(j *Job) error {
		j.Times = n
		return nil
	}
}

// WithDiscardPast skips a periodic job's first fire forward to the next
// natural occurrence if, at scheduling time, that first occurrence already
// lies in the past.
func WithDiscardPast() JobOption {
	return func(j *Job) error {
		j.DiscardPast = true
		return nil
	}
}

func newJob(kind Kind, s *Scheduler, spec string, callable any, opts []JobOption) (*Job, error) {
	if !isCallable(callable) {
		return nil, fmt.Errorf("%w: callable must have signature func(), func(*Job), func(*Job, time.Time), or func(*Job, time.Time, time.Time)", ErrInvalidArgument)
	}

	now := time.Now()
	j := &Job{
		ID:                uuid.NewString(),
		Kind:              kind,
		OriginalSpec:      spec,
		scheduler:         s,
		callable:          callable,
		Times:             -1,
		TimeoutReschedule: true,
		scheduledAt:       now,
		state:             Scheduled,
	}
	for _, opt := range opts {
		if err := opt(j); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// IsPeriodic reports whether the job is an EveryJob or CronJob.
func (j *Job) IsPeriodic() bool {
	return j.Kind == EveryKind || j.Kind == CronKind
}

// NextTime is the next absolute instant at which the job is due.
func (j *Job) NextTime() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.nextTime
}

// LastTime is the most recent instant this job fired, or the zero value if
// it has never fired.
func (j *Job) LastTime() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastTime
}

// Count is the number of completed firings.
func (j *Job) Count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.count
}

// State is the job's current lifecycle state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// HasTag reports whether the job carries tag.
func (j *Job) HasTag(tag string) bool {
	for _, t := range j.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// setNextTime is used by Scheduler/JobArray bookkeeping.
func (j *Job) setNextTime(t time.Time) {
	j.mu.Lock()
	j.nextTime = t
	j.mu.Unlock()
}

func (j *Job) isUnscheduled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.unscheduledAt != nil
}

// markUnscheduled flags the job for removal on the array's next sweep. It
// does not by itself change State; callers set the terminal state (Done,
// Unscheduled, or Killed) that explains why.
func (j *Job) markUnscheduled(at time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.unscheduledAt == nil {
		j.unscheduledAt = &at
	}
}

func (j *Job) setState(st State) {
	j.mu.Lock()
	j.state = st
	j.mu.Unlock()
}

// computeNext advances a periodic job's schedule from t, per §4.4.
func (j *Job) computeNext(from time.Time) (time.Time, error) {
	switch j.Kind {
	case EveryKind:
		return from.Add(j.Interval), nil
	case CronKind:
		return j.CronExpr.Next(from)
	default:
		return time.Time{}, fmt.Errorf("rufus: computeNext called on non-periodic job")
	}
}

// exhaustedAfter reports whether, having just computed next as the
// candidate next_time and incremented count, the periodic reschedule
// filters of §4.4 say this job should be unscheduled instead of
// re-inserted.
func (j *Job) exhaustedAfter(next time.Time, count int) bool {
	if j.LastAt != nil && next.After(*j.LastAt) {
		return true
	}
	if j.Times >= 0 && count >= j.Times {
		return true
	}
	return false
}
