package rufus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nadnerb/rufus-scheduler/internal/cronexpr"
)

// DefaultFrequency is the tick interval a Scheduler uses when no
// WithFrequency option is given.
const DefaultFrequency = 300 * time.Millisecond

// Scheduler owns the JobArray, the tick loop, the named-mutex registry, the
// running-workers registry, and the public scheduling API. It is the
// top-level type this package exports.
type Scheduler struct {
	jobs     *JobArray
	mutexes  *mutexRegistry
	frequency time.Duration
	logger   Logger
	onError  func(*Job, error)

	mu        sync.Mutex
	startedAt *time.Time
	paused    bool
	cancel    context.CancelFunc
	loopDone  chan struct{}

	workersMu sync.Mutex
	workers   map[string]*worker
	workersWG sync.WaitGroup
}

// New constructs a Scheduler. It does not start the tick loop; call Start.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs:      NewJobArray(),
		mutexes:   newMutexRegistry(),
		frequency: DefaultFrequency,
		logger:    NoOpLogger{},
		workers:   make(map[string]*worker),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the tick loop on its own goroutine.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt != nil {
		return fmt.Errorf("rufus: scheduler already started")
	}
	now := time.Now()
	s.startedAt = &now
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loopDone = make(chan struct{})
	s.logger.Infof("scheduler starting, frequency=%s", s.frequency)
	go s.loop(ctx, s.loopDone)
	return nil
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.frequency)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		now := time.Now()
		s.jobs.DeleteUnscheduled()
		if !s.Paused() {
			s.triggerDueJobs(now)
		}
		s.timeoutSweep(now)
	}
}

// triggerDueJobs extracts every job due at or before now, in ascending
// next_time order (ties broken by insertion order, per §4.1), triggers
// each, and re-inserts whichever come back wanting to be rescheduled.
func (s *Scheduler) triggerDueJobs(now time.Time) {
	var reinsert []*Job
	for {
		j := s.jobs.Shift(now)
		if j == nil {
			break
		}
		if next, reschedule := s.triggerJob(j, now); reschedule {
			j.setNextTime(next)
			reinsert = append(reinsert, j)
		}
	}
	s.jobs.Concat(reinsert)
}

// triggerJob implements Job.trigger(now) from §4.3. It returns the next
// next_time and true if j should be re-inserted into the JobArray.
// Scheduler-level pause (§4.1) is checked by the caller before a job ever
// reaches here; a Job has no pause state of its own.
func (s *Scheduler) triggerJob(j *Job, now time.Time) (time.Time, bool) {
	scheduledTime := j.NextTime()

	j.mu.Lock()
	j.lastTime = now
	j.count++
	j.mu.Unlock()

	if j.Blocking {
		s.runBlocking(j, scheduledTime, now)
	} else {
		s.spawnWorker(j, scheduledTime, now)
	}

	if !j.IsPeriodic() {
		// Terminal state (Done, or TimedOut via the timeout supervisor) is
		// set at the end of execute, not here: execute runs concurrently
		// with the rest of this function for a non-blocking job, and would
		// otherwise overwrite whatever this function sets.
		j.markUnscheduled(now)
		return time.Time{}, false
	}

	if j.isUnscheduled() {
		return time.Time{}, false
	}

	next, err := j.computeNext(now)
	if err != nil {
		s.reportError(j, fmt.Errorf("%w: %s", ErrInvalidCron, err))
		j.setState(Unscheduled)
		j.markUnscheduled(now)
		return time.Time{}, false
	}

	j.mu.Lock()
	count := j.count
	j.mu.Unlock()
	if j.exhaustedAfter(next, count) {
		j.markUnscheduled(now)
		return time.Time{}, false
	}

	return next, true
}

// newWorker registers a fresh worker for one firing of j. The worker's id
// is its own identity, distinct from j.ID: an overlapping periodic job
// (§5) can have more than one worker in flight for the same Job at once,
// and each needs a registry slot the others can't collide with.
func (s *Scheduler) newWorker(j *Job, now time.Time) *worker {
	w := &worker{id: uuid.NewString(), job: j, startedAt: now, done: make(chan struct{})}
	s.workersMu.Lock()
	s.workers[w.id] = w
	s.workersMu.Unlock()
	return w
}

// runBlocking executes j's callable directly on the loop thread, per the
// `blocking` option: the tick loop does not advance again until it
// returns.
func (s *Scheduler) runBlocking(j *Job, scheduledTime, now time.Time) {
	w := s.newWorker(j, now)
	s.execute(j, scheduledTime, now, w)
	close(w.done)
}

// spawnWorker runs j's callable on its own goroutine, registering it so the
// timeout supervisor and RunningJobs can see it.
func (s *Scheduler) spawnWorker(j *Job, scheduledTime, now time.Time) {
	w := s.newWorker(j, now)
	s.workersWG.Add(1)
	go func() {
		defer s.workersWG.Done()
		defer close(w.done)
		s.execute(j, scheduledTime, now, w)
	}()
}

// execute runs the callable under any named mutexes it requires and
// reports failures through the error hook. Step 3/4 of §4.3.
func (s *Scheduler) execute(j *Job, scheduledTime, now time.Time, w *worker) {
	j.setState(Running)

	release := s.mutexes.acquireAll(j.mutexNames)
	err := safeInvoke(j.callable, j, scheduledTime, now)
	release()

	s.workersMu.Lock()
	timedOut := w.timedOut
	delete(s.workers, w.id)
	s.workersMu.Unlock()

	if timedOut {
		// timeoutSweep already set State and reported the error.
		return
	}

	if err != nil {
		s.reportError(j, err)
	}

	if j.IsPeriodic() {
		j.mu.Lock()
		if j.state == Running {
			j.state = Scheduled
		}
		j.mu.Unlock()
	} else {
		j.setState(Done)
	}
}

// reportError delivers a failure to the Scheduler's OnError hook (default:
// logged and discarded), wrapped as a CallbackError, per §7's propagation
// policy: worker failures never reach the loop thread itself.
func (s *Scheduler) reportError(j *Job, err error) {
	cbErr := &CallbackError{JobID: j.ID, Err: err}
	s.logger.Errorf("job %s failed: %v", j.ID, cbErr)
	if s.onError != nil {
		s.onError(j, cbErr)
	}
}

// Paused reports whether triggering is currently suspended.
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Pause suspends triggering without stopping the loop thread; unscheduling
// sweeps and the timeout supervisor keep running.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

// Resume undoes Pause.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

// ShutdownMode selects how Shutdown waits for in-flight workers.
type ShutdownMode int

const (
	// ShutdownStop stops the loop thread only; in-flight workers are left
	// to finish (or not) on their own.
	ShutdownStop ShutdownMode = iota
	// ShutdownWait stops the loop thread and blocks until every in-flight
	// worker has returned.
	ShutdownWait
	// ShutdownKill stops the loop thread and, to the extent Go allows
	// (see timeout.go), interrupts every in-flight worker rather than
	// waiting for it.
	ShutdownKill
)

// Shutdown stops the tick loop. See ShutdownMode for how it treats
// in-flight workers.
func (s *Scheduler) Shutdown(mode ShutdownMode) {
	s.mu.Lock()
	if s.startedAt == nil {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.loopDone
	s.startedAt = nil
	s.mu.Unlock()

	cancel()
	<-done

	switch mode {
	case ShutdownWait:
		s.workersWG.Wait()
	case ShutdownKill:
		s.workersMu.Lock()
		for id, w := range s.workers {
			w.job.setState(Killed)
			delete(s.workers, id)
		}
		s.workersMu.Unlock()
	}
}

// TerminateAllJobs unschedules every job, then polls RunningJobs at the
// tick rate until it is empty.
func (s *Scheduler) TerminateAllJobs() {
	for _, j := range s.jobs.ToSlice() {
		_ = s.Unschedule(j.ID)
	}
	for len(s.RunningJobs()) > 0 {
		time.Sleep(s.frequency)
	}
}

// Uptime is how long the scheduler has been running, or 0 if stopped.
func (s *Scheduler) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt == nil {
		return 0
	}
	return time.Since(*s.startedAt)
}

// UptimeSince is the instant the scheduler started, or the zero Time if
// stopped.
func (s *Scheduler) UptimeSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt == nil {
		return time.Time{}
	}
	return *s.startedAt
}

// Join blocks until the scheduler's loop thread has stopped.
func (s *Scheduler) Join() {
	s.mu.Lock()
	done := s.loopDone
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// At schedules a one-shot job to fire at t.
func (s *Scheduler) At(t time.Time, callable any, opts ...JobOption) (*Job, error) {
	j, err := newJob(AtKind, s, t.Format(time.RFC3339), callable, opts)
	if err != nil {
		return nil, err
	}
	j.setNextTime(t)
	s.jobs.Push(j)
	return j, nil
}

// AtString is At with the instant given as a §4.7 absolute-time string.
func (s *Scheduler) AtString(spec string, callable any, opts ...JobOption) (*Job, error) {
	t, err := ParseTimeString(spec)
	if err != nil {
		return nil, err
	}
	j, err := newJob(AtKind, s, spec, callable, opts)
	if err != nil {
		return nil, err
	}
	j.setNextTime(t)
	s.jobs.Push(j)
	return j, nil
}

// In schedules a one-shot job to fire after d.
func (s *Scheduler) In(d time.Duration, callable any, opts ...JobOption) (*Job, error) {
	j, err := newJob(InKind, s, d.String(), callable, opts)
	if err != nil {
		return nil, err
	}
	j.setNextTime(time.Now().Add(d))
	s.jobs.Push(j)
	return j, nil
}

// InString is In with the delay given as a §4.6 duration string.
func (s *Scheduler) InString(spec string, callable any, opts ...JobOption) (*Job, error) {
	secs, err := ParseDuration(spec)
	if err != nil {
		return nil, err
	}
	j, err := newJob(InKind, s, spec, callable, opts)
	if err != nil {
		return nil, err
	}
	j.setNextTime(time.Now().Add(time.Duration(secs * float64(time.Second))))
	s.jobs.Push(j)
	return j, nil
}

// Every schedules a job to fire repeatedly at a fixed interval. Scheduling
// fails with ErrInvalidArgument if interval is shorter than the
// scheduler's tick frequency (§4.1's frequency-validation rule).
func (s *Scheduler) Every(interval time.Duration, callable any, opts ...JobOption) (*Job, error) {
	if interval < s.frequency {
		return nil, fmt.Errorf("%w: every(%s) is shorter than scheduler frequency %s", ErrInvalidArgument, interval, s.frequency)
	}
	j, err := newJob(EveryKind, s, interval.String(), callable, opts)
	if err != nil {
		return nil, err
	}
	j.Interval = interval
	return s.insertPeriodic(j, time.Now().Add(interval))
}

// EveryString is Every with the interval given as a §4.6 duration string.
func (s *Scheduler) EveryString(spec string, callable any, opts ...JobOption) (*Job, error) {
	secs, err := ParseDuration(spec)
	if err != nil {
		return nil, err
	}
	return s.Every(time.Duration(secs*float64(time.Second)), callable, opts...)
}

// Cron schedules a job to fire on the schedule encoded by expr.
func (s *Scheduler) Cron(expr string, callable any, opts ...JobOption) (*Job, error) {
	ce, err := cronexpr.ParseCached(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCron, err)
	}
	j, err := newJob(CronKind, s, expr, callable, opts)
	if err != nil {
		return nil, err
	}
	j.CronExpr = ce
	natural, err := ce.Next(time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCron, err)
	}
	return s.insertPeriodic(j, natural)
}

// insertPeriodic applies first_at/first_in and discard_past, then either
// inserts j into the JobArray or, if it's already exhausted by its own
// last_at/times limits before ever firing, leaves it unscheduled (§4.4,
// and the `times = 0` / "last_at in the past" boundaries of §8).
func (s *Scheduler) insertPeriodic(j *Job, natural time.Time) (*Job, error) {
	next := natural
	if j.FirstAt != nil {
		next = *j.FirstAt
	} else if j.DiscardPast {
		now := time.Now()
		for next.Before(now) {
			advanced, err := j.computeNext(next)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidCron, err)
			}
			next = advanced
		}
	}
	j.setNextTime(next)

	if j.exhaustedAfter(next, 0) {
		j.markUnscheduled(time.Now())
		return j, nil
	}

	s.jobs.Push(j)
	return j, nil
}

// Unschedule marks a job for removal; the next tick's sweep removes it from
// the JobArray. It fails with ErrNotFound if id is unknown.
func (s *Scheduler) Unschedule(id string) error {
	j := s.jobs.Lookup(id)
	if j == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	j.setState(Unscheduled)
	j.markUnscheduled(time.Now())
	return nil
}

// Job looks up a job by id, returning nil if it isn't tracked (or is no
// longer tracked) by the scheduler.
func (s *Scheduler) Job(id string) *Job {
	return s.jobs.Lookup(id)
}

// JobsFilter narrows the results of Jobs.
type JobsFilter struct {
	Kind        *Kind
	Running     bool
	RequireTags []string
}

// JobsOption configures a Jobs call.
type JobsOption func(*JobsFilter)

// WithTagFilter requires every listed tag to be present on a job for it to
// be included.
func WithTagFilter(tags ...string) JobsOption {
	return func(f *JobsFilter) { f.RequireTags = append(f.RequireTags, tags...) }
}

// WithRunningFilter restricts results to jobs currently executing.
func WithRunningFilter() JobsOption {
	return func(f *JobsFilter) { f.Running = true }
}

// WithKindFilter restricts results to one Job Kind.
func WithKindFilter(k Kind) JobsOption {
	return func(f *JobsFilter) { f.Kind = &k }
}

// Jobs enumerates scheduled jobs, optionally filtered by kind, by whether
// they're currently running, and/or by a required set of tags
// (intersection: a job must carry every requested tag).
func (s *Scheduler) Jobs(opts ...JobsOption) []*Job {
	var f JobsFilter
	for _, opt := range opts {
		opt(&f)
	}

	running := s.runningJobIDs()

	var out []*Job
	for _, j := range s.jobs.ToSlice() {
		if f.Kind != nil && j.Kind != *f.Kind {
			continue
		}
		if f.Running && !running[j.ID] {
			continue
		}
		if !hasAllTags(j, f.RequireTags) {
			continue
		}
		out = append(out, j)
	}
	return out
}

func hasAllTags(j *Job, required []string) bool {
	for _, tag := range required {
		if !j.HasTag(tag) {
			return false
		}
	}
	return true
}

// AtJobs enumerates only AtKind jobs.
func (s *Scheduler) AtJobs(opts ...JobsOption) []*Job {
	return s.Jobs(append(opts, WithKindFilter(AtKind))...)
}

// InJobs enumerates only InKind jobs.
func (s *Scheduler) InJobs(opts ...JobsOption) []*Job {
	return s.Jobs(append(opts, WithKindFilter(InKind))...)
}

// EveryJobs enumerates only EveryKind jobs.
func (s *Scheduler) EveryJobs(opts ...JobsOption) []*Job {
	return s.Jobs(append(opts, WithKindFilter(EveryKind))...)
}

// CronJobs enumerates only CronKind jobs.
func (s *Scheduler) CronJobs(opts ...JobsOption) []*Job {
	return s.Jobs(append(opts, WithKindFilter(CronKind))...)
}

// RunningJobs enumerates jobs currently executing, one entry per distinct
// Job even if it has more than one worker in flight (an overlapping
// periodic job, §5). The view is best-effort: a worker that is just
// starting or just exiting may or may not be visible.
func (s *Scheduler) RunningJobs() []*Job {
	s.workersMu.Lock()
	defer s.workersMu.Unlock()
	seen := make(map[string]bool, len(s.workers))
	var out []*Job
	for _, w := range s.workers {
		if !seen[w.job.ID] {
			seen[w.job.ID] = true
			out = append(out, w.job)
		}
	}
	return out
}

// runningJobIDs is the Job-ID view of the workers registry: the keys of
// this set are Job.ID values, not worker identities, and a periodic job
// with two overlapping workers in flight appears exactly once.
func (s *Scheduler) runningJobIDs() map[string]bool {
	s.workersMu.Lock()
	defer s.workersMu.Unlock()
	set := make(map[string]bool, len(s.workers))
	for _, w := range s.workers {
		set[w.job.ID] = true
	}
	return set
}
