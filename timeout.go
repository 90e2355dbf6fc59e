package rufus

import "time"

// worker tracks a single in-flight execution of a Job's callable, the way
// the scheduler's running-workers registry does in §3 ("Ownership /
// lifecycle"). It exists only for the duration of one firing. id is a
// per-firing identity, not the Job's ID: an overlapping periodic job (§5)
// can have more than one worker registered for the same Job at once, and
// each needs its own registry slot.
type worker struct {
	id        string
	job       *Job
	startedAt time.Time
	done      chan struct{}
	timedOut  bool
}

// deadline returns the instant after which this worker should be considered
// overrun, or the zero Time if the job carries no timeout.
func (w *worker) deadline() time.Time {
	if w.job.Timeout.isZero() {
		return time.Time{}
	}
	return w.job.Timeout.deadline(w.startedAt)
}

// timeoutSweep is the timeout supervisor of §4.8: run inline on every tick,
// it finds every registered worker whose job has a timeout and whose
// deadline has passed, and interrupts it.
//
// Go cannot forcibly unwind a running goroutine the way the source
// language's asynchronous thread-interrupt can; this is the one place
// where the port's behavior necessarily diverges (see DESIGN.md). Instead
// the supervisor marks the job TimedOut, reports it through OnError exactly
// as if the callable itself had failed, and deregisters the worker so it no
// longer appears in RunningJobs — the callable's goroutine, if it is still
// running, finishes in the background and its eventual result is discarded.
func (s *Scheduler) timeoutSweep(now time.Time) {
	s.workersMu.Lock()
	var timedOut []*worker
	for id, w := range s.workers {
		if w.timedOut {
			continue
		}
		dl := w.deadline()
		if dl.IsZero() || now.Before(dl) {
			continue
		}
		w.timedOut = true
		timedOut = append(timedOut, w)
		delete(s.workers, id)
	}
	s.workersMu.Unlock()

	for _, w := range timedOut {
		w.job.setState(TimedOut)
		if !w.job.TimeoutReschedule {
			// Terminal: the job was already re-inserted with its next
			// natural fire time at trigger time, before this tick's sweep
			// caught the overrun. Marking it unscheduled here removes it on
			// the next sweep instead of letting it fire again.
			w.job.markUnscheduled(now)
		}
		s.reportError(w.job, ErrTimeout)
	}
}
