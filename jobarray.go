package rufus

import (
	"sort"
	"sync"
	"time"
)

// JobArray is a thread-safe sequence of Jobs kept sorted ascending by
// next_time. It is the scheduler's sole job store.
type JobArray struct {
	mu   sync.Mutex
	jobs []*Job
}

// NewJobArray returns an empty JobArray.
func NewJobArray() *JobArray {
	return &JobArray{}
}

// Push inserts job at the position binary search on next_time determines,
// preserving the sort invariant. Among jobs sharing the same next_time the
// new job is placed after all existing equal entries, so insertion order
// breaks ties (the due-extraction ordering guarantee of §4.1).
func (a *JobArray) Push(job *Job) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.insertLocked(job)
}

func (a *JobArray) insertLocked(job *Job) {
	next := job.NextTime()
	i := sort.Search(len(a.jobs), func(i int) bool {
		return a.jobs[i].NextTime().After(next)
	})
	a.jobs = append(a.jobs, nil)
	copy(a.jobs[i+1:], a.jobs[i:])
	a.jobs[i] = job
}

// Concat bulk-inserts jobs under a single critical section.
func (a *JobArray) Concat(jobs []*Job) {
	if len(jobs) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, j := range jobs {
		a.insertLocked(j)
	}
}

// Shift removes and returns the earliest job if it is due (next_time <=
// now), otherwise it returns nil. Callers loop on Shift to drain every due
// job in next_time order.
func (a *JobArray) Shift(now time.Time) *Job {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.jobs) == 0 {
		return nil
	}
	head := a.jobs[0]
	if head.NextTime().After(now) {
		return nil
	}
	a.jobs = a.jobs[1:]
	return head
}

// DeleteUnscheduled removes every job marked unscheduled, returning how many
// were removed.
func (a *JobArray) DeleteUnscheduled() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	kept := a.jobs[:0]
	removed := 0
	for _, j := range a.jobs {
		if j.isUnscheduled() {
			removed++
			continue
		}
		kept = append(kept, j)
	}
	a.jobs = kept
	return removed
}

// ToSlice returns a snapshot copy of the current contents, still sorted by
// next_time.
func (a *JobArray) ToSlice() []*Job {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Job, len(a.jobs))
	copy(out, a.jobs)
	return out
}

// Lookup performs a linear scan for a job by id.
func (a *JobArray) Lookup(id string) *Job {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, j := range a.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

// Len reports the number of jobs currently held.
func (a *JobArray) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.jobs)
}
