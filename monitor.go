package rufus

import "time"

// Stats is a read-only snapshot of a Job's execution history, suitable for
// a status endpoint or a CLI's `jobs` listing.
type Stats struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Tags      []string  `json:"tags"`
	NextTime  time.Time `json:"next_time"`
	LastTime  time.Time `json:"last_time"`
	RunCount  int       `json:"run_count"`
	Running   bool      `json:"running"`
	Paused    bool      `json:"paused"` // scheduler-level pause (§4.1); not per-job
	State     string    `json:"state"`
}

// StatsFor builds a Stats snapshot for id, or false if the job isn't (or
// is no longer) tracked by the scheduler.
func (s *Scheduler) StatsFor(id string) (Stats, bool) {
	j := s.jobs.Lookup(id)
	if j == nil {
		for _, running := range s.RunningJobs() {
			if running.ID == id {
				j = running
				break
			}
		}
		if j == nil {
			return Stats{}, false
		}
	}
	return s.statsOf(j), true
}

// AllStats builds a Stats snapshot for every job the scheduler tracks,
// including jobs mid-firing that have already left the JobArray.
func (s *Scheduler) AllStats() []Stats {
	jobs := s.Jobs()
	seen := make(map[string]bool, len(jobs))
	out := make([]Stats, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, s.statsOf(j))
		seen[j.ID] = true
	}
	for _, j := range s.RunningJobs() {
		if !seen[j.ID] {
			out = append(out, s.statsOf(j))
			seen[j.ID] = true
		}
	}
	return out
}

func (s *Scheduler) statsOf(j *Job) Stats {
	return Stats{
		ID:       j.ID,
		Kind:     j.Kind.String(),
		Tags:     j.Tags,
		NextTime: j.NextTime(),
		LastTime: j.LastTime(),
		RunCount: j.Count(),
		Running:  s.runningJobIDs()[j.ID],
		Paused:   s.Paused(),
		State:    j.State().String(),
	}
}
