package rufus

import (
	"testing"
	"time"
)

func newTestJob(t *testing.T, next time.Time) *Job {
	t.Helper()
	j, err := newJob(AtKind, nil, "", Func0(func() {}), nil)
	if err != nil {
		t.Fatalf("newJob: %v", err)
	}
	j.setNextTime(next)
	return j
}

func TestJobArrayPushKeepsSortedOrder(t *testing.T) {
	a := NewJobArray()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.Push(newTestJob(t, base.Add(3*time.Second)))
	a.Push(newTestJob(t, base.Add(1*time.Second)))
	a.Push(newTestJob(t, base.Add(2*time.Second)))

	got := a.ToSlice()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].NextTime().After(got[i].NextTime()) {
			t.Fatalf("not sorted: %v after %v", got[i-1].NextTime(), got[i].NextTime())
		}
	}
}

func TestJobArrayPushPreservesInsertionOrderForTies(t *testing.T) {
	a := NewJobArray()
	same := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := newTestJob(t, same)
	second := newTestJob(t, same)
	third := newTestJob(t, same)
	a.Push(first)
	a.Push(second)
	a.Push(third)

	got := a.ToSlice()
	if got[0].ID != first.ID || got[1].ID != second.ID || got[2].ID != third.ID {
		t.Fatalf("tie-break did not preserve insertion order")
	}
}

func TestJobArrayShiftOnlyReturnsDueJobs(t *testing.T) {
	a := NewJobArray()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	a.Push(newTestJob(t, now.Add(-time.Second)))
	a.Push(newTestJob(t, now.Add(time.Hour)))

	j := a.Shift(now)
	if j == nil {
		t.Fatal("expected a due job")
	}
	if a.Shift(now) != nil {
		t.Fatal("expected no further due jobs")
	}
	if a.Len() != 1 {
		t.Fatalf("Len = %d, want 1", a.Len())
	}
}

func TestJobArrayDeleteUnscheduled(t *testing.T) {
	a := NewJobArray()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	keep := newTestJob(t, now)
	drop := newTestJob(t, now)
	drop.markUnscheduled(now)
	a.Push(keep)
	a.Push(drop)

	removed := a.DeleteUnscheduled()
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if a.Len() != 1 {
		t.Fatalf("Len = %d, want 1", a.Len())
	}
	if a.Lookup(keep.ID) == nil {
		t.Fatal("expected kept job to still be present")
	}
}

func TestJobArrayLookup(t *testing.T) {
	a := NewJobArray()
	j := newTestJob(t, time.Now())
	a.Push(j)
	if a.Lookup(j.ID) != j {
		t.Fatal("Lookup did not return the pushed job")
	}
	if a.Lookup("does-not-exist") != nil {
		t.Fatal("expected nil for unknown id")
	}
}

func TestJobArrayConcat(t *testing.T) {
	a := NewJobArray()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.Concat([]*Job{
		newTestJob(t, now.Add(2*time.Second)),
		newTestJob(t, now.Add(1*time.Second)),
	})
	if a.Len() != 2 {
		t.Fatalf("Len = %d, want 2", a.Len())
	}
	got := a.ToSlice()
	if got[0].NextTime().After(got[1].NextTime()) {
		t.Fatal("Concat did not preserve sort invariant")
	}
}
