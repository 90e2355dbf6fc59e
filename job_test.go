package rufus

import (
	"testing"
	"time"

	"github.com/nadnerb/rufus-scheduler/internal/cronexpr"
)

func TestNewJobRejectsUnrecognisedCallable(t *testing.T) {
	_, err := newJob(AtKind, nil, "", "not a callable", nil)
	if err == nil {
		t.Fatal("expected an error for a non-callable payload")
	}
}

func TestNewJobAppliesOptions(t *testing.T) {
	j, err := newJob(InKind, nil, "", Func0(func() {}), []JobOption{
		WithTags("a", "b"),
		WithMutex("m1", "m2"),
		WithBlocking(),
		WithTimes(5),
	})
	if err != nil {
		t.Fatalf("newJob: %v", err)
	}
	if !j.HasTag("a") || !j.HasTag("b") {
		t.Fatal("expected both tags")
	}
	if !j.Blocking {
		t.Fatal("expected Blocking to be set")
	}
	if j.Times != 5 {
		t.Fatalf("Times = %d, want 5", j.Times)
	}
}

func TestWithTimeoutAcceptsDurationAndTime(t *testing.T) {
	j, err := newJob(InKind, nil, "", Func0(func() {}), []JobOption{
		WithTimeout(50 * time.Millisecond),
	})
	if err != nil {
		t.Fatalf("newJob: %v", err)
	}
	start := time.Now()
	if dl := j.Timeout.deadline(start); !dl.Equal(start.Add(50 * time.Millisecond)) {
		t.Fatalf("deadline = %v, want %v", dl, start.Add(50*time.Millisecond))
	}

	at := time.Now().Add(time.Hour)
	j2, err := newJob(InKind, nil, "", Func0(func() {}), []JobOption{WithTimeout(at)})
	if err != nil {
		t.Fatalf("newJob: %v", err)
	}
	if !j2.Timeout.deadline(time.Now()).Equal(at) {
		t.Fatal("expected absolute deadline to be used verbatim")
	}
}

func TestComputeNextEveryJob(t *testing.T) {
	j, err := newJob(EveryKind, nil, "", Func0(func() {}), nil)
	if err != nil {
		t.Fatalf("newJob: %v", err)
	}
	j.Interval = 10 * time.Second
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next, err := j.computeNext(from)
	if err != nil {
		t.Fatalf("computeNext: %v", err)
	}
	if !next.Equal(from.Add(10 * time.Second)) {
		t.Fatalf("next = %v, want %v", next, from.Add(10*time.Second))
	}
}

func TestComputeNextCronJob(t *testing.T) {
	expr, err := cronexpr.Parse("*/5 * * * *")
	if err != nil {
		t.Fatalf("cronexpr.Parse: %v", err)
	}
	j, err := newJob(CronKind, nil, "", Func0(func() {}), nil)
	if err != nil {
		t.Fatalf("newJob: %v", err)
	}
	j.CronExpr = expr
	from := time.Date(2026, 1, 1, 12, 2, 0, 0, time.UTC)
	next, err := j.computeNext(from)
	if err != nil {
		t.Fatalf("computeNext: %v", err)
	}
	want := time.Date(2026, 1, 1, 12, 5, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}
}

func TestExhaustedAfterTimes(t *testing.T) {
	j, err := newJob(EveryKind, nil, "", Func0(func() {}), []JobOption{WithTimes(3)})
	if err != nil {
		t.Fatalf("newJob: %v", err)
	}
	if j.exhaustedAfter(time.Now(), 2) {
		t.Fatal("should not be exhausted before reaching times")
	}
	if !j.exhaustedAfter(time.Now(), 3) {
		t.Fatal("should be exhausted once count reaches times")
	}
}

func TestExhaustedAfterLastAt(t *testing.T) {
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	j, err := newJob(EveryKind, nil, "", Func0(func() {}), []JobOption{WithLastAt(cutoff)})
	if err != nil {
		t.Fatalf("newJob: %v", err)
	}
	if j.exhaustedAfter(cutoff.Add(-time.Second), 0) {
		t.Fatal("should not be exhausted before last_at")
	}
	if !j.exhaustedAfter(cutoff.Add(time.Second), 0) {
		t.Fatal("should be exhausted once next_time passes last_at")
	}
}

func TestExhaustedAfterTimesZeroNeverFires(t *testing.T) {
	j, err := newJob(EveryKind, nil, "", Func0(func() {}), []JobOption{WithTimes(0)})
	if err != nil {
		t.Fatalf("newJob: %v", err)
	}
	if !j.exhaustedAfter(time.Now(), 0) {
		t.Fatal("times: 0 should mark the job exhausted before it ever fires")
	}
}
