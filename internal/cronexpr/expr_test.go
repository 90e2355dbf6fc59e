package cronexpr

import (
	"errors"
	"testing"
	"time"
)

func mustParse(t *testing.T, expr string) *Expr {
	t.Helper()
	e, err := Parse(expr)
	if err != nil {
		t.Fatalf("Parse(%q): %v", expr, err)
	}
	return e
}

func TestNextEveryFiveMinutes(t *testing.T) {
	e := mustParse(t, "*/5 * * * *")

	from := time.Date(2026, 1, 1, 12, 2, 0, 0, time.UTC)
	want := []time.Time{
		time.Date(2026, 1, 1, 12, 5, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 12, 10, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 12, 15, 0, 0, time.UTC),
	}

	for _, w := range want {
		next, err := e.Next(from)
		if err != nil {
			t.Fatalf("Next(%v): %v", from, err)
		}
		if !next.Equal(w) {
			t.Fatalf("Next(%v) = %v, want %v", from, next, w)
		}
		from = next
	}
}

func TestNextWithSeconds(t *testing.T) {
	e := mustParse(t, "*/15 * * * * *")
	from := time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC)
	next, err := e.Next(from)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want := time.Date(2026, 1, 1, 0, 0, 15, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next = %v, want %v", next, want)
	}
}

func TestNextImpossibleDate(t *testing.T) {
	e := mustParse(t, "0 0 30 2 *")
	_, err := e.Next(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrImpossible) {
		t.Fatalf("Next: got err %v, want ErrImpossible", err)
	}
}

func TestDayOfWeekNames(t *testing.T) {
	e := mustParse(t, "0 9 * * Mon")
	// 2026-01-05 is a Monday.
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next, err := e.Next(from)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next = %v, want %v", next, want)
	}
}

func TestDomOrDowWhenBothRestricted(t *testing.T) {
	// Fires on the 1st of the month OR on a Friday - whichever comes first.
	e := mustParse(t, "0 0 1 * Fri")
	from := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) // a Friday
	next, err := e.Next(from)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	// The next Friday after Jan 2 (itself a Friday) is Jan 9.
	want := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next = %v, want %v", next, want)
	}
}

func TestMatches(t *testing.T) {
	e := mustParse(t, "30 * * * *")
	if !e.Matches(time.Date(2026, 1, 1, 5, 30, 0, 0, time.UTC)) {
		t.Fatal("expected match at :30")
	}
	if e.Matches(time.Date(2026, 1, 1, 5, 31, 0, 0, time.UTC)) {
		t.Fatal("did not expect match at :31")
	}
}

func TestParseRejectsWrongFieldCount(t *testing.T) {
	if _, err := Parse("* * *"); err == nil {
		t.Fatal("expected error for wrong field count")
	}
}

func TestParseTimezoneSuffix(t *testing.T) {
	e := mustParse(t, "0 9 * * * America/New_York")
	if e.Location == nil || e.Location.String() != "America/New_York" {
		t.Fatalf("Location = %v, want America/New_York", e.Location)
	}
}

func TestParseTimezoneAbbreviation(t *testing.T) {
	e := mustParse(t, "0 9 * * * EST")
	if e.Location == nil {
		t.Fatal("expected a resolved location for EST")
	}
}

func TestParseCachedReturnsEquivalentExpr(t *testing.T) {
	e1, err := ParseCached("*/5 * * * *")
	if err != nil {
		t.Fatalf("ParseCached: %v", err)
	}
	e2, err := ParseCached("*/5 * * * *")
	if err != nil {
		t.Fatalf("ParseCached: %v", err)
	}
	if e1 != e2 {
		t.Fatalf("expected cache hit to return the same *Expr, got %p != %p", e1, e2)
	}
}

func TestStepRange(t *testing.T) {
	e := mustParse(t, "0 9-17/2 * * *")
	from := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)
	next, err := e.Next(from)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want := time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next = %v, want %v", next, want)
	}
}
