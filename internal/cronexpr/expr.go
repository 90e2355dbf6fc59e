package cronexpr

import (
	"errors"
	"time"
)

// ErrImpossible is returned by Next when no instant within the search
// horizon satisfies the expression (e.g. "0 0 30 2 *": February never has
// a 30th).
var ErrImpossible = errors.New("cronexpr: expression never matches (impossible date?)")

// yearHorizon bounds how far into the future Next will search before
// giving up and reporting the expression as impossible. Five years is
// comfortably past any leap-year cycle a day-of-month/month combination
// could depend on.
const yearHorizon = 5

// Expr is a parsed cron expression: a bitmask per field, evaluated the
// usual crontab way (dom/dow are ORed together when both are restricted,
// ANDed with everything else).
type Expr struct {
	Second, Minute, Hour, Dom, Month, Dow uint64
	Location                              *time.Location
}

// Next returns the smallest instant strictly greater than after that
// satisfies every field of the expression, in the expression's own
// location. It returns ErrImpossible if no such instant exists within the
// search horizon.
func (e *Expr) Next(after time.Time) (time.Time, error) {
	loc := e.Location
	if loc == nil {
		loc = time.Local
	}
	t := after.In(loc).Add(time.Second).Truncate(time.Second)

	yearLimit := t.Year() + yearHorizon

wrap:
	for t.Year() <= yearLimit {
		for 1<<uint(t.Month())&e.Month == 0 {
			if t.Month() == time.December {
				t = time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, loc)
			} else {
				t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, loc)
			}
			if t.Year() > yearLimit {
				return time.Time{}, ErrImpossible
			}
		}

		for !e.dayMatches(t) {
			t = t.AddDate(0, 0, 1)
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
			if t.Day() == 1 {
				goto wrap
			}
			if t.Year() > yearLimit {
				return time.Time{}, ErrImpossible
			}
		}

		for 1<<uint(t.Hour())&e.Hour == 0 {
			t = t.Add(time.Hour)
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
			if t.Hour() == 0 {
				goto wrap
			}
		}

		for 1<<uint(t.Minute())&e.Minute == 0 {
			t = t.Add(time.Minute)
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
			if t.Minute() == 0 {
				goto wrap
			}
		}

		for 1<<uint(t.Second())&e.Second == 0 {
			t = t.Add(time.Second)
			if t.Second() == 0 {
				goto wrap
			}
		}

		return t, nil
	}

	return time.Time{}, ErrImpossible
}

// Matches reports whether t satisfies every field of the expression.
func (e *Expr) Matches(t time.Time) bool {
	loc := e.Location
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return 1<<uint(t.Second())&e.Second != 0 &&
		1<<uint(t.Minute())&e.Minute != 0 &&
		1<<uint(t.Hour())&e.Hour != 0 &&
		1<<uint(t.Month())&e.Month != 0 &&
		e.dayMatches(t)
}

// dayMatches applies the crontab dom/dow disambiguation rule: if both
// fields are restricted (no star), a day qualifies when either matches;
// otherwise the restricted field (or "any day" if neither is restricted)
// decides alone.
func (e *Expr) dayMatches(t time.Time) bool {
	domMatch := 1<<uint(t.Day())&e.Dom != 0
	dowMatch := 1<<uint(t.Weekday())&e.Dow != 0
	if e.Dom&starBit != 0 || e.Dow&starBit != 0 {
		return domMatch && dowMatch
	}
	return domMatch || dowMatch
}
