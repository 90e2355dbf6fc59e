package rufus

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nadnerb/rufus-scheduler/internal/cronexpr"
)

// zoneTokenRe matches a bare word that could plausibly be a timezone
// identifier: an abbreviation like "EST" or a "Continent/City" name.
var zoneTokenRe = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9_\-+]+(?:/[A-Za-z0-9_\-+]+)?\b`)

// naiveLayouts are the date-time layouts ParseTimeString tries, in order,
// against the string once any embedded timezone token has been stripped.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"Jan 2 2006 15:04:05",
	"Jan 2 2006 15:04",
	"Jan 2 2006",
	"January 2 2006",
	"15:04:05",
	"15:04",
}

// ParseTimeString parses an absolute date-time string into a UTC instant.
// The string may contain at most one embedded timezone identifier (an
// abbreviation such as "EST" or an IANA "Continent/City" name); once found
// it is stripped and the remaining text is parsed as a naive local
// date-time, then converted to UTC in that zone. If no timezone token
// resolves, the host's local zone is assumed.
func ParseTimeString(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty time string", ErrInvalidTimeString)
	}

	loc, remainder := extractZone(trimmed)

	var parsed time.Time
	var err error
	found := false
	for _, layout := range naiveLayouts {
		parsed, err = time.ParseInLocation(layout, remainder, loc)
		if err == nil {
			found = true
			break
		}
	}
	if !found {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}

	if parsed.Year() == 0 {
		now := time.Now().In(loc)
		parsed = time.Date(now.Year(), now.Month(), now.Day(),
			parsed.Hour(), parsed.Minute(), parsed.Second(), 0, loc)
	}

	return parsed.UTC(), nil
}

// extractZone finds and strips the first word in s that resolves to a known
// timezone, returning the zone to interpret the remainder in (local time if
// none resolves) and the remainder with that word removed.
func extractZone(s string) (*time.Location, string) {
	matches := zoneTokenRe.FindAllString(s, -1)
	for _, m := range matches {
		if loc, ok := resolveZone(m); ok {
			remainder := strings.TrimSpace(strings.Replace(s, m, "", 1))
			remainder = strings.Join(strings.Fields(remainder), " ")
			return loc, remainder
		}
	}
	return time.Local, s
}

func resolveZone(token string) (*time.Location, bool) {
	if loc, ok := cronexpr.ResolveZoneAbbreviation(token); ok {
		return loc, true
	}
	if strings.Contains(token, "/") {
		if loc, err := time.LoadLocation(token); err == nil {
			return loc, true
		}
	}
	return nil, false
}
