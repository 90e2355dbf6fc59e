package cronexpr

import (
	"fmt"
	"strings"
	"time"
)

// tzAbbreviations maps the handful of common zone abbreviations a cron line
// might carry (beyond full "Continent/City" IANA names, which time.LoadLocation
// already understands) to an IANA name time.LoadLocation can resolve.
var tzAbbreviations = map[string]string{
	"utc":  "UTC",
	"gmt":  "GMT",
	"est":  "America/New_York",
	"edt":  "America/New_York",
	"cst":  "America/Chicago",
	"cdt":  "America/Chicago",
	"mst":  "America/Denver",
	"mdt":  "America/Denver",
	"pst":  "America/Los_Angeles",
	"pdt":  "America/Los_Angeles",
	"jst":  "Asia/Tokyo",
	"ist":  "Asia/Kolkata",
	"cet":  "Europe/Paris",
	"cest": "Europe/Paris",
}

// Parse parses a 5-field (min hour dom month dow) or 6-field (sec min hour
// dom month dow) cron expression, with an optional trailing timezone token.
func Parse(expr string) (*Expr, error) {
	fields := strings.Fields(strings.TrimSpace(expr))
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty cron expression", errBadExpr)
	}

	loc, fields, err := extractLocation(fields)
	if err != nil {
		return nil, err
	}

	var withSeconds bool
	switch len(fields) {
	case 5:
		withSeconds = false
	case 6:
		withSeconds = true
	default:
		return nil, fmt.Errorf("%w: expected 5 or 6 fields, got %d in %q", errBadExpr, len(fields), expr)
	}

	idx := 0
	next := func() string {
		f := fields[idx]
		idx++
		return f
	}

	e := &Expr{Location: loc}

	if withSeconds {
		e.Second, err = parseField(next(), secondsBounds)
		if err != nil {
			return nil, fmt.Errorf("%w: second field: %s", errBadExpr, err)
		}
	} else {
		e.Second = 1 << 0
	}

	if e.Minute, err = parseField(next(), minutesBounds); err != nil {
		return nil, fmt.Errorf("%w: minute field: %s", errBadExpr, err)
	}
	if e.Hour, err = parseField(next(), hoursBounds); err != nil {
		return nil, fmt.Errorf("%w: hour field: %s", errBadExpr, err)
	}
	if e.Dom, err = parseField(next(), domBounds); err != nil {
		return nil, fmt.Errorf("%w: day-of-month field: %s", errBadExpr, err)
	}
	if e.Month, err = parseField(next(), monthBounds); err != nil {
		return nil, fmt.Errorf("%w: month field: %s", errBadExpr, err)
	}
	dow, err := parseField(next(), dowBounds)
	if err != nil {
		return nil, fmt.Errorf("%w: day-of-week field: %s", errBadExpr, err)
	}
	e.Dow = normalizeDow(dow)

	return e, nil
}

// ResolveZoneAbbreviation looks up name (case-insensitively) against the
// small table of common timezone abbreviations this package understands,
// returning the IANA location it maps to. It does not attempt to resolve
// full "Continent/City" names; callers should try time.LoadLocation for
// those themselves.
func ResolveZoneAbbreviation(name string) (*time.Location, bool) {
	full, ok := tzAbbreviations[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	loc, err := time.LoadLocation(full)
	if err != nil {
		return nil, false
	}
	return loc, true
}

// extractLocation peels off a trailing "<Continent>/<City>" token or a known
// zone abbreviation, returning the remaining fields untouched otherwise.
func extractLocation(fields []string) (*time.Location, []string, error) {
	if len(fields) == 0 {
		return nil, fields, nil
	}
	last := fields[len(fields)-1]

	if strings.Contains(last, "/") {
		loc, err := time.LoadLocation(last)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: unknown timezone %q: %s", errBadExpr, last, err)
		}
		return loc, fields[:len(fields)-1], nil
	}

	if name, ok := tzAbbreviations[strings.ToLower(last)]; ok {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: unknown timezone %q: %s", errBadExpr, last, err)
		}
		return loc, fields[:len(fields)-1], nil
	}

	return nil, fields, nil
}
