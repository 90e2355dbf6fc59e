package rufus

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// unitSeconds gives the seconds-equivalent of every duration-string unit
// this package recognizes. Months are approximated as 30 days and years as
// 365 days, exactly as spec'd: this system does no calendar arithmetic
// beyond the cron grammar.
var unitSeconds = map[byte]float64{
	'y': 365 * 24 * 3600,
	'M': 30 * 24 * 3600,
	'w': 7 * 24 * 3600,
	'd': 24 * 3600,
	'h': 3600,
	'm': 60,
	's': 1,
}

// formatUnits lists the units FormatDuration emits, largest first. Months
// are deliberately skipped here (though accepted on input) because a
// 30-day approximation makes a poor canonical unit: "2M" and "60d" parse
// to the same value, so the formatter always prefers the unambiguous "w"/"d"
// decomposition.
var formatUnits = []struct {
	suffix  byte
	seconds float64
}{
	{'y', unitSeconds['y']},
	{'w', unitSeconds['w']},
	{'d', unitSeconds['d']},
	{'h', unitSeconds['h']},
	{'m', unitSeconds['m']},
}

var (
	bareNumberRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
	durationPartRe = regexp.MustCompile(`(\d+(?:\.\d+)?)([yMwdhms])`)
	durationFullRe = regexp.MustCompile(`^(?:\d+(?:\.\d+)?[yMwdhms])+$`)
)

// durationOpts configures ParseDuration.
type durationOpts struct {
	quiet bool
}

// DurationOption configures ParseDuration.
type DurationOption func(*durationOpts)

// WithQuietDuration makes ParseDuration return (0, nil) instead of
// (0, ErrInvalidDuration) on unrecognised input, mirroring the :quiet
// option from the original duration parser.
func WithQuietDuration() DurationOption {
	return func(o *durationOpts) { o.quiet = true }
}

// ParseDuration parses the compact duration grammar this system recognises:
//
//	-? ( NUMBER UNIT )+ | NUMBER
//
// UNIT is one of y, M, w, d, h, m, s. A bare number with no unit is always
// taken to be a count of seconds, whether or not it has a fractional part
// ("500" is 500s, not 500ms; see DESIGN.md for why this follows the code's
// behavior over the inconsistent doc-comment it was copied from).
func ParseDuration(s string, opts ...DurationOption) (float64, error) {
	var o durationOpts
	for _, opt := range opts {
		opt(&o)
	}

	seconds, ok := parseDurationString(s)
	if !ok {
		if o.quiet {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return seconds, nil
}

func parseDurationString(s string) (float64, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, false
	}

	negative := false
	body := trimmed
	if strings.HasPrefix(body, "-") {
		negative = true
		body = body[1:]
	} else if strings.HasPrefix(body, "+") {
		body = body[1:]
	}
	if body == "" {
		return 0, false
	}

	var total float64
	if bareNumberRe.MatchString(body) {
		n, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return 0, false
		}
		total = n
	} else if durationFullRe.MatchString(body) {
		for _, m := range durationPartRe.FindAllStringSubmatch(body, -1) {
			n, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return 0, false
			}
			total += n * unitSeconds[m[2][0]]
		}
	} else {
		return 0, false
	}

	if negative {
		total = -total
	}
	return total, true
}

// FormatDuration renders seconds as the canonical compact duration string:
// the largest-first decomposition into y/w/d/h/m/s units, e.g.
// FormatDuration(3661) == "1h1m1s" and FormatDuration(604800) == "1w".
func FormatDuration(seconds float64) string {
	if seconds == 0 {
		return "0s"
	}

	negative := seconds < 0
	remaining := math.Abs(seconds)

	var b strings.Builder
	for _, u := range formatUnits {
		n := math.Floor(remaining / u.seconds)
		if n >= 1 {
			fmt.Fprintf(&b, "%s%c", strconv.FormatFloat(n, 'f', -1, 64), u.suffix)
			remaining -= n * u.seconds
		}
	}

	// Round off float noise left over from repeated subtraction before
	// deciding whether a trailing seconds component is needed.
	remaining = math.Round(remaining*1e9) / 1e9
	if remaining > 0 || b.Len() == 0 {
		fmt.Fprintf(&b, "%ss", strconv.FormatFloat(remaining, 'f', -1, 64))
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}
