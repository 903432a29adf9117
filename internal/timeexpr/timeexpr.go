// Package timeexpr resolves the time expressions accepted by range flags
// (--from/--to) into absolute UTC instants.
//
// Supported inputs:
//   - "now" or "now-<rel>" (e.g., now-15m)
//   - relatives: -15m, -1h, -2d, -30s
//   - absolute date/times (RFC 3339 and a few common layouts)
package timeexpr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeRe = regexp.MustCompile(`^-(\d+)([smhd])$`)

// Absolute layouts tried in order. Layouts without a zone are interpreted
// as UTC.
var absoluteLayouts = []struct {
	layout  string
	hasZone bool
}{
	{time.RFC3339Nano, true},
	{time.RFC3339, true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02", false},
}

// InvalidTimeExpressionError reports an expression that is neither "now",
// a relative offset, nor a parseable absolute date/time.
type InvalidTimeExpressionError struct {
	Expr string
}

func (e *InvalidTimeExpressionError) Error() string {
	return fmt.Sprintf("invalid time expression %q", e.Expr)
}

// Resolve parses expr against the given reference instant and returns an
// absolute UTC instant. Resolution is deterministic for a fixed reference.
func Resolve(expr string, reference time.Time) (time.Time, error) {
	lower := strings.ToLower(strings.TrimSpace(expr))
	if lower == "now" {
		return reference.UTC(), nil
	}
	if rest, ok := strings.CutPrefix(lower, "now-"); ok {
		lower = "-" + rest
	}
	if m := relativeRe.FindStringSubmatch(lower); m != nil {
		amount, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, &InvalidTimeExpressionError{Expr: expr}
		}
		var unit time.Duration
		switch m[2] {
		case "s":
			unit = time.Second
		case "m":
			unit = time.Minute
		case "h":
			unit = time.Hour
		default:
			unit = 24 * time.Hour
		}
		return reference.UTC().Add(-time.Duration(amount) * unit), nil
	}
	for _, l := range absoluteLayouts {
		if l.hasZone {
			if t, err := time.Parse(l.layout, expr); err == nil {
				return t.UTC(), nil
			}
			continue
		}
		if t, err := time.ParseInLocation(l.layout, expr, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &InvalidTimeExpressionError{Expr: expr}
}

// ISO8601 formats t as an RFC 3339 UTC timestamp, the form the search and
// aggregate endpoints expect in filter payloads.
func ISO8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
