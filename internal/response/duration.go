package response

import "time"

// DurationMillis converts a duration value of unknown unit to
// milliseconds. The API does not document consistently whether a duration
// is ns, µs, s, or ms, so magnitude disambiguates:
//
//	> 10,000,000 -> nanoseconds
//	> 10,000     -> microseconds
//	<= 10        -> seconds
//	otherwise    -> already milliseconds
//
// Best effort, not a guarantee. Callers that know their endpoint's unit
// should use DurationMillisWithUnit.
func DurationMillis(v float64) float64 {
	switch {
	case v > 10_000_000:
		return v / 1_000_000
	case v > 10_000:
		return v / 1_000
	case v <= 10:
		return v * 1000
	default:
		return v
	}
}

// DurationMillisWithUnit converts with an explicit unit ("ns", "us", "ms",
// "s"). "auto" or the empty string falls back to the magnitude heuristic,
// as does any unrecognized unit.
func DurationMillisWithUnit(v float64, unit string) float64 {
	switch unit {
	case "ns":
		return v / 1_000_000
	case "us":
		return v / 1_000
	case "ms":
		return v
	case "s":
		return v * 1000
	default:
		return DurationMillis(v)
	}
}

// FormatTimestamp splits a raw timestamp value into date and clock parts
// ("2006-01-02", "15:04:05") in UTC. Numeric values are epoch nanoseconds;
// strings are parsed as RFC 3339-ish date/times, naive ones assumed UTC.
// Unparseable strings come back verbatim in the clock part.
func FormatTimestamp(raw any) (date, clock string) {
	if f, ok := toFloat(raw); ok {
		if _, isString := raw.(string); !isString {
			t := time.Unix(0, int64(f)).UTC()
			return t.Format(time.DateOnly), t.Format(time.TimeOnly)
		}
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", ""
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t = t.UTC()
			return t.Format(time.DateOnly), t.Format(time.TimeOnly)
		}
	}
	return "", s
}
