package response

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CoalesceAttrs flattens span/log attribute containers into a single
// mapping. Each source may be a mapping, a list of {key,value} pairs, a
// list of generic single-pair mappings, or a list of "k:v" strings. Later
// sources overwrite earlier ones on key collision.
func CoalesceAttrs(sources ...any) map[string]any {
	out := map[string]any{}
	for _, source := range sources {
		for k, v := range coerceAttrsMap(source) {
			out[k] = v
		}
	}
	return out
}

// coerceAttrsMap normalizes one attribute container to a mapping. Unknown
// shapes coerce to an empty map.
func coerceAttrsMap(obj any) map[string]any {
	switch val := obj.(type) {
	case map[string]any:
		return val
	case []any:
		result := map[string]any{}
		for _, el := range val {
			switch entry := el.(type) {
			case map[string]any:
				if key, ok := entry["key"]; ok {
					if value, valOk := entry["value"]; valOk {
						result[fmt.Sprint(key)] = value
						continue
					}
				}
				for k, v := range entry {
					if _, seen := result[k]; !seen {
						result[k] = v
					}
				}
			case string:
				if k, v, ok := strings.Cut(entry, ":"); ok {
					result[strings.TrimSpace(k)] = strings.TrimSpace(v)
				}
			}
		}
		return result
	default:
		return map[string]any{}
	}
}

// AttrString returns the first non-empty attribute among keys, coerced to
// a string. Maps and lists stringify via fmt so oversized payloads still
// render.
func AttrString(attrs map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := attrs[key]
		if !ok || v == nil {
			continue
		}
		if s := Stringify(v); s != "" {
			return s
		}
	}
	return ""
}

// Number coerces a JSON scalar (float, int, or numeric string) to a
// float64.
func Number(v any) (float64, bool) {
	return toFloat(v)
}

// Stringify renders a JSON scalar for table output. Integral numbers
// print without an exponent (IDs and counts decode as float64).
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprint(v)
}
