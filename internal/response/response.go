// Package response normalizes the loosely-typed JSON the monitoring API
// returns. Item lists and aggregate results move around between endpoints
// and API versions; instead of speculative nested lookups at every render
// site, the small closed set of known shapes is tried here in a fixed
// precedence order.
package response

import (
	"regexp"
	"strconv"
)

var computeKeyRe = regexp.MustCompile(`^c[0-9]+$`)

// Items extracts the uniform item list from a response envelope.
// Locations are tried in order, first match wins:
//  1. data as a list
//  2. data.attributes.buckets
//  3. top-level attributes.buckets
//
// Absence of data is not an error; an empty slice is returned.
func Items(envelope any) []map[string]any {
	env, ok := envelope.(map[string]any)
	if !ok {
		return nil
	}
	switch data := env["data"].(type) {
	case []any:
		return onlyMaps(data)
	case map[string]any:
		if buckets, ok := bucketsOf(data["attributes"]); ok {
			return buckets
		}
	}
	if buckets, ok := bucketsOf(env["attributes"]); ok {
		return buckets
	}
	return nil
}

// ComputeValues extracts the computed values of an aggregate response as a
// map keyed "c0", "c1", ... in compute order. Both known result shapes are
// handled: a "compute" mapping already keyed that way, and a "computes"
// list of {value: ...} entries keyed by position. Totals wrapped in a
// single bucket and totals placed directly under attributes are both
// supported. Returns an empty map when nothing matches; never fails.
func ComputeValues(resp any) map[string]float64 {
	if buckets := Items(resp); len(buckets) > 0 {
		if values := computeFrom(BucketAttrs(buckets[0])); len(values) > 0 {
			return values
		}
	}
	env, ok := resp.(map[string]any)
	if !ok {
		return map[string]float64{}
	}
	attrs, _ := env["attributes"].(map[string]any)
	if data, ok := env["data"].(map[string]any); ok {
		if a, ok := data["attributes"].(map[string]any); ok {
			attrs = a
		}
	}
	if values := computeFrom(attrs); len(values) > 0 {
		return values
	}
	return map[string]float64{}
}

// BucketAttrs returns the bucket's "attributes" mapping, or the bucket
// itself when it has none.
func BucketAttrs(bucket map[string]any) map[string]any {
	if attrs, ok := bucket["attributes"].(map[string]any); ok {
		return attrs
	}
	return bucket
}

// BucketGroupValue returns the bucket's group-by value for the given facet
// as a string, or "" when absent.
func BucketGroupValue(bucket map[string]any, facet string) string {
	by, _ := BucketAttrs(bucket)["by"].(map[string]any)
	v, ok := by[facet]
	if !ok || v == nil {
		return ""
	}
	return Stringify(v)
}

// BucketCount returns the bucket's first computed value (the count for a
// single count aggregation), or 0.
func BucketCount(bucket map[string]any) float64 {
	return computeFrom(BucketAttrs(bucket))["c0"]
}

// computeFrom applies the two compute sub-rules to one attributes mapping.
func computeFrom(attrs map[string]any) map[string]float64 {
	if attrs == nil {
		return nil
	}
	if compute, ok := attrs["compute"].(map[string]any); ok && hasComputeKey(compute) {
		out := make(map[string]float64, len(compute))
		for k, v := range compute {
			if f, ok := toFloat(v); ok {
				out[k] = f
			}
		}
		return out
	}
	if computes, ok := attrs["computes"].([]any); ok {
		out := make(map[string]float64, len(computes))
		for idx, entry := range computes {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if f, ok := toFloat(m["value"]); ok {
				out["c"+strconv.Itoa(idx)] = f
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func hasComputeKey(m map[string]any) bool {
	for k := range m {
		if computeKeyRe.MatchString(k) {
			return true
		}
	}
	return false
}

func bucketsOf(attributes any) ([]map[string]any, bool) {
	attrs, ok := attributes.(map[string]any)
	if !ok {
		return nil, false
	}
	buckets, ok := attrs["buckets"].([]any)
	if !ok {
		return nil, false
	}
	return onlyMaps(buckets), true
}

func onlyMaps(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
