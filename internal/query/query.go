// Package query assembles search queries for the logs and spans endpoints
// from optional facets. Terms are space-joined; the search engine treats
// that as an implicit AND.
package query

import "strings"

// errorFilter matches error spans regardless of how the instrumentation
// flags them. Generic on purpose; adjust to your instrumentation.
const errorFilter = "(status:error OR @error.message:* OR @error.type:*)"

// Build returns the space-joined query "service:<s> env:<e> <extra>",
// omitting absent parts, or "*" when nothing was supplied. Term order is
// fixed for readability only.
func Build(service, env, extra string) string {
	var terms []string
	if service != "" {
		terms = append(terms, "service:"+service)
	}
	if env != "" {
		terms = append(terms, "env:"+env)
	}
	if extra != "" {
		terms = append(terms, extra)
	}
	if len(terms) == 0 {
		return "*"
	}
	return strings.Join(terms, " ")
}

// BuildError appends the generic error filter to the base query, or uses
// the filter alone when the base is the wildcard.
func BuildError(service, env, extra string) string {
	base := Build(service, env, extra)
	if base == "*" {
		return errorFilter
	}
	return base + " " + errorFilter
}

// ClusterTerm returns the "cluster:<name>" term, or "" when cluster is
// empty. Callers pass it as the extra component so it sorts after env.
func ClusterTerm(cluster string) string {
	if cluster == "" {
		return ""
	}
	return "cluster:" + cluster
}
