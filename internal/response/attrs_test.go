package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesceAttrsMapping(t *testing.T) {
	got := CoalesceAttrs(map[string]any{"env": "prd", "service": "checkout"})
	assert.Equal(t, map[string]any{"env": "prd", "service": "checkout"}, got)
}

func TestCoalesceAttrsKeyValuePairs(t *testing.T) {
	got := CoalesceAttrs([]any{
		map[string]any{"key": "env", "value": "prd"},
		map[string]any{"key": "http.method", "value": "GET"},
	})
	assert.Equal(t, map[string]any{"env": "prd", "http.method": "GET"}, got)
}

func TestCoalesceAttrsColonStrings(t *testing.T) {
	got := CoalesceAttrs([]any{"env:prd", " service : checkout ", "plain-no-colon"})
	assert.Equal(t, map[string]any{"env": "prd", "service": "checkout"}, got)
}

func TestCoalesceAttrsLastWriteWins(t *testing.T) {
	got := CoalesceAttrs(
		map[string]any{"env": "dev", "service": "checkout"},
		[]any{"env:prd"},
	)
	assert.Equal(t, "prd", got["env"])
	assert.Equal(t, "checkout", got["service"])
}

func TestCoalesceAttrsUnknownShapes(t *testing.T) {
	assert.Empty(t, CoalesceAttrs(nil, 42, "bare string"))
}

func TestAttrString(t *testing.T) {
	attrs := map[string]any{
		"resource_name": "GET /health",
		"status_code":   float64(500),
		"empty":         "",
		"nil":           nil,
	}
	assert.Equal(t, "GET /health", AttrString(attrs, "resource.name", "resource_name"))
	assert.Equal(t, "500", AttrString(attrs, "status_code"))
	assert.Equal(t, "", AttrString(attrs, "empty", "nil", "missing"))
}
