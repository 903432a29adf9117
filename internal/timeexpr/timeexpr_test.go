package timeexpr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reference = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestResolveNow(t *testing.T) {
	got, err := Resolve("now", reference)
	require.NoError(t, err)
	assert.Equal(t, reference, got)

	// Case-insensitive.
	got, err = Resolve("NOW", reference)
	require.NoError(t, err)
	assert.Equal(t, reference, got)
}

func TestResolveRelative(t *testing.T) {
	tests := []struct {
		expr string
		want time.Time
	}{
		{"-30s", reference.Add(-30 * time.Second)},
		{"-15m", reference.Add(-15 * time.Minute)},
		{"-1h", reference.Add(-time.Hour)},
		{"-2d", reference.Add(-48 * time.Hour)},
		{"now-1h", reference.Add(-time.Hour)},
		{"now-15m", reference.Add(-15 * time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Resolve(tt.expr, reference)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveAbsolute(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want time.Time
	}{
		{"rfc3339 utc", "2024-01-02T03:04:05Z", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"rfc3339 offset", "2024-01-02T03:04:05+02:00", time.Date(2024, 1, 2, 1, 4, 5, 0, time.UTC)},
		{"naive datetime assumed utc", "2024-01-02T03:04:05", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"space separator", "2024-01-02 03:04:05", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"date only", "2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.expr, reference)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveAbsoluteIndependentOfReference(t *testing.T) {
	// An explicit instant must resolve identically for any reference.
	other := reference.Add(400 * time.Hour)
	a, err := Resolve("2024-01-02T03:04:05Z", reference)
	require.NoError(t, err)
	b, err := Resolve("2024-01-02T03:04:05Z", other)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolveInvalid(t *testing.T) {
	for _, expr := range []string{"", "yesterday", "-15", "-15x", "now+1h", "15m"} {
		t.Run(expr, func(t *testing.T) {
			_, err := Resolve(expr, reference)
			var invalid *InvalidTimeExpressionError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, expr, invalid.Expr)
		})
	}
}

func TestISO8601(t *testing.T) {
	in := time.Date(2024, 1, 2, 5, 4, 5, 0, time.FixedZone("x", 2*3600))
	assert.Equal(t, "2024-01-02T03:04:05Z", ISO8601(in))
}
