package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestItemsDataList(t *testing.T) {
	envelope := decode(t, `{"data": [{"id": "a"}, {"id": "b"}]}`)
	items := Items(envelope)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0]["id"])
}

func TestItemsDataAttributesBuckets(t *testing.T) {
	envelope := decode(t, `{"data": {"attributes": {"buckets": [{"by": {"resource_name": "GET /"}}]}}}`)
	items := Items(envelope)
	require.Len(t, items, 1)
}

func TestItemsTopLevelAttributesBuckets(t *testing.T) {
	envelope := decode(t, `{"attributes": {"buckets": [{"by": {"x": 1}}, {"by": {"x": 2}}]}}`)
	assert.Len(t, Items(envelope), 2)
}

func TestItemsPrecedence(t *testing.T) {
	// A top-level bucket list never shadows an item list under data.
	envelope := decode(t, `{
		"data": [{"id": "direct"}],
		"attributes": {"buckets": [{"id": "bucketed"}]}
	}`)
	items := Items(envelope)
	require.Len(t, items, 1)
	assert.Equal(t, "direct", items[0]["id"])
}

func TestItemsEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"empty data object", `{"data": {}}`},
		{"null data", `{"data": null}`},
		{"buckets not a list", `{"data": {"attributes": {"buckets": {"k": 1}}}}`},
		{"scalar data", `{"data": 42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Items(decode(t, tt.raw)))
		})
	}
	assert.Empty(t, Items(nil))
	assert.Empty(t, Items("not an object"))
}

func TestComputeValuesComputeMap(t *testing.T) {
	resp := decode(t, `{"data": {"attributes": {"buckets": [
		{"attributes": {"compute": {"c0": 5, "c1": 12.5}}}
	]}}}`)
	assert.Equal(t, map[string]float64{"c0": 5, "c1": 12.5}, ComputeValues(resp))
}

func TestComputeValuesComputesList(t *testing.T) {
	resp := decode(t, `{"data": {"attributes": {"buckets": [
		{"attributes": {"computes": [{"value": 5}, {"value": 12.5}]}}
	]}}}`)
	assert.Equal(t, map[string]float64{"c0": 5, "c1": 12.5}, ComputeValues(resp))
}

func TestComputeValuesBucketWithoutAttributes(t *testing.T) {
	resp := decode(t, `{"data": {"attributes": {"buckets": [
		{"compute": {"c0": 3}}
	]}}}`)
	assert.Equal(t, map[string]float64{"c0": 3}, ComputeValues(resp))
}

func TestComputeValuesFallbackToDataAttributes(t *testing.T) {
	// No buckets at all; totals sit directly under data.attributes.
	resp := decode(t, `{"data": {"attributes": {"compute": {"c0": 7}}}}`)
	assert.Equal(t, map[string]float64{"c0": 7}, ComputeValues(resp))

	resp = decode(t, `{"attributes": {"computes": [{"value": 9}]}}`)
	assert.Equal(t, map[string]float64{"c0": 9}, ComputeValues(resp))
}

func TestComputeValuesComputeRequiresIndexedKey(t *testing.T) {
	// A compute mapping without c<N> keys falls through to the computes list.
	resp := decode(t, `{"data": {"attributes": {"buckets": [
		{"attributes": {"compute": {"total": 1}, "computes": [{"value": 4}]}}
	]}}}`)
	assert.Equal(t, map[string]float64{"c0": 4}, ComputeValues(resp))
}

func TestComputeValuesEmpty(t *testing.T) {
	assert.Empty(t, ComputeValues(decode(t, `{}`)))
	assert.Empty(t, ComputeValues(decode(t, `{"data": {"attributes": {}}}`)))
	assert.Empty(t, ComputeValues(nil))
}

func TestBucketHelpers(t *testing.T) {
	bucket := decode(t, `{"attributes": {
		"by": {"resource_name": "GET /checkout"},
		"compute": {"c0": 41}
	}}`).(map[string]any)

	assert.Equal(t, "GET /checkout", BucketGroupValue(bucket, "resource_name"))
	assert.Equal(t, "", BucketGroupValue(bucket, "other_facet"))
	assert.Equal(t, 41.0, BucketCount(bucket))

	flat := decode(t, `{"by": {"host": "web-1"}, "computes": [{"value": 6}]}`).(map[string]any)
	assert.Equal(t, "web-1", BucketGroupValue(flat, "host"))
	assert.Equal(t, 6.0, BucketCount(flat))
}
