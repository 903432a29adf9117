package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientOptions{
		Site:    "datadoghq.eu",
		APIKey:  "api-key",
		AppKey:  "app-key",
		BaseURL: srv.URL,
		Logger:  zaptest.NewLogger(t),
	})
}

func TestGetSendsHeadersAndParams(t *testing.T) {
	var got *http.Request
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"valid": true}`))
	})

	params := url.Values{}
	params.Set("filter[query]", "service:checkout")
	data, err := c.Get(context.Background(), "/api/v1/validate", params)
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "api-key", got.Header.Get("DD-API-KEY"))
	assert.Equal(t, "app-key", got.Header.Get("DD-APPLICATION-KEY"))
	assert.Equal(t, "service:checkout", got.URL.Query().Get("filter[query]"))

	m, ok := data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, m["valid"])
}

func TestKeysOmittedWhenUnset(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	c := NewClient(ClientOptions{Site: "datadoghq.eu", BaseURL: srv.URL})

	_, err := c.Get(context.Background(), "/api/v1/validate", nil)
	require.NoError(t, err)
	_, hasAPI := got.Header["Dd-Api-Key"]
	_, hasApp := got.Header["Dd-Application-Key"]
	assert.False(t, hasAPI)
	assert.False(t, hasApp)
}

func TestPostEncodesBody(t *testing.T) {
	var body map[string]any
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"data": []}`))
	})

	_, err := c.Post(context.Background(), "/api/v2/logs/events/search", map[string]any{
		"filter": map[string]any{"query": "*"},
	})
	require.NoError(t, err)
	filter, ok := body["filter"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "*", filter["query"])
}

func TestErrorStatusYieldsAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errors": ["Forbidden"]}`))
	})

	_, err := c.Get(context.Background(), "/api/v1/monitor", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	payload, ok := apiErr.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"Forbidden"}, payload["errors"])
	assert.Contains(t, apiErr.Error(), "HTTP 403")
}

func TestErrorStatusNonJSONPayloadIsText(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream fell over"))
	})

	_, err := c.Get(context.Background(), "/api/v1/monitor", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream fell over", apiErr.Payload)
}

func TestNonJSONSuccessBodyIsText(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	data, err := c.Get(context.Background(), "/api/v1/validate", nil)
	require.NoError(t, err)
	assert.Equal(t, "OK", data)
}

func TestEmptyBodyIsNil(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	data, err := c.Delete(context.Background(), "/api/v2/services/definitions/checkout")
	require.NoError(t, err)
	assert.Nil(t, data)
}
