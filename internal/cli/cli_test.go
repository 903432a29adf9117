package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/45p1d4/ddogctl/internal/api"
	"github.com/45p1d4/ddogctl/internal/i18n"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestApp(srv *httptest.Server, out *bytes.Buffer) *App {
	return NewApp(AppOptions{
		Translator: i18n.New(i18n.LangEN),
		Stdout:     out,
		Logger:     zap.NewNop(),
		Now:        func() time.Time { return testNow },
		ClientFactory: func(contextName, configPath string, logger *zap.Logger) (*api.Client, error) {
			return api.NewClient(api.ClientOptions{
				Site:       "datadoghq.eu",
				APIKey:     "test-api-key",
				AppKey:     "test-app-key",
				BaseURL:    srv.URL,
				HTTPClient: srv.Client(),
				Logger:     logger,
			}), nil
		},
	})
}

func TestEveryLeafCommandHasDebugFlag(t *testing.T) {
	app := NewApp(AppOptions{Stdout: &bytes.Buffer{}})
	root := app.NewRootCmd()

	for _, leaf := range collectLeaves(root) {
		if debugExempt[leaf.path] {
			continue
		}
		assert.True(t, leaf.hasDebug, "command %q is missing --debug", leaf.path)
	}
}

func TestChecksDebugFlagsCommand(t *testing.T) {
	var out bytes.Buffer
	app := NewApp(AppOptions{Stdout: &out})
	root := app.NewRootCmd()
	root.SetArgs([]string{"checks", "debug-flags"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "logs query")
	assert.NotContains(t, out.String(), "MISSING")
}

func TestLogsQuery(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/logs/events/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		fmt.Fprint(w, `{"data":[{"attributes":{
			"timestamp":"2024-01-01T00:00:00Z",
			"attributes":{"service":"checkout"},
			"status":"error",
			"message":"boom"}}]}`)
	}))
	defer srv.Close()

	var out bytes.Buffer
	app := newTestApp(srv, &out)
	root := app.NewRootCmd()
	root.SetArgs([]string{"logs", "query", "--service", "checkout", "--from", "-1h", "--to", "now"})

	require.NoError(t, root.Execute())

	filter := gotPayload["filter"].(map[string]any)
	assert.Equal(t, "service:checkout", filter["query"])
	assert.Equal(t, "2024-06-01T11:00:00Z", filter["from"])
	assert.Equal(t, "2024-06-01T12:00:00Z", filter["to"])
	assert.Equal(t, "-timestamp", gotPayload["sort"])

	got := out.String()
	assert.Contains(t, got, "2024-01-01T00:00:00Z")
	assert.Contains(t, got, "checkout")
	assert.Contains(t, got, "error")
	assert.Contains(t, got, "boom")
}

func TestLogsQueryInvalidRange(t *testing.T) {
	var out bytes.Buffer
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an invalid range")
	}))
	defer srv.Close()

	app := newTestApp(srv, &out)
	root := app.NewRootCmd()
	root.SetArgs([]string{"logs", "query", "--from", "now", "--to", "-1h"})

	err := root.Execute()
	require.Error(t, err)
	var rangeErr *InvalidRangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestTroubleshoot(t *testing.T) {
	aggregateCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/spans/analytics/aggregate":
			aggregateCalls++
			switch aggregateCalls {
			case 1: // overview: count + p95 duration in ns
				fmt.Fprint(w, `{"data":{"attributes":{"buckets":[
					{"attributes":{"compute":{"c0":1000,"c1":250000000}}}]}}}`)
			case 2: // error count
				fmt.Fprint(w, `{"data":{"attributes":{"buckets":[
					{"attributes":{"compute":{"c0":100}}}]}}}`)
			default: // top error resources
				fmt.Fprint(w, `{"data":{"attributes":{"buckets":[
					{"attributes":{"by":{"resource_name":"GET /checkout"},"compute":{"c0":60}}},
					{"attributes":{"by":{"resource_name":"POST /pay"},"compute":{"c0":40}}}]}}}`)
			}
		case "/api/v2/logs/events/search":
			fmt.Fprint(w, `{"data":[]}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	var out bytes.Buffer
	app := newTestApp(srv, &out)
	root := app.NewRootCmd()
	root.SetArgs([]string{"service", "troubleshoot", "--service", "checkout", "--env", "prd"})

	require.NoError(t, root.Execute())
	require.Equal(t, 3, aggregateCalls)

	got := out.String()
	assert.Contains(t, got, "10.00%")
	assert.Contains(t, got, "250.00")
	assert.Contains(t, got, "GET /checkout")
	assert.Contains(t, got, "No logs data in the selected range.")
	assert.Contains(t, got, "High error rate (10.00%)")
	assert.Contains(t, got, "GET /checkout (60), POST /pay (40)")
}

func TestMonitorsListFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/monitor", r.URL.Path)
		fmt.Fprint(w, `[
			{"id":123456789012345,"name":"checkout latency","overall_state":"OK"},
			{"id":2,"name":"other","overall_state":"Alert"}]`)
	}))
	defer srv.Close()

	var out bytes.Buffer
	app := newTestApp(srv, &out)
	root := app.NewRootCmd()
	root.SetArgs([]string{"monitors", "list", "--name", "checkout"})

	require.NoError(t, root.Execute())
	got := out.String()
	assert.Contains(t, got, "123456789012345")
	assert.Contains(t, got, "checkout latency")
	assert.NotContains(t, got, "other")
}

func TestAPIErrorSurfacesWithDebug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"errors":["Forbidden"]}`)
	}))
	defer srv.Close()

	var out bytes.Buffer
	app := newTestApp(srv, &out)
	root := app.NewRootCmd()
	root.SetArgs([]string{"auth", "status", "--debug"})

	err := root.Execute()
	require.Error(t, err)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, out.String(), "Forbidden")
}
