// Package api is the HTTP transport for the monitoring platform's REST
// API. One client per invocation: it attaches auth headers, decodes JSON,
// and turns any status >= 400 into an APIError. No retries, no caching.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/45p1d4/ddogctl/internal/config"
)

const requestTimeout = 30 * time.Second

// APIError is a response with status >= 400. Payload holds the parsed
// JSON error body, or the raw text when the body is not JSON.
type APIError struct {
	StatusCode int
	Payload    any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Payload)
}

// ClientOptions configures the API client.
type ClientOptions struct {
	// Site is the API site, e.g. "datadoghq.eu". Required.
	Site string

	// APIKey and AppKey are attached as DD-API-KEY / DD-APPLICATION-KEY
	// when non-empty.
	APIKey string
	AppKey string

	// HTTPClient overrides the default 30-second client. Tests use this
	// to point at an httptest server transport.
	HTTPClient *http.Client

	// BaseURL overrides the https://api.<site> base. Tests only.
	BaseURL string

	// Logger for request/response debug logging.
	Logger *zap.Logger
}

// Client issues requests against one site with one set of credentials.
type Client struct {
	site    string
	apiKey  string
	appKey  string
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewClient creates a client from explicit options.
func NewClient(opts ClientOptions) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: requestTimeout}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api." + opts.Site
	}
	return &Client{
		site:    opts.Site,
		apiKey:  opts.APIKey,
		appKey:  opts.AppKey,
		baseURL: baseURL,
		httpc:   opts.HTTPClient,
		logger:  opts.Logger.Named("api"),
	}
}

// NewFromContext resolves credentials (env first, then the named YAML
// context) and builds a client from them.
func NewFromContext(contextName, configPath string, logger *zap.Logger) (*Client, error) {
	ctx, err := config.ResolveContext(contextName, configPath)
	if err != nil {
		return nil, err
	}
	return NewClient(ClientOptions{
		Site:   ctx.Site,
		APIKey: ctx.APIKey,
		AppKey: ctx.AppKey,
		Logger: logger,
	}), nil
}

// Site returns the site this client talks to.
func (c *Client) Site() string {
	return c.site
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		h.Set("DD-API-KEY", c.apiKey)
	}
	if c.appKey != "" {
		h.Set("DD-APPLICATION-KEY", c.appKey)
	}
	return h
}

// Get issues a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (any, error) {
	return c.Do(ctx, http.MethodGet, path, params, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (any, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (any, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do issues one request and decodes the response. JSON bodies decode into
// the generic map/slice forms; non-JSON success bodies come back as a
// string. A status >= 400 yields an *APIError.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, body any) (any, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header = c.headers()

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("request complete",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Payload: decodeLoose(raw)}
	}
	return decodeLoose(raw), nil
}

// decodeLoose prefers JSON; some endpoints do not set content-type
// strictly, so a body that fails to parse is returned as text.
func decodeLoose(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}
