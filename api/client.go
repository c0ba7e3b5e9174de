// ABOUTME: HTTP client for the contacts REST service
// ABOUTME: Builds requests, tags them with a request id and maps failures to RequestFailedError
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/stellar/logging"
)

// DefaultBaseURL is where the contacts service listens in development.
const DefaultBaseURL = "http://localhost:8080"

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-Id"

const (
	mimeJSON = "application/json"
	mimeCSV  = "text/csv"
)

// Client talks to the contacts REST service. Each method issues exactly one
// request; there are no retries and no client-side timeout beyond ctx.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client rooted at baseURL (scheme and host required).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must include scheme and host", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := c.baseURL.JoinPath(segments...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a request and returns the response only for 2xx statuses.
// The caller must close the body.
func (c *Client) do(ctx context.Context, op, method, target, accept string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, failed(op, 0, fmt.Errorf("failed to encode request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, failed(op, 0, err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", mimeJSON)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "method", method, "url", target, "request_id", reqID, "error", err)
		return nil, failed(op, 0, err)
	}
	c.logger.Debug("request completed",
		"op", op,
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, failed(op, resp.StatusCode, ErrNotFound)
		}
		return nil, failed(op, resp.StatusCode, nil)
	}
	return resp, nil
}

// readBody performs a request and returns the full response body.
func (c *Client) readBody(ctx context.Context, op, method, target, accept string, body any) ([]byte, error) {
	resp, err := c.do(ctx, op, method, target, accept, body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failed(op, resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}
	return data, nil
}

// getJSON performs a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, op, target string, out any) error {
	data, err := c.readBody(ctx, op, http.MethodGet, target, mimeJSON, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return failed(op, http.StatusOK, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}
