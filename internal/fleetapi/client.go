// Package fleetapi provides a typed HTTP client for the fleet manager API.
//
// The manager owns the worker processes; this package only speaks its wire
// format. Every method is a single best-effort round trip with no retries.
// Failures come back as one of three types:
//
//	TransportError  the manager was unreachable or a read returned non-2xx
//	ProtocolError   the response body did not have the expected shape
//	CommandError    a mutating command was rejected, with the server's detail
package fleetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/fleetdash/internal/logger"
)

const (
	// DefaultTimeout bounds each request when no timeout is configured.
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps how much of a response is read into memory.
	maxBodySize = 16 << 20
)

// Client talks to the fleet manager over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	log        logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Tests use this to
// route requests at an httptest.Server transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		// Copy so a shared client such as http.DefaultClient is left alone.
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Client for the manager at baseURL (e.g. "http://localhost:8000").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid manager URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid manager URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid manager URL %q: missing host", baseURL)
	}

	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "fleetdash",
		log:        logger.NewEnvLogger("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the manager URL this client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListWorkers returns the current fleet in the order the manager reports it.
func (c *Client) ListWorkers(ctx context.Context) ([]Worker, error) {
	resp, err := c.do(ctx, http.MethodGet, "/workers", nil)
	if err != nil {
		return nil, &TransportError{Op: OpList, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Op: OpList, StatusCode: resp.StatusCode, Cause: err}
	}

	if !isSuccess(resp.StatusCode) {
		var cause error
		if excerpt := errorBody(body); excerpt != "" {
			cause = errors.New(excerpt)
		}
		return nil, &TransportError{Op: OpList, StatusCode: resp.StatusCode, Cause: cause}
	}

	var payload workersResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ProtocolError{Op: OpList, Cause: err}
	}
	if payload.Workers == nil {
		return nil, &ProtocolError{Op: OpList, Cause: errors.New(`missing "workers" array`)}
	}

	workers := *payload.Workers
	if workers == nil {
		workers = []Worker{}
	}
	return workers, nil
}

// SpawnWorker asks the manager to start one new worker. The manager only
// answers once the worker has registered, so this can take a while.
func (c *Client) SpawnWorker(ctx context.Context) error {
	return c.command(ctx, OpSpawn, http.MethodPost, "/spawn", nil, nil)
}

// TerminateWorker asks the manager to stop the worker with the given id.
func (c *Client) TerminateWorker(ctx context.Context, id WorkerID) error {
	return c.command(ctx, OpTerminate, http.MethodDelete, "/worker/"+url.PathEscape(id.String()), nil, nil)
}

// Parse submits a page render to the least-loaded healthy worker.
func (c *Client) Parse(ctx context.Context, req ParseRequest) (*ParseResponse, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, &CommandError{Op: OpParse, Detail: "url is required"}
	}

	var out ParseResponse
	if err := c.command(ctx, OpParse, http.MethodPost, "/parse", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// command performs a mutating request. Any failure, including a network
// error, is reported as a CommandError so callers have one type to surface.
func (c *Client) command(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &CommandError{Op: op, Cause: err}
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return &CommandError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &CommandError{Op: op, StatusCode: resp.StatusCode, Cause: err}
	}

	if !isSuccess(resp.StatusCode) {
		return &CommandError{Op: op, StatusCode: resp.StatusCode, Detail: extractDetail(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &ProtocolError{Op: op, Cause: err}
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("%s %s failed after %s: %v", method, path, time.Since(start).Round(time.Millisecond), err)
		return nil, err
	}
	c.log.Debug("%s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
