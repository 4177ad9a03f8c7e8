// Package api is the typed client for the remote parking REST API.
//
// Every operation issues exactly one HTTP request and classifies failures into
// the domain error taxonomy: NotFound, Unauthorized, ServerRejected and
// NetworkFailure. The client keeps no state beyond its configuration and the
// bearer token it was derived with.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/simp-lee/logger"

	"github.com/simp-lee/parkdash/internal/domain"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultMaxIdleConns = 100
	maxErrorBody        = 64 << 10
	userAgent           = "parkdash/1.0"
)

// Options configures a Client.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	MaxIdleConns int
	Logger       *slog.Logger
	// HTTPClient overrides the transport entirely (tests).
	HTTPClient *http.Client
}

// Client is a thin HTTP client for the parking API.
// A Client is safe for concurrent use; WithToken derives a copy bound to a
// session's bearer token.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
	token   string
}

// New creates a Client for the API rooted at opts.BaseURL.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("api base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", raw)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		idle := opts.MaxIdleConns
		if idle <= 0 {
			idle = defaultMaxIdleConns
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        idle,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{baseURL: base, http: httpClient, logger: logger}, nil
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Reachable reports whether the API host answers HTTP at all. Any status
// counts; only transport failures do not.
func (c *Client) Reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL.String(), nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

// request describes one API call. route is the path template used for
// metric labels and logs, e.g. "/parkingSlots/:id".
type request struct {
	method string
	route  string
	path   []string
	query  url.Values
	body   any
}

// errorBody is the error shape the backend uses. Either message or error
// may carry the human-readable text.
type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

// do executes r and decodes a successful JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, r, out)
	observeUpstream(r.method, r.route, status, err, time.Since(start))

	if err != nil && !domain.IsNotFound(err) {
		c.logger.WarnContext(ctx, "upstream request failed",
			slog.String("method", r.method),
			slog.String("route", r.route),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Any("error", err),
		)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, r request, out any) (int, error) {
	var reqBody io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return 0, domain.NewAppError(domain.CodeInternal, "encode request body", err)
		}
		reqBody = bytes.NewReader(b)
	}

	u := c.baseURL.JoinPath(r.path...)
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), reqBody)
	if err != nil {
		return 0, domain.NewAppError(domain.CodeInternal, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := requestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, domain.NewNetworkFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, classify(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return resp.StatusCode, nil
		}
		return resp.StatusCode, domain.NewNetworkFailure(fmt.Errorf("decode response: %w", err))
	}
	return resp.StatusCode, nil
}

// requestID returns the request id attached to ctx for logging, so the
// backend can correlate its logs with ours.
func requestID(ctx context.Context) string {
	for _, a := range logger.FromContext(ctx) {
		if a.Key == "request_id" {
			return a.Value.String()
		}
	}
	return ""
}

// classify maps a non-2xx response onto the error taxonomy.
func classify(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	msg := strings.TrimSpace(eb.Message)
	if msg == "" {
		msg = strings.TrimSpace(eb.Error)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		e := domain.NewAppError(domain.CodeNotFound, "not found", nil)
		if msg != "" {
			e.Message = msg
		}
		e.Status = resp.StatusCode
		return e
	case http.StatusUnauthorized:
		e := domain.NewAppError(domain.CodeUnauthorized, "unauthorized", nil)
		if msg != "" {
			e.Message = msg
		}
		e.Status = resp.StatusCode
		return e
	}

	e := domain.NewServerRejected(resp.StatusCode, msg)
	e.Fields = fieldErrors(eb.Errors)
	return e
}

// fieldErrors accepts either {"field": "message"} or
// [{"field": "...", "message": "..."}] and returns nil for anything else.
func fieldErrors(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err == nil && len(m) > 0 {
		return m
	}
	var list []struct {
		Field   string `json:"field"`
		Path    string `json:"path"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return nil
	}
	m = make(map[string]string, len(list))
	for _, item := range list {
		name := item.Field
		if name == "" {
			name = item.Path
		}
		if name != "" && item.Message != "" {
			m[name] = item.Message
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
