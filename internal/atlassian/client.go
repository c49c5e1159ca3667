// Package atlassian is the REST core shared by the knowledge-base and issue
// tracker clients: authentication, request construction, response decoding,
// retry with exponential backoff, and translation of HTTP failures into
// apierr kinds.
package atlassian

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/telemetry"
)

// Defaults applied by New when Config leaves a field zero.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultMaxAttempts     = 3
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 10 * time.Second
	DefaultUserAgent       = "scribe/1.0"

	maxResponseSize = 50 * 1024 * 1024
)

// Config configures a Client.
type Config struct {
	BaseURL  string
	Email    string // empty selects bearer-token auth
	APIToken string

	// Service names the remote system in logs and telemetry.
	Service string

	HTTPClient      *http.Client
	Timeout         time.Duration // per request; ignored when HTTPClient is set
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	UserAgent       string
	Logger          *slog.Logger
}

// Client performs authenticated JSON requests against one REST base URL.
// It holds no mutable state after construction and is safe to share.
type Client struct {
	baseURL         string
	authHeader      string
	userAgent       string
	service         string
	httpClient      *http.Client
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          *slog.Logger
	retries         metric.Int64Counter
}

// New validates cfg and builds a Client. The Authorization header is
// computed once here.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, apierr.New(apierr.KindConfigInvalid, "configure "+serviceName(cfg.Service), "base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apierr.New(apierr.KindConfigInvalid, "configure "+serviceName(cfg.Service), "base URL %q is not an absolute URL", cfg.BaseURL)
	}
	if strings.TrimSpace(cfg.APIToken) == "" {
		return nil, apierr.New(apierr.KindConfigInvalid, "configure "+serviceName(cfg.Service), "API token is required")
	}

	c := &Client{
		baseURL:         base,
		authHeader:      authHeader(cfg.Email, cfg.APIToken),
		userAgent:       cfg.UserAgent,
		service:         serviceName(cfg.Service),
		httpClient:      cfg.HTTPClient,
		maxAttempts:     cfg.MaxAttempts,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
		logger:          cfg.Logger,
		retries:         telemetry.RetryCounter(),
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.httpClient = &http.Client{
			Timeout:   timeout,
			Transport: telemetry.WrapTransport(nil, c.service),
		}
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.initialInterval <= 0 {
		c.initialInterval = DefaultInitialInterval
	}
	if c.maxInterval <= 0 {
		c.maxInterval = DefaultMaxInterval
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c, nil
}

func serviceName(s string) string {
	if s == "" {
		return "atlassian"
	}
	return s
}

// authHeader builds Basic auth from email:token, or a bearer token when no
// email is configured (server/data-center personal access tokens).
func authHeader(email, token string) string {
	if email != "" {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+token))
	}
	return "Bearer " + token
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Request describes one logical call. Path is relative to the base URL and
// may already carry a query string (pagination links do).
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, op, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, op, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, op, path string, body, out interface{}) error {
	return c.Do(ctx, op, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, op, path string, body, out interface{}) error {
	return c.Do(ctx, op, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Do executes r, retrying transient failures, and decodes a 2xx JSON body
// into out when out is non-nil. Every failure is an *apierr.Error.
func (c *Client) Do(ctx context.Context, op string, r Request, out interface{}) error {
	var payload []byte
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return apierr.Wrap(apierr.KindInvalidInput, op, fmt.Errorf("marshal request: %w", err))
		}
		payload = data
	}
	target := c.resolve(r.Path, r.Query)

	bo := &retryAfterBackOff{
		BackOff: backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxAttempts-1)),
	}
	attempt := 0
	var body []byte
	err := backoff.RetryNotify(func() error {
		attempt++
		respBody, err := c.attempt(ctx, op, r.Method, target, payload, bo)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(apierr.Wrap(apierr.KindTransient, op, ctx.Err()))
			}
			if !apierr.Retryable(err) {
				return backoff.Permanent(err)
			}
			if !idempotent(r.Method) && !unprocessed(err) {
				return backoff.Permanent(&apierr.Error{
					Kind:    apierr.KindTransient,
					Op:      op,
					Message: r.Method + " not retried: the server may have applied it",
					Err:     err,
				})
			}
			return err
		}
		body = respBody
		return nil
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		c.retries.Add(ctx, 1, metric.WithAttributes(attribute.String("scribe.service", c.service)))
		c.logger.Debug("retrying request",
			"service", c.service, "op", op, "attempt", attempt, "wait", wait, "error", err)
	})
	if err != nil {
		if apierr.KindOf(err) == "" {
			// backoff reports a cancelled context as the bare ctx error.
			return apierr.Wrap(apierr.KindTransient, op, err)
		}
		if apierr.Retryable(err) && attempt >= c.maxAttempts {
			return &apierr.Error{
				Kind:    apierr.KindTransient,
				Op:      op,
				Message: fmt.Sprintf("gave up after %d attempts", attempt),
				Err:     err,
			}
		}
		return err
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &apierr.Error{
			Kind:    apierr.KindRejected,
			Op:      op,
			Message: "unexpected response from " + c.service,
			Body:    apierr.Summarize(body),
			Err:     err,
		}
	}
	return nil
}

// attempt sends one HTTP request and classifies the outcome.
func (c *Client) attempt(ctx context.Context, op, method, target string, payload []byte, bo *retryAfterBackOff) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindConfigInvalid, op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("request", "service", c.service, "op", op, "method", method, "url", target)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindTransient, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, apierr.Wrap(apierr.KindTransient, op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		if d, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
			bo.override(d)
		}
	}
	return nil, classify(op, resp.StatusCode, respBody)
}

// idempotent reports whether repeating a request with method cannot create
// a second resource.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

// unprocessed reports whether a failed request certainly did not reach the
// application: a 429 or 503 answer, or a connection that was never opened.
func unprocessed(err error) bool {
	var e *apierr.Error
	if errors.As(err, &e) && (e.Status == http.StatusTooManyRequests || e.Status == http.StatusServiceUnavailable) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// classify maps a non-2xx status onto an apierr kind.
func classify(op string, status int, body []byte) *apierr.Error {
	e := &apierr.Error{Op: op, Status: status, Body: apierr.Summarize(body)}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = apierr.KindAuthFailed
	case status == http.StatusNotFound:
		e.Kind = apierr.KindNotFound
	case status == http.StatusConflict:
		e.Kind = apierr.KindVersionConflict
	case status == http.StatusTooManyRequests || status >= 500:
		e.Kind = apierr.KindTransient
	default:
		e.Kind = apierr.KindRejected
	}
	return e
}

// resolve joins the base URL, path and query.
func (c *Client) resolve(path string, query url.Values) string {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		target = c.baseURL + path
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}
	return target
}

func (c *Client) newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	bo.MaxInterval = c.maxInterval
	bo.MaxElapsedTime = 0
	return bo
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, status int) bool {
	var e *apierr.Error
	return errors.As(err, &e) && e.Status == status
}
