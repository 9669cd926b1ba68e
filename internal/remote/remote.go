// Package remote holds the HTTP plumbing shared by the control and relay
// callers: URL resolution, credentials, request ids, status translation,
// logging and metrics.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reoring/relaywire"
	"github.com/reoring/relaywire/auth"
	"github.com/reoring/relaywire/metrics"
)

// DefaultMaxResponseBytes caps how much of a response body is read.
const DefaultMaxResponseBytes int64 = 10 << 20

// ErrResponseTooLarge is returned when a 2xx response body exceeds the cap.
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// Options configures a Caller.
type Options struct {
	HTTPClient       *http.Client
	Auth             auth.Authenticator
	Logger           zerolog.Logger
	Metrics          *metrics.Collector
	MaxResponseBytes int64
}

// Option mutates Options.
type Option func(*Options)

func WithHTTPClient(hc *http.Client) Option {
	return func(o *Options) {
		if hc != nil {
			o.HTTPClient = hc
		}
	}
}

func WithAuth(a auth.Authenticator) Option {
	return func(o *Options) { o.Auth = a }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(o *Options) { o.Metrics = m }
}

func WithMaxResponseBytes(n int64) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxResponseBytes = n
		}
	}
}

// Caller sends JSON requests to one server.
type Caller struct {
	name string
	base *url.URL
	opts Options
}

// New creates a caller for the server at baseURL. name labels logs and
// metrics ("control" or "relay").
func New(name, baseURL string, opts ...Option) (*Caller, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	o := Options{
		HTTPClient:       http.DefaultClient,
		Logger:           zerolog.Nop(),
		MaxResponseBytes: DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Auth == nil {
		o.Auth = auth.None()
	}
	return &Caller{name: name, base: base, opts: o}, nil
}

// ParseBaseURL validates an absolute http(s) server URL.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL %q: missing host", raw)
	}
	return u, nil
}

// BaseURL returns the server URL the caller was created with.
func (c *Caller) BaseURL() string { return c.base.String() }

// Request describes one call.
type Request struct {
	Operation string // metrics/log label, e.g. "put_channel"
	Method    string
	Path      string // relative to the base URL, e.g. "/api/channel"
	Query     url.Values
	Header    http.Header
	Body      []byte // JSON; nil for no body
}

// Do sends req and returns the raw 2xx response body. Any other status
// yields a *relaywire.RemoteError carrying the status and body.
func (c *Caller) Do(ctx context.Context, req Request) ([]byte, error) {
	target := c.resolve(req.Path, req.Query)

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", req.Operation, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)
	if err := c.opts.Auth.Apply(httpReq); err != nil {
		return nil, fmt.Errorf("%s: authenticate: %w", req.Operation, err)
	}

	log := c.opts.Logger.With().
		Str("caller", c.name).
		Str("operation", req.Operation).
		Str("method", req.Method).
		Str("path", target.Path).
		Str("request_id", requestID).
		Logger()

	done := c.opts.Metrics.Begin(c.name, req.Operation)
	start := time.Now()
	resp, err := c.opts.HTTPClient.Do(httpReq)
	if err != nil {
		done(0)
		log.Warn().Err(err).Dur("duration", time.Since(start)).Msg("request failed")
		return nil, fmt.Errorf("%s: execute request: %w", req.Operation, err)
	}
	defer resp.Body.Close()
	done(resp.StatusCode)

	respBody, truncated, err := readLimited(resp.Body, c.opts.MaxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", req.Operation, err)
	}

	log.Debug().Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("request completed")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Oversized error bodies are cut at the limit; the status still wins.
		remoteErr := &relaywire.RemoteError{StatusCode: resp.StatusCode, Body: respBody}
		class := remoteErr.Class().String()
		c.opts.Metrics.RecordRemoteError(c.name, req.Operation, class)
		log.Warn().Int("status", resp.StatusCode).Str("class", class).Msg("remote rejected request")
		return nil, remoteErr
	}
	if truncated {
		return nil, fmt.Errorf("%s: read response: %w (%d bytes)", req.Operation, ErrResponseTooLarge, c.opts.MaxResponseBytes)
	}
	return respBody, nil
}

func (c *Caller) resolve(path string, query url.Values) *url.URL {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	} else {
		u.RawQuery = ""
	}
	return &u
}

func readLimited(r io.Reader, limit int64) ([]byte, bool, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(b)) > limit {
		return b[:limit], true, nil
	}
	return b, false, nil
}
