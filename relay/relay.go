// Package relay is the client of the relay server, which forwards messages
// posted to a channel to the channel's recipients.
package relay

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/reoring/relaywire"
	"github.com/reoring/relaywire/auth"
	"github.com/reoring/relaywire/codec"
	"github.com/reoring/relaywire/internal/remote"
	"github.com/reoring/relaywire/metrics"
)

// MessagePath is the message endpoint, relative to the server base URL.
const MessagePath = "/api/message"

// Headers identifying the channel a message is posted to.
const (
	HeaderDescriptor = "X-Descriptor"
	HeaderToken      = "X-Token"
)

// Option configures a Client.
type Option = remote.Option

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option { return remote.WithHTTPClient(hc) }

// WithAuth sets credentials sent in addition to the channel token, for
// relay servers deployed behind an authenticating gateway.
func WithAuth(a auth.Authenticator) Option { return remote.WithAuth(a) }

// WithLogger sets the request logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option { return remote.WithLogger(l) }

// WithMetrics enables request metrics.
func WithMetrics(m *metrics.Collector) Option { return remote.WithMetrics(m) }

// WithMaxResponseBytes caps how much of a response body is read.
func WithMaxResponseBytes(n int64) Option { return remote.WithMaxResponseBytes(n) }

// Client talks to one relay server. It is safe for concurrent use.
type Client struct {
	caller *remote.Caller
}

// NewClient creates a client for the relay server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	c, err := remote.New("relay", baseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("relay: %w", err)
	}
	return &Client{caller: c}, nil
}

// BaseURL returns the server URL.
func (c *Client) BaseURL() string { return c.caller.BaseURL() }

// PutMessage submits msg on the channel identified by descriptor and
// token. Rejections come back as *relaywire.RemoteError; match them with
// relaywire.ErrForbidden, ErrNotFound, ErrTooLarge or ErrTooManyRequests.
func (c *Client) PutMessage(ctx context.Context, descriptor, token string, msg relaywire.Message) ([]byte, error) {
	body, err := codec.Message().Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("put_message: %w", err)
	}
	h := http.Header{}
	h.Set(HeaderDescriptor, descriptor)
	h.Set(HeaderToken, token)
	return c.caller.Do(ctx, remote.Request{
		Operation: "put_message",
		Method:    http.MethodPost,
		Path:      MessagePath,
		Header:    h,
		Body:      body,
	})
}
