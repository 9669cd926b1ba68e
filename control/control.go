// Package control is the client of the control server, which stores the
// channels a relay server enforces.
package control

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/reoring/relaywire"
	"github.com/reoring/relaywire/auth"
	"github.com/reoring/relaywire/codec"
	"github.com/reoring/relaywire/internal/remote"
	"github.com/reoring/relaywire/metrics"
)

// Endpoints of the control server, relative to its base URL.
const (
	ChannelPath      = "/api/channel"
	ListChannelsPath = "/api/list_channels"
)

// Server-side pagination defaults applied when ListOptions leaves a field
// absent.
const (
	DefaultPage    = 1
	DefaultPerPage = 100
)

// Option configures a Client.
type Option = remote.Option

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option { return remote.WithHTTPClient(hc) }

// WithAuth sets the credentials sent with every request.
func WithAuth(a auth.Authenticator) Option { return remote.WithAuth(a) }

// WithLogger sets the request logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option { return remote.WithLogger(l) }

// WithMetrics enables request metrics.
func WithMetrics(m *metrics.Collector) Option { return remote.WithMetrics(m) }

// WithMaxResponseBytes caps how much of a response body is read.
func WithMaxResponseBytes(n int64) Option { return remote.WithMaxResponseBytes(n) }

// Client talks to one control server. It is safe for concurrent use.
type Client struct {
	caller *remote.Caller
}

// NewClient creates a client for the control server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	c, err := remote.New("control", baseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	return &Client{caller: c}, nil
}

// BaseURL returns the server URL.
func (c *Client) BaseURL() string { return c.caller.BaseURL() }

// PutChannel creates or overwrites the channel stored under ch.Descriptor
// and returns the server's confirmation text.
func (c *Client) PutChannel(ctx context.Context, ch relaywire.Channel) ([]byte, error) {
	body, err := codec.Channel().Marshal(ch)
	if err != nil {
		return nil, fmt.Errorf("put_channel: %w", err)
	}
	return c.caller.Do(ctx, remote.Request{
		Operation: "put_channel",
		Method:    http.MethodPut,
		Path:      ChannelPath,
		Body:      body,
	})
}

// DeleteChannel removes the channel stored under descriptor. The server
// answers 2xx whether or not the channel existed; the returned text tells
// which.
func (c *Client) DeleteChannel(ctx context.Context, descriptor string) ([]byte, error) {
	body, err := codec.Descriptor().Marshal(descriptor)
	if err != nil {
		return nil, fmt.Errorf("delete_channel: %w", err)
	}
	return c.caller.Do(ctx, remote.Request{
		Operation: "delete_channel",
		Method:    http.MethodDelete,
		Path:      ChannelPath,
		Body:      body,
	})
}

// ListOptions selects a page of the channel listing. Absent fields are left
// to the server (DefaultPage, DefaultPerPage).
type ListOptions struct {
	Page    relaywire.Optional[int]
	PerPage relaywire.Optional[int]
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if p, ok := o.Page.Get(); ok {
		q.Set("page", strconv.Itoa(p))
	}
	if p, ok := o.PerPage.Get(); ok {
		q.Set("per_page", strconv.Itoa(p))
	}
	return q
}

// ListChannels fetches one page of channels.
func (c *Client) ListChannels(ctx context.Context, opts ListOptions) (relaywire.ChannelsPage, error) {
	body, err := c.caller.Do(ctx, remote.Request{
		Operation: "list_channels",
		Method:    http.MethodGet,
		Path:      ListChannelsPath,
		Query:     opts.query(),
	})
	if err != nil {
		return relaywire.ChannelsPage{}, err
	}
	page, err := codec.ChannelsPage().Unmarshal(body)
	if err != nil {
		return relaywire.ChannelsPage{}, fmt.Errorf("list_channels: %w", err)
	}
	return page, nil
}

// AllChannels walks every page using perPage channels per request and
// returns the concatenated listing. perPage <= 0 leaves the page size to
// the server.
func (c *Client) AllChannels(ctx context.Context, perPage int) ([]relaywire.Channel, error) {
	var out []relaywire.Channel
	for page := 1; ; page++ {
		opts := ListOptions{Page: relaywire.Some(page)}
		if perPage > 0 {
			opts.PerPage = relaywire.Some(perPage)
		}
		p, err := c.ListChannels(ctx, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Channels...)
		if page >= p.PageCount || len(p.Channels) == 0 {
			return out, nil
		}
	}
}
