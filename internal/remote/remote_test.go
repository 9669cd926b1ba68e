package remote_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/relaywire"
	"github.com/reoring/relaywire/auth"
	"github.com/reoring/relaywire/internal/remote"
	"github.com/reoring/relaywire/metrics"
)

func TestDo_Success(t *testing.T) {
	var got *http.Request
	var gotBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	c, err := remote.New("control", ts.URL+"/base/", remote.WithAuth(auth.Basic("u", "p")))
	require.NoError(t, err)

	out, err := c.Do(context.Background(), remote.Request{
		Operation: "put_channel",
		Method:    http.MethodPut,
		Path:      "/api/channel",
		Header:    http.Header{"X-Extra": []string{"1"}},
		Body:      []byte(`{"a":1}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(out))
	assert.Equal(t, "/base/api/channel", got.URL.Path)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "1", got.Header.Get("X-Extra"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
	user, pass, ok := got.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "u", user)
	assert.Equal(t, "p", pass)
	assert.Equal(t, `{"a":1}`, string(gotBody))
}

func TestDo_RemoteError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	var logs bytes.Buffer
	reg := prometheus.NewRegistry()
	c, err := remote.New("relay", ts.URL,
		remote.WithLogger(zerolog.New(&logs)),
		remote.WithMetrics(metrics.NewWithRegistry(reg)),
	)
	require.NoError(t, err)

	_, err = c.Do(context.Background(), remote.Request{Operation: "put_message", Method: http.MethodPost, Path: "/api/message"})
	re, ok := relaywire.AsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, re.StatusCode)
	assert.Equal(t, "slow down\n", string(re.Body))
	assert.ErrorIs(t, err, relaywire.ErrTooManyRequests)
	assert.Contains(t, logs.String(), `"class":"too_many_requests"`)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "relaywire_remote_errors_total" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDo_ResponseTooLarge(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer ts.Close()

	c, err := remote.New("control", ts.URL, remote.WithMaxResponseBytes(16))
	require.NoError(t, err)
	_, err = c.Do(context.Background(), remote.Request{Operation: "list_channels", Method: http.MethodGet, Path: "/"})
	assert.ErrorIs(t, err, remote.ErrResponseTooLarge)
}

func TestDo_OversizedErrorBodyKeepsStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(strings.Repeat("y", 64)))
	}))
	defer ts.Close()

	c, err := remote.New("relay", ts.URL, remote.WithMaxResponseBytes(16))
	require.NoError(t, err)
	_, err = c.Do(context.Background(), remote.Request{Operation: "put_message", Method: http.MethodPost, Path: "/api/message"})
	re, ok := relaywire.AsRemoteError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, http.StatusTooManyRequests, re.StatusCode)
	assert.Equal(t, strings.Repeat("y", 16), string(re.Body))
	assert.ErrorIs(t, err, relaywire.ErrTooManyRequests)
	assert.NotErrorIs(t, err, remote.ErrResponseTooLarge)
}

func TestDo_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	var logs bytes.Buffer
	c, err := remote.New("control", url, remote.WithLogger(zerolog.New(&logs).Level(zerolog.WarnLevel)))
	require.NoError(t, err)
	_, err = c.Do(context.Background(), remote.Request{Operation: "list_channels", Method: http.MethodGet, Path: "/"})
	require.Error(t, err)
	_, isRemote := relaywire.AsRemoteError(err)
	assert.False(t, isRemote)
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), `"message":"request failed"`)
}

func TestParseBaseURL(t *testing.T) {
	u, err := remote.ParseBaseURL("https://relay.example.com/prefix")
	require.NoError(t, err)
	assert.Equal(t, "relay.example.com", u.Host)

	for _, raw := range []string{"relay.example.com", "mailto:x@y", "http:///path"} {
		_, err := remote.ParseBaseURL(raw)
		assert.Error(t, err, raw)
	}
}
