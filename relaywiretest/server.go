// Package relaywiretest provides an in-memory control and relay server for
// tests, in the spirit of net/http/httptest. One Server answers both the
// control API and the relay API.
package relaywiretest

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/reoring/relaywire"
	"github.com/reoring/relaywire/codec"
	"github.com/reoring/relaywire/control"
	bodymw "github.com/reoring/relaywire/middleware"
	"github.com/reoring/relaywire/relay"
)

// maxRequestBytes bounds every request body, whatever the channel allows.
const maxRequestBytes = bodymw.DefaultMaxBodyBytes

// Delivery is a message the server accepted for relay.
type Delivery struct {
	Descriptor string
	Message    relaywire.Message
	At         time.Time
}

// Server is an in-memory collaborator server.
type Server struct {
	// URL is the base URL of the running server, e.g. http://127.0.0.1:1234.
	URL string

	ts     *httptest.Server
	now    func() time.Time
	logger zerolog.Logger

	mu       sync.Mutex
	channels map[string]relaywire.Channel
	lastSent map[string]time.Time
	sent     []Delivery
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces time.Now, letting tests step over min_period.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer starts a server. Callers must Close it.
func NewServer(opts ...Option) *Server {
	s := NewUnstartedServer(opts...)
	s.Start()
	return s
}

// NewUnstartedServer returns a server whose Handler can be mounted
// elsewhere; Start runs it on a loopback listener.
func NewUnstartedServer(opts ...Option) *Server {
	s := &Server{
		now:      time.Now,
		logger:   zerolog.Nop(),
		channels: map[string]relaywire.Channel{},
		lastSent: map[string]time.Time{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start serves Handler on a loopback listener and sets URL.
func (s *Server) Start() {
	s.ts = httptest.NewServer(s.Handler())
	s.URL = s.ts.URL
}

// Close shuts the listener down.
func (s *Server) Close() {
	if s.ts != nil {
		s.ts.Close()
	}
}

// Client returns an HTTP client configured for the server.
func (s *Server) Client() *http.Client {
	if s.ts == nil {
		return http.DefaultClient
	}
	return s.ts.Client()
}

// Handler returns the router serving both APIs.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.With(bodymw.DecodeBody(codec.Channel(), maxRequestBytes)).Put(control.ChannelPath, s.putChannel)
	r.With(bodymw.DecodeBody(codec.Descriptor(), maxRequestBytes)).Delete(control.ChannelPath, s.deleteChannel)
	r.Get(control.ListChannelsPath, s.listChannels)
	r.Post(relay.MessagePath, s.putMessage)
	return r
}

// Channel returns the stored channel for descriptor.
func (s *Server) Channel(descriptor string) (relaywire.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[descriptor]
	return ch, ok
}

// Messages returns the accepted messages in arrival order.
func (s *Server) Messages() []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Delivery, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		ev := s.logger.Debug()
		if ww.Status() >= 400 {
			ev = s.logger.Warn()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

func (s *Server) putChannel(w http.ResponseWriter, r *http.Request) {
	ch, _ := bodymw.DecodedFromContext[relaywire.Channel](r.Context())

	s.mu.Lock()
	if old, had := s.channels[ch.Descriptor]; had && old.MinPeriod != ch.MinPeriod {
		delete(s.lastSent, ch.Descriptor)
	}
	s.channels[ch.Descriptor] = ch
	s.mu.Unlock()

	fmt.Fprintf(w, "The channel with descriptor %s was correctly stored.", ch.Descriptor)
}

func (s *Server) deleteChannel(w http.ResponseWriter, r *http.Request) {
	descriptor, _ := bodymw.DecodedFromContext[string](r.Context())

	s.mu.Lock()
	_, had := s.channels[descriptor]
	delete(s.channels, descriptor)
	delete(s.lastSent, descriptor)
	s.mu.Unlock()

	if !had {
		fmt.Fprintf(w, "No channel associated to the descriptor %s was found.", descriptor)
		return
	}
	fmt.Fprintf(w, "The channel with descriptor %s was correctly erased.", descriptor)
}

func (s *Server) listChannels(w http.ResponseWriter, r *http.Request) {
	page, err := positiveQueryInt(r, "page", control.DefaultPage)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	perPage, err := positiveQueryInt(r, "per_page", control.DefaultPerPage)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	all := make([]relaywire.Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		all = append(all, ch)
	}
	s.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].Descriptor < all[j].Descriptor })

	out := relaywire.NewChannelsPage()
	out.Page = page
	out.PerPage = perPage
	out.PageCount = int(math.Ceil(float64(len(all)) / float64(perPage)))
	if start := (page - 1) * perPage; start < len(all) {
		out.Channels = all[start:min(start+perPage, len(all))]
	}

	b, err := codec.ChannelsPage().Marshal(out)
	if err != nil {
		http.Error(w, "Failed to encode the channel listing.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

func (s *Server) putMessage(w http.ResponseWriter, r *http.Request) {
	descriptor := r.Header.Get(relay.HeaderDescriptor)
	token := r.Header.Get(relay.HeaderToken)

	s.mu.Lock()
	ch, ok := s.channels[descriptor]
	s.mu.Unlock()

	if !ok {
		http.Error(w, fmt.Sprintf("No channel was found for the descriptor %s", descriptor), http.StatusNotFound)
		return
	}
	if ch.Token != token {
		http.Error(w, fmt.Sprintf("The request token for descriptor is invalid: %s.", descriptor), http.StatusForbidden)
		return
	}
	now := s.now()
	s.mu.Lock()
	early := s.tooEarlyLocked(descriptor, ch.MinPeriod, now)
	s.mu.Unlock()
	if early {
		tooManyRequests(w, ch, descriptor)
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	if len(body) > ch.MaxSize {
		http.Error(w, fmt.Sprintf("Request is too large. Content length is %d, max. allowed content length is %d for descriptor %s",
			len(body), ch.MaxSize, descriptor), http.StatusRequestEntityTooLarge)
		return
	}
	msg, err := codec.Message().Unmarshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Another post may have been accepted while the body was read.
	s.mu.Lock()
	if s.tooEarlyLocked(descriptor, ch.MinPeriod, now) {
		s.mu.Unlock()
		tooManyRequests(w, ch, descriptor)
		return
	}
	s.lastSent[descriptor] = now
	s.sent = append(s.sent, Delivery{Descriptor: descriptor, Message: msg, At: now})
	s.mu.Unlock()

	_, _ = io.WriteString(w, "The message was correctly relayed.")
}

// tooEarlyLocked reports whether less than minPeriod seconds passed since
// the last accepted message of descriptor. s.mu must be held.
func (s *Server) tooEarlyLocked(descriptor string, minPeriod float64, now time.Time) bool {
	last, ok := s.lastSent[descriptor]
	return ok && now.Sub(last).Seconds() < minPeriod
}

func tooManyRequests(w http.ResponseWriter, ch relaywire.Channel, descriptor string) {
	http.Error(w, fmt.Sprintf("The minimum waiting period of %f seconds did not elapse for descriptor %s",
		ch.MinPeriod, descriptor), http.StatusTooManyRequests)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		http.Error(w, "Failed to read the request body.", http.StatusBadRequest)
		return nil, false
	}
	if int64(len(b)) > maxRequestBytes {
		http.Error(w, fmt.Sprintf("Request is too large (max. allowed content length: %d)", maxRequestBytes),
			http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return b, true
}

func positiveQueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s smaller than 1 is not allowed", name)
	}
	return n, nil
}
