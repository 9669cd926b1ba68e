// Package metrics provides Prometheus metrics for the relaywire callers.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the caller metrics. A nil *Collector is valid and records
// nothing, so callers never need to check whether metrics are enabled.
type Collector struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight *prometheus.GaugeVec
	RemoteErrors     *prometheus.CounterVec
	TransportErrors  *prometheus.CounterVec
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "relaywire",
				Name:      "requests_total",
				Help:      "Total number of requests sent to control and relay servers",
			},
			[]string{"caller", "operation", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "relaywire",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"caller", "operation"},
		),
		RequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "relaywire",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently awaiting a response",
			},
			[]string{"caller"},
		),
		RemoteErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "relaywire",
				Name:      "remote_errors_total",
				Help:      "Non-2xx responses by error class",
			},
			[]string{"caller", "operation", "class"},
		),
		TransportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "relaywire",
				Name:      "transport_errors_total",
				Help:      "Requests that failed before a response was received",
			},
			[]string{"caller", "operation"},
		),
	}
}

// Begin marks a request as in flight and returns the function that
// records its outcome. status is the HTTP status, or 0 on transport failure.
func (c *Collector) Begin(caller, operation string) func(status int) {
	if c == nil {
		return func(int) {}
	}
	start := time.Now()
	inFlight := c.RequestsInFlight.WithLabelValues(caller)
	inFlight.Inc()
	return func(status int) {
		inFlight.Dec()
		c.RequestDuration.WithLabelValues(caller, operation).Observe(time.Since(start).Seconds())
		if status == 0 {
			c.TransportErrors.WithLabelValues(caller, operation).Inc()
			return
		}
		c.RequestsTotal.WithLabelValues(caller, operation, StatusClass(status)).Inc()
	}
}

// RecordRemoteError counts a non-2xx response of the given class.
func (c *Collector) RecordRemoteError(caller, operation, class string) {
	if c == nil {
		return
	}
	c.RemoteErrors.WithLabelValues(caller, operation, class).Inc()
}

// StatusClass groups a status code as "2xx", "4xx" and so on.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return strconv.Itoa(status)
	}
	return strconv.Itoa(status/100) + "xx"
}
