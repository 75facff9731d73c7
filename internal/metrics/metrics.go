// Package metrics exports Prometheus collectors for HTTP traffic and asset storage.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aaxiero"

// StoreObserver exports asset store metrics. It satisfies storage.Observer.
type StoreObserver struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
	bytes    *prometheus.CounterVec
}

// NewStoreObserver registers put/delete latency, failure and byte counters.
func NewStoreObserver(reg prometheus.Registerer) (*StoreObserver, error) {
	o := &StoreObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "asset_store",
			Name:      "operation_duration_seconds",
			Help:      "Latency of asset store operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "asset_store",
			Name:      "operation_errors_total",
			Help:      "Count of failed asset store operations.",
		}, []string{"backend", "operation"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "asset_store",
			Name:      "uploaded_bytes_total",
			Help:      "Cumulative payload size successfully stored.",
		}, []string{"backend"}),
	}
	var err error
	if o.duration, err = register(reg, o.duration); err != nil {
		return nil, err
	}
	if o.failures, err = register(reg, o.failures); err != nil {
		return nil, err
	}
	if o.bytes, err = register(reg, o.bytes); err != nil {
		return nil, err
	}
	return o, nil
}

// RecordPut tracks upload duration, size and failures.
func (o *StoreObserver) RecordPut(backend string, duration time.Duration, sizeBytes int64, err error) {
	o.duration.WithLabelValues(backend, "put").Observe(duration.Seconds())
	if err != nil {
		o.failures.WithLabelValues(backend, "put").Inc()
		return
	}
	o.bytes.WithLabelValues(backend).Add(float64(sizeBytes))
}

func (o *StoreObserver) RecordDelete(backend string, duration time.Duration, err error) {
	o.duration.WithLabelValues(backend, "delete").Observe(duration.Seconds())
	if err != nil {
		o.failures.WithLabelValues(backend, "delete").Inc()
	}
}

// HTTPObserver exports request counts and latency per route pattern.
type HTTPObserver struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPObserver registers the HTTP collectors.
func NewHTTPObserver(reg prometheus.Registerer) (*HTTPObserver, error) {
	o := &HTTPObserver{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of handled HTTP requests.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of handled HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	var err error
	if o.requests, err = register(reg, o.requests); err != nil {
		return nil, err
	}
	if o.duration, err = register(reg, o.duration); err != nil {
		return nil, err
	}
	return o, nil
}

// Observe records one finished request.
func (o *HTTPObserver) Observe(method, route string, status int, duration time.Duration) {
	if o == nil {
		return
	}
	o.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	o.duration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// register adds c to reg. When an identical collector is already registered
// that one is returned, so constructing an observer twice shares its series.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}
