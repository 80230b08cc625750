package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "dailyart"

// Generation outcomes used as the "result" label.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Cache events used as the "event" label.
const (
	CacheEventHit  = "hit"
	CacheEventMiss = "miss"
	CacheEventSet  = "set"
)

// Stats exports pipeline, cache and HTTP events as Prometheus metrics on
// its own registry. It implements GenerationHooks, CacheHooks and HTTPHooks.
type Stats struct {
	registry *prometheus.Registry

	generations        *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	passDraws          *prometheus.CounterVec
	passDuration       *prometheus.HistogramVec
	cacheEvents        *prometheus.CounterVec
	cacheBytes         *prometheus.CounterVec
	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// NewStats creates the collectors and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func NewStats() *Stats {
	s := &Stats{
		registry: prometheus.NewRegistry(),

		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "generations_total",
			Help:      "Images rendered, by style and result.",
		}, []string{"style", "result"}),

		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "generation_duration_seconds",
			Help:      "Time to compose and encode one image.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"style"}),

		passDraws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "pass_draws_total",
			Help:      "Random draws consumed, by drawing pass.",
		}, []string{"pass"}),

		passDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "pass_duration_seconds",
			Help:      "Time spent in one drawing pass.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"pass"}),

		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache hits, misses and writes, by key type.",
		}, []string{"key_type", "event"}),

		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache, by key type.",
		}, []string{"key_type"}),

		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "responses_total",
			Help:      "HTTP responses, by method and status code.",
		}, []string{"method", "status"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	s.registry.MustRegister(
		s.generations,
		s.generationDuration,
		s.passDraws,
		s.passDuration,
		s.cacheEvents,
		s.cacheBytes,
		s.requests,
		s.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return s
}

// Registry returns the registry holding every collector.
func (s *Stats) Registry() *prometheus.Registry { return s.registry }

// Handler serves the registry in the Prometheus exposition format.
func (s *Stats) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

func (s *Stats) OnGenerateStart(context.Context, string, string) {}

func (s *Stats) OnPassComplete(_ context.Context, _, pass string, draws int, d time.Duration) {
	s.passDraws.WithLabelValues(pass).Add(float64(draws))
	s.passDuration.WithLabelValues(pass).Observe(d.Seconds())
}

func (s *Stats) OnGenerateComplete(_ context.Context, _, style string, d time.Duration, err error) {
	if err != nil {
		s.generations.WithLabelValues(style, ResultError).Inc()
		return
	}
	s.generations.WithLabelValues(style, ResultOK).Inc()
	s.generationDuration.WithLabelValues(style).Observe(d.Seconds())
}

func (s *Stats) OnCacheHit(_ context.Context, keyType string) {
	s.cacheEvents.WithLabelValues(keyType, CacheEventHit).Inc()
}

func (s *Stats) OnCacheMiss(_ context.Context, keyType string) {
	s.cacheEvents.WithLabelValues(keyType, CacheEventMiss).Inc()
}

func (s *Stats) OnCacheSet(_ context.Context, keyType string, size int) {
	s.cacheEvents.WithLabelValues(keyType, CacheEventSet).Inc()
	s.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (s *Stats) OnRequest(context.Context, string, string) {}

func (s *Stats) OnResponse(_ context.Context, method, _ string, status int, d time.Duration) {
	s.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	s.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// Register installs s as the generation, cache and HTTP hooks.
func (s *Stats) Register() {
	SetGenerationHooks(s)
	SetCacheHooks(s)
	SetHTTPHooks(s)
}

var (
	_ GenerationHooks = (*Stats)(nil)
	_ CacheHooks      = (*Stats)(nil)
	_ HTTPHooks       = (*Stats)(nil)
)
