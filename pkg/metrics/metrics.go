// Package metrics records pnrjson activity as Prometheus metrics.
//
// A [Collector] implements the export, cache and HTTP hook interfaces of
// package observability. Register it at startup and expose [Collector.Handler]:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	observability.SetExportHooks(m)
//	observability.SetCacheHooks(m)
//	observability.SetHTTPHooks(m)
//	router.Handle("/metrics", m.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/pnrjson/pkg/observability"
)

const namespace = "pnrjson"

// Collector holds all Prometheus metrics for pnrjson.
type Collector struct {
	// Export metrics
	ExportsTotal   *prometheus.CounterVec
	ExportDuration prometheus.Histogram
	ExportBytes    prometheus.Histogram

	// Render metrics
	RendersTotal   *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec

	// Cache metrics
	CacheOps *prometheus.CounterVec

	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates a collector whose metrics are registered with reg. A nil reg
// uses a fresh registry.
func New(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Collector{
		ExportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Total number of netlist exports",
			},
			[]string{"result"},
		),
		ExportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_duration_seconds",
				Help:      "Netlist export duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		ExportBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_bytes",
				Help:      "Size of exported netlists in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
			},
		),
		RendersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Total number of schematic renders",
			},
			[]string{"format", "result"},
		),
		RenderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Schematic render duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"format"},
		),
		CacheOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_operations_total",
				Help:      "Cache lookups and writes",
			},
			[]string{"op", "key_type"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
		gatherer: reg,
	}
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnExportStart does nothing; exports are counted on completion.
func (c *Collector) OnExportStart(context.Context, string) {}

// OnExportComplete records an export.
func (c *Collector) OnExportComplete(_ context.Context, _ string, size int, d time.Duration, err error) {
	c.ExportsTotal.WithLabelValues(result(err)).Inc()
	c.ExportDuration.Observe(d.Seconds())
	if err == nil {
		c.ExportBytes.Observe(float64(size))
	}
}

// OnRenderStart does nothing; renders are counted on completion.
func (c *Collector) OnRenderStart(context.Context, string) {}

// OnRenderComplete records a render.
func (c *Collector) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	c.RendersTotal.WithLabelValues(format, result(err)).Inc()
	c.RenderDuration.WithLabelValues(format).Observe(d.Seconds())
}

// OnCacheHit records a cache hit.
func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.CacheOps.WithLabelValues("hit", keyType).Inc()
}

// OnCacheMiss records a cache miss.
func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.CacheOps.WithLabelValues("miss", keyType).Inc()
}

// OnCacheSet records a cache write.
func (c *Collector) OnCacheSet(_ context.Context, keyType string, _ int) {
	c.CacheOps.WithLabelValues("set", keyType).Inc()
}

// OnRequest marks a request in flight.
func (c *Collector) OnRequest(context.Context, string, string) {
	c.RequestsInFlight.Inc()
}

// OnResponse records a completed request.
func (c *Collector) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	c.RequestsInFlight.Dec()
	c.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.ExportHooks = (*Collector)(nil)
	_ observability.CacheHooks  = (*Collector)(nil)
	_ observability.HTTPHooks   = (*Collector)(nil)
)
