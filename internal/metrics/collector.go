// Package metrics exposes Prometheus metrics for the batching proxy.
//
// The Collector implements scheduler.Observer, so the scheduler reports job
// admission, batch dispatch and completion directly; the gin middleware
// reports HTTP request counts and latencies. Every collector owns its own
// registry so several proxies (or tests) can coexist in one process.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/concave-dev/sluice/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the proxy's Prometheus instruments.
type Collector struct {
	registry *prometheus.Registry

	// Job metrics
	jobsAdmitted  prometheus.Counter
	jobsRejected  prometheus.Counter
	jobsWithdrawn prometheus.Counter
	jobWait       prometheus.Histogram
	queueDepth    prometheus.Gauge

	// Batch metrics
	batchesTotal    *prometheus.CounterVec
	batchSize       prometheus.Histogram
	batchMaxLength  prometheus.Histogram
	backendDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var _ scheduler.Observer = (*Collector)(nil)

// NewCollector creates a collector registering its metrics under namespace,
// together with the standard Go runtime and process collectors.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	c := &Collector{registry: reg}

	c.jobsAdmitted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_admitted_total",
		Help:      "Total number of jobs admitted to the pending queue",
	})

	c.jobsRejected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_rejected_total",
		Help:      "Total number of jobs rejected because the pending queue was full",
	})

	c.jobsWithdrawn = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_withdrawn_total",
		Help:      "Total number of jobs withdrawn before dispatch",
	})

	c.jobWait = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_queue_wait_seconds",
		Help:      "Time from admission to dispatch",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	c.queueDepth = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Number of pending jobs",
	})

	c.batchesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_total",
		Help:      "Total number of batches sent to the backend",
	}, []string{"reason", "status"})

	c.batchSize = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_size",
		Help:      "Number of jobs per batch",
		Buckets:   []float64{1, 2, 3, 4, 5},
	})

	c.batchMaxLength = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_max_length",
		Help:      "Longest string in each batch, in code points",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	})

	c.backendDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_call_duration_seconds",
		Help:      "Backend call duration in seconds",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"status"})

	c.inFlight = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backend_in_flight",
		Help:      "1 while a batch is being served by the backend",
	})

	c.httpRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	c.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served HTTP request. path should be the
// route template, not the raw URL, to keep label cardinality bounded.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// JobAdmitted implements scheduler.Observer.
func (c *Collector) JobAdmitted(*scheduler.Job) {
	c.jobsAdmitted.Inc()
}

// JobRejected implements scheduler.Observer.
func (c *Collector) JobRejected(error) {
	c.jobsRejected.Inc()
}

// JobWithdrawn implements scheduler.Observer.
func (c *Collector) JobWithdrawn(*scheduler.Job) {
	c.jobsWithdrawn.Inc()
}

// BatchDispatched implements scheduler.Observer.
func (c *Collector) BatchDispatched(b *scheduler.Batch) {
	c.inFlight.Set(1)
	c.batchSize.Observe(float64(len(b.Jobs)))
	c.batchMaxLength.Observe(float64(b.MaxLength))
	for _, j := range b.Jobs {
		c.jobWait.Observe(b.DispatchedAt.Sub(j.SubmittedAt).Seconds())
	}
}

// BatchCompleted implements scheduler.Observer.
func (c *Collector) BatchCompleted(b *scheduler.Batch, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.inFlight.Set(0)
	c.batchesTotal.WithLabelValues(string(b.Reason), status).Inc()
	c.backendDuration.WithLabelValues(status).Observe(b.ServiceTime().Seconds())
}

// QueueDepth implements scheduler.Observer.
func (c *Collector) QueueDepth(depth int) {
	c.queueDepth.Set(float64(depth))
}
