package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every instrument under one private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpAttempts *prometheus.CounterVec
	tokenWait    *prometheus.HistogramVec
	pollCycles   *prometheus.CounterVec
	pollDuration *prometheus.HistogramVec
	changes      *prometheus.CounterVec
	stateAge     *prometheus.GaugeVec

	streamClients prometheus.Gauge
	writerBatch   prometheus.Histogram
}

// New builds a Metrics with all instruments registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "t212",
			Name:      "http_attempts_total",
			Help:      "HTTP attempts by endpoint and status code. Status 0 is a transport failure.",
		}, []string{"endpoint", "status"}),

		tokenWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "t212",
			Name:      "token_wait_seconds",
			Help:      "Time spent waiting for a rate limit slot before each attempt.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"endpoint"}),

		pollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "t212",
			Name:      "poll_cycles_total",
			Help:      "Completed poll cycles by resource and outcome.",
		}, []string{"resource", "outcome"}),

		pollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "t212",
			Name:      "poll_duration_seconds",
			Help:      "Duration of one fetch-diff-publish cycle.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),

		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "t212",
			Name:      "changes_total",
			Help:      "Change events emitted by resource and kind.",
		}, []string{"resource", "kind"}),

		stateAge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "t212",
			Name:      "state_age_seconds",
			Help:      "Seconds since the resource's last good snapshot.",
		}, []string{"resource"}),

		streamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "t212",
			Name:      "stream_clients",
			Help:      "Connected stream subscribers.",
		}),

		writerBatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "t212",
			Name:      "writer_batch_size",
			Help:      "Rows per database flush.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	m.registry.MustRegister(
		m.httpAttempts,
		m.tokenWait,
		m.pollCycles,
		m.pollDuration,
		m.changes,
		m.stateAge,
		m.streamClients,
		m.writerBatch,
		collectors.NewGoCollector(),
	)
	return m
}

// CountHTTPAttempt records one HTTP attempt against an endpoint budget.
// Status 0 means the request never produced a response.
func (m *Metrics) CountHTTPAttempt(endpoint string, status int) {
	if m == nil {
		return
	}
	m.httpAttempts.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

// ObserveTokenWait records how long an attempt waited for its rate
// limit slot.
func (m *Metrics) ObserveTokenWait(endpoint string, d time.Duration) {
	if m == nil {
		return
	}
	m.tokenWait.WithLabelValues(endpoint).Observe(d.Seconds())
}

// CountPollCycle records one completed poll cycle.
func (m *Metrics) CountPollCycle(resource string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.pollCycles.WithLabelValues(resource, outcome).Inc()
}

// ObservePollDuration records the wall time of one poll cycle.
func (m *Metrics) ObservePollDuration(resource string, d time.Duration) {
	if m == nil {
		return
	}
	m.pollDuration.WithLabelValues(resource).Observe(d.Seconds())
}

// CountChange records one emitted change event.
func (m *Metrics) CountChange(resource, kind string) {
	if m == nil {
		return
	}
	m.changes.WithLabelValues(resource, kind).Inc()
}

// SetStateAge publishes the age of a resource's last good snapshot.
func (m *Metrics) SetStateAge(resource string, age time.Duration) {
	if m == nil {
		return
	}
	m.stateAge.WithLabelValues(resource).Set(age.Seconds())
}

// SetStreamClients publishes the connected subscriber count.
func (m *Metrics) SetStreamClients(n int) {
	if m == nil {
		return
	}
	m.streamClients.Set(float64(n))
}

// ObserveWriterBatch records the row count of one database flush.
func (m *Metrics) ObserveWriterBatch(n int) {
	if m == nil {
		return
	}
	m.writerBatch.Observe(float64(n))
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
