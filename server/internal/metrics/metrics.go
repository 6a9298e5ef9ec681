// Package metrics exposes the sentinel's ingestion and aggregation counters
// in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swarmreport/swarmreport/server/internal/freshness"
	"github.com/swarmreport/swarmreport/server/internal/ingress"
	"github.com/swarmreport/swarmreport/server/internal/view"
)

const namespace = "swarmreport"

// Metrics holds every sentinel collector on a private registry. It satisfies
// store.Observer and can be hooked to ingress.Queue.OnDrop.
type Metrics struct {
	reg *prometheus.Registry

	received  prometheus.Counter
	rejected  prometheus.Counter
	dropped   prometheus.Counter
	upserts   prometheus.Counter
	evictions prometheus.Counter
	reporters prometheus.Gauge
}

// New registers all collectors. summary, when non-nil, is consulted on every
// scrape to export per-freshness reporter counts.
func New(summary func() view.Summary) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_received_total",
			Help:      "Total number of reports accepted by the gRPC receiver",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_rejected_total",
			Help:      "Total number of reports rejected as structurally invalid",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingress_dropped_total",
			Help:      "Total number of queued reports discarded because the ingress queue was full",
		}),
		upserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upserts_total",
			Help:      "Total number of reports applied to the aggregate state",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Total number of reporters evicted after going silent",
		}),
		reporters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reporters",
			Help:      "Number of reporters currently held",
		}),
	}

	m.reg.MustRegister(
		m.received, m.rejected, m.dropped, m.upserts, m.evictions, m.reporters,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if summary != nil {
		m.reg.MustRegister(&statusCollector{summary: summary})
	}
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Received counts one accepted report.
func (m *Metrics) Received() { m.received.Inc() }

// Rejected counts one rejected report.
func (m *Metrics) Rejected() { m.rejected.Inc() }

// Dropped counts one report discarded by the ingress queue.
func (m *Metrics) Dropped(ingress.Item) { m.dropped.Inc() }

// Upserted implements store.Observer.
func (m *Metrics) Upserted(n int) { m.upserts.Add(float64(n)) }

// Evicted implements store.Observer.
func (m *Metrics) Evicted(n int) { m.evictions.Add(float64(n)) }

// Reporters implements store.Observer.
func (m *Metrics) Reporters(n int) { m.reporters.Set(float64(n)) }

var statusDesc = prometheus.NewDesc(
	prometheus.BuildFQName(namespace, "", "reporters_by_status"),
	"Number of reporters per freshness class at scrape time",
	[]string{"status"}, nil,
)

// statusCollector classifies reporters at scrape time so the exported counts
// match what the API and TUI show.
type statusCollector struct {
	summary func() view.Summary
}

func (c *statusCollector) Describe(ch chan<- *prometheus.Desc) { ch <- statusDesc }

func (c *statusCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.summary()
	for _, class := range freshness.Classes() {
		ch <- prometheus.MustNewConstMetric(statusDesc, prometheus.GaugeValue, float64(s.Count(class)), class.String())
	}
}
