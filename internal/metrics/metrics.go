package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the enrichment pipeline.
type Metrics struct {
	Registry         *prometheus.Registry
	UpstreamRequests *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	EnrichRequests   *prometheus.CounterVec
}

// New creates a fresh registry and registers all collectors on it, so that
// several instances can coexist in tests.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wcl_upstream_requests_total",
			Help: "Calls made to Warcraft Logs by operation and result",
		}, []string{"operation", "result"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wcl_cache_lookups_total",
			Help: "Character cache lookups by result (fresh, stale, missing, error, skipped)",
		}, []string{"result"}),
		EnrichRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wcl_enrich_requests_total",
			Help: "Enrich requests by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveUpstream(operation, result string) {
	m.UpstreamRequests.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveEnrich(outcome string) {
	m.EnrichRequests.WithLabelValues(outcome).Inc()
}
