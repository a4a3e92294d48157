package catalog

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts cache traffic per listing kind and media type
type Metrics struct {
	Hits      *prometheus.CounterVec
	Misses    *prometheus.CounterVec
	Failures  *prometheus.CounterVec
	Discarded *prometheus.CounterVec
}

// NewMetrics creates the catalog counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	labels := []string{"kind", "type"}
	m := &Metrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xcview",
			Subsystem: "catalog",
			Name:      "cache_hits_total",
			Help:      "Listings served from the cache.",
		}, labels),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xcview",
			Subsystem: "catalog",
			Name:      "cache_misses_total",
			Help:      "Listings fetched from the remote source.",
		}, labels),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xcview",
			Subsystem: "catalog",
			Name:      "fetch_failures_total",
			Help:      "Remote fetches that failed.",
		}, labels),
		Discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xcview",
			Subsystem: "catalog",
			Name:      "stale_results_total",
			Help:      "Fetch results dropped because the active profile changed.",
		}, labels),
	}
	if reg != nil {
		reg.MustRegister(m.Hits, m.Misses, m.Failures, m.Discarded)
	}
	return m
}
