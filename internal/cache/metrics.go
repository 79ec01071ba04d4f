package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	lookups       *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "probagno",
			Subsystem: "query_cache",
			Name:      "lookups_total",
			Help:      "Query cache lookups by bucket and result.",
		}, []string{"bucket", "result"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "probagno",
			Subsystem: "query_cache",
			Name:      "invalidations_total",
			Help:      "Query cache invalidations by bucket.",
		}, []string{"bucket"}),
	}
	if reg != nil {
		reg.MustRegister(m.lookups, m.invalidations)
	}
	return m
}

func (m *metrics) lookup(b Bucket, result string) {
	m.lookups.WithLabelValues(string(b), result).Inc()
}
