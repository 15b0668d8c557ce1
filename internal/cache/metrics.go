package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		hits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "streamgate_cache_hits_total",
			Help: "Total number of cache lookups served from the store.",
		}),
		misses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "streamgate_cache_misses_total",
			Help: "Total number of cache lookups that fell through to the source.",
		}),
	}
}

func (m *Metrics) RecordHit() {
	m.hits.Inc()
}

func (m *Metrics) RecordMiss() {
	m.misses.Inc()
}
