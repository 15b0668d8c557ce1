package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsAdmitted  *prometheus.CounterVec
	RequestsRejected  *prometheus.CounterVec
	AllowlistBypasses prometheus.Counter
	TrackedCounters   prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		RequestsAdmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streamgate_ratelimit_requests_admitted_total",
			Help: "Total number of requests admitted, by route class",
		}, []string{"class"}),
		RequestsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streamgate_ratelimit_requests_rejected_total",
			Help: "Total number of requests rejected over quota, by route class",
		}, []string{"class"}),
		AllowlistBypasses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "streamgate_ratelimit_allowlist_bypasses_total",
			Help: "Total number of requests that bypassed admission via allow-lists",
		}),
		TrackedCounters: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "streamgate_ratelimit_tracked_counters",
			Help: "Current number of per-client window counters held in memory",
		}),
	}
}

func (m *Metrics) RecordAdmitted(class string) {
	m.RequestsAdmitted.WithLabelValues(class).Inc()
}

func (m *Metrics) RecordRejected(class string) {
	m.RequestsRejected.WithLabelValues(class).Inc()
}

func (m *Metrics) RecordAllowlistBypass() {
	m.AllowlistBypasses.Inc()
}

func (m *Metrics) SetTrackedCounters(n int) {
	m.TrackedCounters.Set(float64(n))
}
