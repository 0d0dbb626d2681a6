package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SSDPMetrics tracks M-SEARCH discovery pass latency and yield.
type SSDPMetrics struct {
	passDuration    prometheus.Histogram
	locationsFound  prometheus.Counter
	searchFailures  prometheus.Counter
}

func newSSDPMetrics(registry *prometheus.Registry) (*SSDPMetrics, error) {
	m := &SSDPMetrics{
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "swyh", Subsystem: "ssdp", Name: "pass_duration_seconds",
			Help:    "Wall-clock duration of one M-SEARCH collection pass.",
			Buckets: prometheus.DefBuckets,
		}),
		locationsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swyh", Subsystem: "ssdp", Name: "locations_found_total",
			Help: "Unique new Location URLs found across all discovery passes.",
		}),
		searchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swyh", Subsystem: "ssdp", Name: "search_failures_total",
			Help: "M-SEARCH passes that returned an error.",
		}),
	}
	for _, c := range []prometheus.Collector{m.passDuration, m.locationsFound, m.searchFailures} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *SSDPMetrics) RecordPass(d time.Duration, newLocations int) {
	m.passDuration.Observe(d.Seconds())
	m.locationsFound.Add(float64(newLocations))
}

func (m *SSDPMetrics) RecordFailure() { m.searchFailures.Inc() }
