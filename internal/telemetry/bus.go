package telemetry

import "github.com/prometheus/client_golang/prometheus"

// BusMetrics tracks the fan-out bus's per-subscriber drop behavior.
type BusMetrics struct {
	bytesPublished  prometheus.Counter
	bytesDropped    prometheus.Counter
	subscriberCount prometheus.Gauge
}

func newBusMetrics(registry *prometheus.Registry) (*BusMetrics, error) {
	m := &BusMetrics{
		bytesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swyh", Subsystem: "bus", Name: "bytes_published_total",
			Help: "Bytes published to the fan-out bus.",
		}),
		bytesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swyh", Subsystem: "bus", Name: "bytes_dropped_total",
			Help: "Bytes dropped across all subscribers because a per-subscriber ring buffer was full.",
		}),
		subscriberCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swyh", Subsystem: "bus", Name: "subscribers",
			Help: "Current number of subscribed streaming clients.",
		}),
	}
	for _, c := range []prometheus.Collector{m.bytesPublished, m.bytesDropped, m.subscriberCount} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *BusMetrics) RecordPublish(n int)        { m.bytesPublished.Add(float64(n)) }
func (m *BusMetrics) RecordDropped(n uint64)      { m.bytesDropped.Add(float64(n)) }
func (m *BusMetrics) SetSubscriberCount(n int)    { m.subscriberCount.Set(float64(n)) }
