package telemetry

import "github.com/prometheus/client_golang/prometheus"

// ClientMetrics tracks StreamingClient connections on the HTTP server.
type ClientMetrics struct {
	activeClients prometheus.Gauge
	connections   *prometheus.CounterVec
	writeErrors   prometheus.Counter
}

func newClientMetrics(registry *prometheus.Registry) (*ClientMetrics, error) {
	m := &ClientMetrics{
		activeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swyh", Subsystem: "client", Name: "active",
			Help: "Number of currently connected StreamingClients.",
		}),
		connections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swyh", Subsystem: "client", Name: "connections_total",
			Help: "StreamingClient connections accepted, by stream format.",
		}, []string{"format"}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swyh", Subsystem: "client", Name: "write_errors_total",
			Help: "Client socket write failures that tore down a StreamingClient.",
		}),
	}
	for _, c := range []prometheus.Collector{m.activeClients, m.connections, m.writeErrors} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *ClientMetrics) RecordConnected(format string) {
	m.connections.WithLabelValues(format).Inc()
	m.activeClients.Inc()
}
func (m *ClientMetrics) RecordDisconnected() { m.activeClients.Dec() }
func (m *ClientMetrics) RecordWriteError()   { m.writeErrors.Inc() }
