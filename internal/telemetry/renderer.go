package telemetry

import "github.com/prometheus/client_golang/prometheus"

// RendererMetrics tracks SOAP control-point activity.
type RendererMetrics struct {
	activeRenderers prometheus.Gauge
	soapCalls       *prometheus.CounterVec
	soapFaults      *prometheus.CounterVec
}

func newRendererMetrics(registry *prometheus.Registry) (*RendererMetrics, error) {
	m := &RendererMetrics{
		activeRenderers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swyh", Subsystem: "renderer", Name: "discovered",
			Help: "Number of renderers currently known to the registry.",
		}),
		soapCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swyh", Subsystem: "renderer", Name: "soap_calls_total",
			Help: "SOAP actions issued to renderers, by action.",
		}, []string{"action"}),
		soapFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swyh", Subsystem: "renderer", Name: "soap_faults_total",
			Help: "SOAP actions that returned a fault or transport error, by action.",
		}, []string{"action"}),
	}
	for _, c := range []prometheus.Collector{m.activeRenderers, m.soapCalls, m.soapFaults} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *RendererMetrics) SetDiscoveredCount(n int)   { m.activeRenderers.Set(float64(n)) }
func (m *RendererMetrics) RecordSOAPCall(action string) { m.soapCalls.WithLabelValues(action).Inc() }
func (m *RendererMetrics) RecordSOAPFault(action string) {
	m.soapFaults.WithLabelValues(action).Inc()
}
