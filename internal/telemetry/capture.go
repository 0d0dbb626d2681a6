package telemetry

import "github.com/prometheus/client_golang/prometheus"

// CaptureMetrics tracks the capture and silence-injection subsystems.
// Grounded on the teacher's internal/observability/metrics.NewMyAudioMetrics
// (CounterVec-per-outcome, constructor returns (*T, error) after Register).
type CaptureMetrics struct {
	buffersDropped  prometheus.Counter
	reopenAttempts  prometheus.Counter
	reopenFailures  prometheus.Counter
	injectedBuffers *prometheus.CounterVec
	rmsLeft         prometheus.Gauge
	rmsRight        prometheus.Gauge
}

func newCaptureMetrics(registry *prometheus.Registry) (*CaptureMetrics, error) {
	m := &CaptureMetrics{
		buffersDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swyh",
			Subsystem: "capture",
			Name:      "buffers_dropped_total",
			Help:      "Capture buffers dropped because the normalize/fan-out path was not keeping up.",
		}),
		reopenAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swyh", Subsystem: "capture", Name: "reopen_attempts_total",
			Help: "Device reopen attempts after an unexpected stop.",
		}),
		reopenFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swyh", Subsystem: "capture", Name: "reopen_failures_total",
			Help: "Device reopen attempts that failed and surfaced CaptureEnded.",
		}),
		injectedBuffers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swyh", Subsystem: "capture", Name: "injected_buffers_total",
			Help: "Silence/dithered-noise buffers injected while capture was idle, by mode.",
		}, []string{"mode"}),
		rmsLeft: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swyh", Subsystem: "capture", Name: "rms_left",
			Help: "Most recent left-channel RMS level (0.0-1.0 of full scale).",
		}),
		rmsRight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swyh", Subsystem: "capture", Name: "rms_right",
			Help: "Most recent right-channel RMS level (0.0-1.0 of full scale).",
		}),
	}
	for _, c := range []prometheus.Collector{m.buffersDropped, m.reopenAttempts, m.reopenFailures, m.injectedBuffers, m.rmsLeft, m.rmsRight} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *CaptureMetrics) RecordBufferDropped() { m.buffersDropped.Inc() }
func (m *CaptureMetrics) RecordReopenAttempt()  { m.reopenAttempts.Inc() }
func (m *CaptureMetrics) RecordReopenFailure()  { m.reopenFailures.Inc() }
func (m *CaptureMetrics) RecordInjectedBuffer(mode string) { m.injectedBuffers.WithLabelValues(mode).Inc() }
func (m *CaptureMetrics) SetRMS(left, right float64) {
	m.rmsLeft.Set(left)
	m.rmsRight.Set(right)
}
