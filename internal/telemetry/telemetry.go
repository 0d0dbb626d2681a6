// Package telemetry exposes Prometheus metrics for the capture, fan-out,
// renderer, and discovery subsystems, grounded on the teacher's
// internal/observability aggregate-Metrics-struct-of-submetrics shape
// (each submetric built by its own NewXMetrics(registry) constructor).
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates every subsystem's Prometheus collectors behind one
// registry, the way the teacher's observability.Metrics aggregates MQTT,
// BirdNET, MyAudio, etc.
type Metrics struct {
	registry *prometheus.Registry

	Capture  *CaptureMetrics
	Bus      *BusMetrics
	Client   *ClientMetrics
	Renderer *RendererMetrics
	SSDP     *SSDPMetrics
}

// NewMetrics builds a fresh registry and every submetric group. An error
// from any submetric constructor aborts the whole aggregate, mirroring the
// teacher's NewMetrics.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	capture, err := newCaptureMetrics(registry)
	if err != nil {
		return nil, err
	}
	busMetrics, err := newBusMetrics(registry)
	if err != nil {
		return nil, err
	}
	client, err := newClientMetrics(registry)
	if err != nil {
		return nil, err
	}
	rend, err := newRendererMetrics(registry)
	if err != nil {
		return nil, err
	}
	ssdpMetrics, err := newSSDPMetrics(registry)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		registry: registry,
		Capture:  capture,
		Bus:      busMetrics,
		Client:   client,
		Renderer: rend,
		SSDP:     ssdpMetrics,
	}, nil
}

// Handler returns the HTTP handler that exposes this registry's metrics in
// Prometheus text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
