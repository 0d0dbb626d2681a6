package telemetry

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_InitializesEverySubmetricGroup(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	assert.NotNil(t, m.Capture)
	assert.NotNil(t, m.Bus)
	assert.NotNil(t, m.Client)
	assert.NotNil(t, m.Renderer)
	assert.NotNil(t, m.SSDP)
}

func TestCaptureMetrics_RecordBufferDropped(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.Capture.RecordBufferDropped()
	m.Capture.RecordBufferDropped()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Capture.buffersDropped))
}

func TestClientMetrics_ConnectDisconnectTracksActiveGauge(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.Client.RecordConnected("flac")
	m.Client.RecordConnected("wav")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Client.activeClients))

	m.Client.RecordDisconnected()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Client.activeClients))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Client.connections.WithLabelValues("flac")))
}

func TestRendererMetrics_SOAPCallAndFaultCounters(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.Renderer.RecordSOAPCall("Play")
	m.Renderer.RecordSOAPFault("Play")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Renderer.soapCalls.WithLabelValues("Play")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Renderer.soapFaults.WithLabelValues("Play")))
}

func TestHandler_ServesPrometheusExpositionFormat(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	m.Capture.RecordBufferDropped()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "swyh_capture_buffers_dropped_total")
}
