package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMQTTSink_ResolveBrokerHostnameRejectsUnresolvable(t *testing.T) {
	s := NewMQTTSink("tcp://this-host-does-not-resolve.invalid:1883", "swyh-go/events", nil)
	err := s.resolveBrokerHostname()
	require.Error(t, err)
}

func TestMQTTSink_ResolveBrokerHostnameAcceptsLoopback(t *testing.T) {
	s := NewMQTTSink("tcp://127.0.0.1:1883", "swyh-go/events", nil)
	err := s.resolveBrokerHostname()
	require.NoError(t, err)
}

func TestMQTTSink_ResolveBrokerHostnameRejectsInvalidURL(t *testing.T) {
	s := NewMQTTSink("://bad-url", "swyh-go/events", nil)
	err := s.resolveBrokerHostname()
	require.Error(t, err)
}

func TestMQTTSink_NotifyBeforeConnectIsNoop(t *testing.T) {
	s := NewMQTTSink("tcp://127.0.0.1:1883", "swyh-go/events", nil)
	// No Connect call, so s.client is nil; Notify must not panic or block.
	s.Notify(context.Background(), "swyh-go: capture ended (device lost)")
}

func TestMQTTSink_CloseBeforeConnectIsSafe(t *testing.T) {
	s := NewMQTTSink("tcp://127.0.0.1:1883", "swyh-go/events", nil)
	assert.NotPanics(t, func() { s.Close() })
}

func TestMQTTSink_CloseIsIdempotent(t *testing.T) {
	s := NewMQTTSink("tcp://127.0.0.1:1883", "swyh-go/events", nil)
	s.Close()
	assert.NotPanics(t, func() { s.Close() })
}
