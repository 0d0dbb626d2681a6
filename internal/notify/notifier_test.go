package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swyh-go/swyh-go/internal/events"
)

type recordingSink struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingSink) deliver(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recordingSink) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func TestNotifiable_CaptureEndedAndRendererLostAreNotifiable(t *testing.T) {
	msg, ok := notifiable(events.Event{Kind: events.CaptureEnded, Reason: "device lost"})
	require.True(t, ok)
	assert.Contains(t, msg, "device lost")

	msg, ok = notifiable(events.Event{Kind: events.RendererLost, RendererFriendlyName: "Office Speaker"})
	require.True(t, ok)
	assert.Contains(t, msg, "Office Speaker")
}

func TestNotifiable_OtherKindsAreNotNotifiable(t *testing.T) {
	for _, k := range []events.Kind{
		events.CaptureStarted,
		events.RendererDiscovered,
		events.RendererVolumeChanged,
		events.ClientConnected,
		events.ClientDisconnected,
		events.StopAll,
	} {
		_, ok := notifiable(events.Event{Kind: k})
		assert.False(t, ok, "kind %s should not be notifiable", k)
	}
}

func TestNotifier_HandleFansOutToEverySink(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	n := NewNotifier(nil, a, b)

	n.Handle(context.Background(), events.Event{Kind: events.CaptureEnded, Reason: "device lost"})

	require.Eventually(t, func() bool {
		return len(a.all()) == 1 && len(b.all()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestNotifier_HandleIgnoresNonNotifiableKinds(t *testing.T) {
	a := &recordingSink{}
	n := NewNotifier(nil, a)

	n.Handle(context.Background(), events.Event{Kind: events.ClientConnected})

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, a.all())
}

func TestNewNotifier_FiltersNilSinks(t *testing.T) {
	n := NewNotifier(nil, nil, &recordingSink{})
	assert.Len(t, n.sinks, 1)
}

func TestWrapMQTT_NilPointerYieldsNilInterface(t *testing.T) {
	var s *MQTTSink
	wrapped := WrapMQTT(s)
	assert.Nil(t, wrapped)
}

func TestWrapShoutrrr_NilPointerYieldsNilInterface(t *testing.T) {
	var s *ShoutrrrSink
	wrapped := WrapShoutrrr(s)
	assert.Nil(t, wrapped)
}

func TestWrapMQTT_NonNilPointerIsUsable(t *testing.T) {
	s := NewMQTTSink("tcp://127.0.0.1:1883", "swyh-go/events", nil)
	wrapped := WrapMQTT(s)
	require.NotNil(t, wrapped)
}
