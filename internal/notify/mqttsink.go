// Package notify delivers optional push notifications when events the
// operator cares about fire: RendererUnreachable, CaptureEnded, and similar.
// Both sinks are best-effort: a notify failure is logged, never fatal, and
// never blocks the orchestrator's event-drain loop (spec §9's
// publish-on-event idiom).
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	swyherrors "github.com/swyh-go/swyh-go/internal/errors"
)

// MQTTSink publishes event notifications to a broker topic. Grounded on
// internal/mqtt/client.go's (teacher) connect/reconnect-with-backoff shape,
// trimmed to the single fire-and-forget Publish this program needs instead
// of the teacher's full Client interface.
type MQTTSink struct {
	broker string
	topic  string
	log    *slog.Logger

	mu     sync.Mutex
	client mqtt.Client

	reconnectStop chan struct{}
}

// NewMQTTSink creates a sink bound to broker/topic. Connect must be called
// before Notify will deliver anything; Notify calls before a successful
// Connect are logged and dropped.
func NewMQTTSink(broker, topic string, log *slog.Logger) *MQTTSink {
	if log == nil {
		log = slog.Default()
	}
	return &MQTTSink{
		broker:        broker,
		topic:         topic,
		log:           log.With("component", "notify_mqtt"),
		reconnectStop: make(chan struct{}),
	}
}

// Connect resolves the broker hostname and establishes the MQTT session,
// enabling the library's own auto-reconnect for transient drops.
func (s *MQTTSink) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resolveBrokerHostname(); err != nil {
		return swyherrors.New(err).Component("notify").Category(swyherrors.CategoryNotify).
			Context("broker", s.broker).Build()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.broker)
	opts.SetClientID("swyh-go")
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		s.log.Info("connected to mqtt broker", "broker", s.broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.log.Warn("mqtt connection lost, library will auto-reconnect", "error", err)
	})

	s.client = mqtt.NewClient(opts)
	token := s.client.Connect()
	if !token.WaitTimeout(30 * time.Second) {
		return swyherrors.Newf("mqtt connect timeout").Component("notify").Category(swyherrors.CategoryNotify).Build()
	}
	return token.Error()
}

func (s *MQTTSink) resolveBrokerHostname() error {
	u, err := url.Parse(s.broker)
	if err != nil {
		return fmt.Errorf("invalid broker url: %w", err)
	}
	if _, err := net.LookupHost(u.Hostname()); err != nil {
		return fmt.Errorf("resolve %s: %w", u.Hostname(), err)
	}
	return nil
}

// Notify publishes message to the configured topic. Failure is logged and
// swallowed, never returned to the caller, per spec §9's
// notify-failure-is-logged-ignored policy.
func (s *MQTTSink) Notify(ctx context.Context, message string) {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()

	if client == nil || !client.IsConnected() {
		s.log.Debug("mqtt sink not connected, dropping notification", "message", message)
		return
	}

	token := client.Publish(s.topic, 0, false, message)
	if !token.WaitTimeout(10 * time.Second) {
		s.log.Warn("mqtt publish timeout", "topic", s.topic)
		return
	}
	if err := token.Error(); err != nil {
		s.log.Warn("mqtt publish failed", "topic", s.topic, "error", err)
	}
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
	select {
	case <-s.reconnectStop:
	default:
		close(s.reconnectStop)
	}
}
