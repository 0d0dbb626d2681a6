package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/swyh-go/swyh-go/internal/events"
)

// Sink is anything that can deliver a rendered notification string.
type Sink interface {
	deliver(ctx context.Context, message string)
}

type mqttAdapter struct{ sink *MQTTSink }

func (a mqttAdapter) deliver(ctx context.Context, message string) { a.sink.Notify(ctx, message) }

type shoutrrrAdapter struct{ sink *ShoutrrrSink }

func (a shoutrrrAdapter) deliver(_ context.Context, message string) { a.sink.Notify(message) }

// Notifier formats selected orchestrator events into human-readable
// messages and fans them out to every configured Sink. It does not consume
// the orchestrator's events.Bus directly (that channel has exactly one
// consumer, the orchestrator); callers forward the specific events worth
// notifying on via Handle.
type Notifier struct {
	sinks []Sink
	log   *slog.Logger
}

// NewNotifier builds a Notifier over the given sinks (nil sinks in the
// slice are skipped).
func NewNotifier(log *slog.Logger, sinks ...Sink) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	filtered := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return &Notifier{sinks: filtered, log: log.With("component", "notifier")}
}

// notifiable renders the event kinds worth pushing to the operator, per
// spec §9: "RendererUnreachable, CaptureEnded, and similar."
func notifiable(ev events.Event) (string, bool) {
	switch ev.Kind {
	case events.CaptureEnded:
		return fmt.Sprintf("swyh-go: capture ended (%s)", ev.Reason), true
	case events.RendererLost:
		return fmt.Sprintf("swyh-go: renderer unreachable: %s", ev.RendererFriendlyName), true
	default:
		return "", false
	}
}

// Handle formats ev, if it's a notifiable kind, and delivers it to every
// sink. Non-notifiable kinds are silently ignored.
func (n *Notifier) Handle(ctx context.Context, ev events.Event) {
	message, ok := notifiable(ev)
	if !ok {
		return
	}
	for _, sink := range n.sinks {
		sink := sink
		go sink.deliver(ctx, message)
	}
}

// WrapMQTT adapts an *MQTTSink into a Sink for NewNotifier.
func WrapMQTT(s *MQTTSink) Sink {
	if s == nil {
		return nil
	}
	return mqttAdapter{sink: s}
}

// WrapShoutrrr adapts a *ShoutrrrSink into a Sink for NewNotifier.
func WrapShoutrrr(s *ShoutrrrSink) Sink {
	if s == nil {
		return nil
	}
	return shoutrrrAdapter{sink: s}
}
