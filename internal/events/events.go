// Package events defines the single tagged-variant message channel the
// orchestrator drains, replacing the teacher's pluggable multi-consumer
// event bus with the closed enum this program's single consumer needs.
package events

import "time"

// Kind identifies which variant of Event is populated.
type Kind int

const (
	CaptureStarted Kind = iota
	CaptureEnded
	RendererDiscovered
	RendererLost
	RendererVolumeChanged
	ClientConnected
	ClientDisconnected
	StopAll
)

func (k Kind) String() string {
	switch k {
	case CaptureStarted:
		return "CaptureStarted"
	case CaptureEnded:
		return "CaptureEnded"
	case RendererDiscovered:
		return "RendererDiscovered"
	case RendererLost:
		return "RendererLost"
	case RendererVolumeChanged:
		return "RendererVolumeChanged"
	case ClientConnected:
		return "ClientConnected"
	case ClientDisconnected:
		return "ClientDisconnected"
	case StopAll:
		return "StopAll"
	default:
		return "Unknown"
	}
}

// Event is a single orchestrator message. Only the fields relevant to Kind
// are populated; the rest are zero.
type Event struct {
	Kind      Kind
	At        time.Time
	Reason    string // CaptureEnded / RendererLost / ClientDisconnected cause
	RendererLocation string
	RendererFriendlyName string
	Volume    int // RendererVolumeChanged
	ClientAddr string
	DeviceName string // CaptureStarted
}

// Bus is a single-consumer channel of Events. Publishers never block: a
// full channel drops the event and the drop is observable via
// DroppedSinceLastCheck.
type Bus struct {
	ch      chan Event
	dropped chan struct{}
}

// NewBus creates a Bus with the given buffer size.
func NewBus(buffer int) *Bus {
	return &Bus{
		ch:      make(chan Event, buffer),
		dropped: make(chan struct{}, 1),
	}
}

// Publish enqueues ev without blocking. If the channel is full the event is
// dropped; callers that care can poll DroppedSinceLastCheck.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case b.ch <- ev:
	default:
		select {
		case b.dropped <- struct{}{}:
		default:
		}
	}
}

// Events returns the receive-only channel the orchestrator ranges over.
func (b *Bus) Events() <-chan Event {
	return b.ch
}

// DroppedSinceLastCheck reports and clears whether any event was dropped
// since the last call.
func (b *Bus) DroppedSinceLastCheck() bool {
	select {
	case <-b.dropped:
		return true
	default:
		return false
	}
}

// Close closes the underlying channel. Only the owning orchestrator should
// call this, after it has stopped ranging over Events().
func (b *Bus) Close() {
	close(b.ch)
}
