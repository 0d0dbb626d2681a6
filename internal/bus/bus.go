// Package bus fans normalized PCM bytes out to every subscribed streaming
// client, whose own encoder runs after it reads. Each subscriber gets its own
// bounded ring buffer; a slow client never backs up the others or the capture
// pump feeding them.
package bus

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/smallnest/ringbuffer"

	"github.com/swyh-go/swyh-go/internal/telemetry"
)

// DefaultSubscriberCapacity is the per-subscriber ring buffer size: ~2
// seconds of 16-bit stereo PCM at 48kHz, enough to absorb scheduling
// jitter on a slow client before drop-on-overflow kicks in.
const DefaultSubscriberCapacity = 48000 * 2 * 2 * 2

// Subscription is one fan-out subscriber's handle. It satisfies io.Reader
// so an HTTP handler can pass it straight to io.Copy.
type Subscription struct {
	id      uint64
	ring    *ringbuffer.RingBuffer
	dropped atomic.Uint64
	closed  atomic.Bool
}

// Read blocks until at least one byte is available or the subscription is
// closed, in which case it returns io.EOF.
func (s *Subscription) Read(p []byte) (int, error) {
	n, err := s.ring.Read(p)
	if err != nil && s.closed.Load() {
		return n, io.EOF
	}
	return n, err
}

// Dropped returns the number of bytes dropped for this subscriber because
// its ring buffer was full when the bus tried to publish.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// ID is a monotonically increasing identifier assigned at Subscribe time.
func (s *Subscription) ID() uint64 { return s.id }

// Bus is the fan-out point between the single upstream producer of
// normalized PCM and the per-client Encoders.
type Bus struct {
	mu       sync.RWMutex
	subs     map[uint64]*Subscription
	nextID   atomic.Uint64
	capacity int
	metrics  *telemetry.BusMetrics
}

// SetMetrics attaches optional Prometheus counters. A Bus with no metrics
// attached records nothing; calling SetMetrics(nil) (the default) keeps that
// behavior.
func (b *Bus) SetMetrics(m *telemetry.BusMetrics) { b.metrics = m }

// New creates a Bus whose subscribers each get a ring buffer of capacity
// bytes.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultSubscriberCapacity
	}
	return &Bus{
		subs:     make(map[uint64]*Subscription),
		capacity: capacity,
	}
}

// Subscribe registers a new subscriber and returns its handle.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		id:   b.nextID.Add(1),
		ring: ringbuffer.New(b.capacity).SetBlocking(true),
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	count := len(b.subs)
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.SetSubscriberCount(count)
	}
	return sub
}

// Unsubscribe removes a subscriber and unblocks any pending Read on it.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub.id)
	count := len(b.subs)
	b.mu.Unlock()

	sub.closed.Store(true)
	sub.ring.CloseWriter()

	if b.metrics != nil {
		b.metrics.SetSubscriberCount(count)
	}
}

// SubscriberCount returns the number of currently subscribed clients.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish writes data to every subscriber's ring buffer without blocking:
// a subscriber whose buffer is full has the write dropped and its drop
// counter incremented, but the publish call itself never stalls (spec
// §4.4: "wait-free... drop-on-overflow").
func (b *Bus) Publish(data []byte) {
	if len(data) == 0 {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		n, err := sub.ring.TryWrite(data)
		if err != nil || n < len(data) {
			dropped := uint64(len(data) - n)
			sub.dropped.Add(dropped)
			if b.metrics != nil {
				b.metrics.RecordDropped(dropped)
			}
		}
	}
	if b.metrics != nil {
		b.metrics.RecordPublish(len(data) * len(b.subs))
	}
}
