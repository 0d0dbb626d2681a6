package capture

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/swyh-go/swyh-go/internal/events"
	swyherrors "github.com/swyh-go/swyh-go/internal/errors"
	"github.com/swyh-go/swyh-go/internal/telemetry"
)

// Buffer is one chunk of raw, host-native-format samples handed to the
// Normalizer. onAudioData copies each host callback's samples into a fresh
// slice, so Buffer's payload is owned by the receiver and may be retained.
type Buffer struct {
	Samples    []byte
	Format     malgo.FormatType
	Channels   int
	SampleRate uint32
	Timestamp  time.Time
}

// Stream is the single active CaptureStream for this process (spec
// invariant: at most one per configuration instance).
type Stream struct {
	selector string

	log *slog.Logger
	bus *events.Bus

	ctx    *malgo.AllocatedContext
	device *malgo.Device

	out chan Buffer

	mu      sync.Mutex
	running atomic.Bool
	reopening atomic.Bool

	format     malgo.FormatType
	channels   int
	sampleRate uint32

	cancel context.CancelFunc

	metrics *telemetry.CaptureMetrics
}

// SetMetrics attaches optional Prometheus counters for dropped buffers and
// device-reopen attempts. Must be called before Start.
func (s *Stream) SetMetrics(m *telemetry.CaptureMetrics) { s.metrics = m }

// SetBus attaches the event bus CaptureStarted/CaptureEnded are published
// on. The orchestrator owns the bus and doesn't exist until after a Stream
// is constructed, so this is a setter rather than a constructor parameter;
// it must be called before Start.
func (s *Stream) SetBus(bus *events.Bus) { s.bus = bus }

// NewStream creates a Stream bound to the device selector (index, name, or
// "name:n"). The device isn't opened until Start.
func NewStream(selector string, bus *events.Bus, log *slog.Logger) *Stream {
	if log == nil {
		log = slog.Default()
	}
	return &Stream{
		selector: selector,
		bus:      bus,
		log:      log.With("component", "capture"),
		out:      make(chan Buffer, 8),
	}
}

// Output returns the channel of raw captured buffers.
func (s *Stream) Output() <-chan Buffer { return s.out }

// IsRunning reports whether the device is currently open and capturing.
func (s *Stream) IsRunning() bool { return s.running.Load() }

// SampleRate returns the negotiated capture sample rate. Zero before Start.
func (s *Stream) SampleRate() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleRate
}

// Channels returns the negotiated capture channel count. Zero before Start.
func (s *Stream) Channels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels
}

// Format returns the negotiated capture sample format.
func (s *Stream) Format() malgo.FormatType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// Start opens the selected device and begins capture.
func (s *Stream) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return swyherrors.New(nil).
			Component("capture").
			Category(swyherrors.CategoryState).
			Context("error", "capture stream already running").
			Build()
	}

	devices, err := EnumerateDevices()
	if err != nil {
		return err
	}
	dev, err := ResolveSelector(devices, s.selector)
	if err != nil {
		return err
	}

	backend, err := backendForPlatform()
	if err != nil {
		return err
	}

	malgoCtx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return swyherrors.New(err).
			Component("capture").
			Category(swyherrors.CategoryAudioDevice).
			Context("operation", "init_context").
			Build()
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.DeviceID = dev.info.ID.Pointer()
	deviceConfig.Capture.Channels = 2
	deviceConfig.SampleRate = 48000
	deviceConfig.Alsa.NoMMap = 1

	captureCtx, cancel := context.WithCancel(ctx)

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: s.onAudioData,
		Stop: s.onDeviceStop,
	})
	if err != nil {
		cancel()
		_ = malgoCtx.Uninit()
		return swyherrors.New(err).
			Component("capture").
			Category(swyherrors.CategoryAudioDevice).
			Context("device", dev.Name).
			Context("operation", "init_device").
			Build()
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		cancel()
		_ = malgoCtx.Uninit()
		return swyherrors.New(err).
			Component("capture").
			Category(swyherrors.CategoryAudioDevice).
			Context("device", dev.Name).
			Context("operation", "start_device").
			Build()
	}

	s.ctx = malgoCtx
	s.device = device
	s.cancel = cancel
	s.format = device.CaptureFormat()
	s.channels = int(deviceConfig.Capture.Channels)
	s.sampleRate = device.SampleRate()
	s.running.Store(true)

	s.bus.Publish(events.Event{Kind: events.CaptureStarted, DeviceName: dev.Name})
	go s.monitor(captureCtx)

	s.log.Info("capture started", "device", dev.Name, "sample_rate", s.sampleRate)
	return nil
}

// Stop halts capture and releases the device.
func (s *Stream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked("stopped by caller")
}

func (s *Stream) stopLocked(reason string) error {
	if !s.running.Load() {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.device != nil {
		_ = s.device.Stop()
		s.device.Uninit()
		s.device = nil
	}
	if s.ctx != nil {
		_ = s.ctx.Uninit()
		s.ctx = nil
	}
	s.running.Store(false)
	s.bus.Publish(events.Event{Kind: events.CaptureEnded, Reason: reason})
	return nil
}

func (s *Stream) monitor(ctx context.Context) {
	<-ctx.Done()
}

// onAudioData forwards one host callback's worth of frames to the
// Normalizer without blocking: a full output channel drops the buffer
// rather than stalling the audio thread (spec: "the capture callback must
// not block on slow consumers").
func (s *Stream) onAudioData(_, samples []byte, _ uint32) {
	buf := make([]byte, len(samples))
	copy(buf, samples)

	select {
	case s.out <- Buffer{
		Samples:    buf,
		Format:     s.format,
		Channels:   s.channels,
		SampleRate: s.sampleRate,
		Timestamp:  time.Now(),
	}:
	default:
		s.log.Warn("capture output channel full, dropping buffer")
		if s.metrics != nil {
			s.metrics.RecordBufferDropped()
		}
	}
}

// onDeviceStop implements the spec's one-reopen-then-surface-CaptureEnded
// policy for unexpected device loss (observed on Windows RDP connect/
// disconnect).
func (s *Stream) onDeviceStop() {
	if !s.reopening.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.reopening.Store(false)

		s.log.Warn("audio device stopped unexpectedly, attempting reopen")
		if s.metrics != nil {
			s.metrics.RecordReopenAttempt()
		}
		s.mu.Lock()
		defer s.mu.Unlock()

		if !s.running.Load() || s.device == nil {
			return
		}
		if err := s.device.Start(); err != nil {
			s.log.Error("device reopen failed, surfacing capture ended", "error", err)
			if s.metrics != nil {
				s.metrics.RecordReopenFailure()
			}
			s.running.Store(false)
			if s.cancel != nil {
				s.cancel()
			}
			if s.device != nil {
				s.device.Uninit()
				s.device = nil
			}
			if s.ctx != nil {
				_ = s.ctx.Uninit()
				s.ctx = nil
			}
			s.bus.Publish(events.Event{Kind: events.CaptureEnded, Reason: "device reopen failed"})
			return
		}
		s.log.Info("audio device reopened, capture resumed")
	}()
}
