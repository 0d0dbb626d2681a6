// Package silence fills gaps in the capture stream (device reopen, timeout,
// or outright loss) with synthetic buffers so the fan-out bus and every
// downstream encoder never see a stall.
package silence

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/swyh-go/swyh-go/internal/normalize"
)

// Mode selects what gets injected once the timeout expires.
type Mode int

const (
	// ModeSilence injects all-zero samples.
	ModeSilence Mode = iota
	// ModeDitheredNoise injects faint uniform noise near -90 dBFS, used to
	// keep FLAC's bitrate away from zero so renderers don't time out an
	// apparently-dead stream.
	ModeDitheredNoise
)

func (m Mode) String() string {
	if m == ModeDitheredNoise {
		return "dithered_noise"
	}
	return "silence"
}

// noiseFullScaleS16 is the peak amplitude of injected dithered noise, chosen so
// its RMS sits near -90 dBFS relative to 16-bit full scale
// (20*log10(1/32768) ≈ -90.3 dBFS).
const noiseFullScaleS16 = 1

// SelectMode implements the spec's mode-selection rule: silence is
// mandatory when FLAC's limit_min_bitrate is enabled (handled upstream by
// conf.Validate rejecting the FLAC+!InjectSilence combination); otherwise
// FLAC gets dithered noise and every other format gets silence.
func SelectMode(format string, limitMinBitrateEnabled bool) Mode {
	if format == "flac" {
		if limitMinBitrateEnabled {
			return ModeSilence
		}
		return ModeDitheredNoise
	}
	return ModeSilence
}

// Injector watches the age of the most recent real (non-zero-length)
// capture buffer and, once it exceeds Timeout, starts emitting synthetic
// buffers of Timeout/4 worth of samples until real capture resumes.
type Injector struct {
	mu sync.Mutex

	timeout    time.Duration
	mode       Mode
	depth      normalize.Depth
	channels   int
	sampleRate uint32

	lastReal atomic.Int64 // unix nanos

	out    chan normalize.Result
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewInjector creates an Injector. timeout is the configured CaptureTimeout;
// sampleRate/channels/depth describe the stream being filled.
func NewInjector(timeout time.Duration, mode Mode, sampleRate uint32, channels int, depth normalize.Depth) *Injector {
	inj := &Injector{
		timeout:    timeout,
		mode:       mode,
		depth:      depth,
		channels:   channels,
		sampleRate: sampleRate,
		out:        make(chan normalize.Result, 4),
		stopCh:     make(chan struct{}),
	}
	inj.lastReal.Store(time.Now().UnixNano())
	return inj
}

// Output returns the channel injected buffers are delivered on. Consumers
// should select over both this and the real normalized-output channel.
func (inj *Injector) Output() <-chan normalize.Result { return inj.out }

// MarkReal records that a real (non-silent) buffer just arrived, resetting
// the injector's idle timer.
func (inj *Injector) MarkReal() {
	inj.lastReal.Store(time.Now().UnixNano())
}

// Start begins the watchdog goroutine. The tick period is Timeout/4, which
// doubles as both the "how often do we check" cadence and the duration of
// each injected buffer (spec §4.3).
func (inj *Injector) Start() {
	period := inj.timeout / 4
	if period <= 0 {
		period = 10 * time.Millisecond
	}

	inj.wg.Add(1)
	go func() {
		defer inj.wg.Done()
		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-inj.stopCh:
				return
			case <-ticker.C:
				age := time.Duration(time.Now().UnixNano() - inj.lastReal.Load())
				if age < inj.timeout {
					continue
				}
				buf := inj.generate(period)
				select {
				case inj.out <- buf:
				default:
					// downstream stalled on silence too; drop rather than block
				}
			}
		}
	}()
}

// Stop halts the watchdog goroutine.
func (inj *Injector) Stop() {
	close(inj.stopCh)
	inj.wg.Wait()
}

func (inj *Injector) generate(duration time.Duration) normalize.Result {
	frames := int(float64(inj.sampleRate) * duration.Seconds())
	if frames <= 0 {
		frames = 1
	}
	bytesPerSample := 2
	if inj.depth == normalize.Depth24 {
		bytesPerSample = 3
	}
	n := frames * inj.channels * bytesPerSample
	samples := make([]byte, n)

	if inj.mode == ModeDitheredNoise {
		inj.fillNoise(samples, bytesPerSample)
	}
	// ModeSilence leaves samples as all-zero.

	return normalize.Result{
		Samples:    samples,
		Depth:      inj.depth,
		Channels:   inj.channels,
		SampleRate: inj.sampleRate,
	}
}

func (inj *Injector) fillNoise(samples []byte, bytesPerSample int) {
	for i := 0; i+bytesPerSample <= len(samples); i += bytesPerSample {
		v := int16(rand.Intn(2*noiseFullScaleS16+1) - noiseFullScaleS16) //nolint:gosec // not cryptographic, just dither
		switch bytesPerSample {
		case 2:
			samples[i] = byte(v)
			samples[i+1] = byte(v >> 8)
		case 3:
			scaled := int32(v) << 8
			samples[i] = byte(scaled)
			samples[i+1] = byte(scaled >> 8)
			samples[i+2] = byte(scaled >> 16)
		}
	}
}
