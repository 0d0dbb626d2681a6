// Package normalize converts whatever sample format the host audio layer
// hands the capture stream into signed integers at a chosen target bit
// depth, computing per-buffer RMS along the way.
package normalize

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// Depth is a supported output bit depth.
type Depth int

const (
	Depth16 Depth = 16
	Depth24 Depth = 24
)

// Result is one normalized buffer plus its RMS levels.
type Result struct {
	// Samples holds signed PCM at the target depth, interleaved, little-
	// endian. For Depth16, 2 bytes/sample; for Depth24, 3 bytes/sample
	// packed (spec: "24-bit output is packed into three bytes, little-
	// endian, within the encoded stream").
	Samples    []byte
	Depth      Depth
	Channels   int
	SampleRate uint32
	RMSLeft    float64
	RMSRight   float64
}

// rmsGate is a process-wide atomic flag: when false, RMS computation is
// skipped entirely so the hot audio path never pays for a UI meter nobody
// is watching (spec §7: "hot audio paths use an atomic flag, not a lock,
// to gate RMS computation").
var rmsGate atomic.Bool

// SetRMSEnabled toggles RMS computation for all subsequent Normalize calls.
func SetRMSEnabled(enabled bool) { rmsGate.Store(enabled) }

// Normalize converts samples (in sourceFormat, at the given channel count)
// to the target depth and computes RMS if enabled.
func Normalize(samples []byte, sourceFormat malgo.FormatType, channels int, sampleRate uint32, target Depth) (Result, error) {
	if len(samples) == 0 {
		return Result{Depth: target, Channels: channels, SampleRate: sampleRate}, nil
	}

	ints, err := toSigned32(samples, sourceFormat)
	if err != nil {
		return Result{}, err
	}

	var out []byte
	switch target {
	case Depth16:
		out = pack16(ints)
	case Depth24:
		out = pack24(ints)
	default:
		out = pack16(ints)
	}

	result := Result{
		Samples:    out,
		Depth:      target,
		Channels:   channels,
		SampleRate: sampleRate,
	}

	if rmsGate.Load() && channels > 0 {
		result.RMSLeft, result.RMSRight = computeRMS(ints, channels)
	}

	return result, nil
}

// toSigned32 widens every sample in samples to a full-scale int32, regardless
// of source format, so pack16/pack24/RMS share one representation.
// Grounded on ConvertToS16's per-format switch, generalized to int32 instead
// of a fixed 16-bit target.
func toSigned32(samples []byte, format malgo.FormatType) ([]int32, error) {
	switch format {
	case malgo.FormatU8:
		out := make([]int32, len(samples))
		for i, b := range samples {
			out[i] = (int32(b) - 128) << 24
		}
		return out, nil

	case malgo.FormatS16:
		n := len(samples) / 2
		out := make([]int32, n)
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(samples[i*2 : i*2+2]))
			out[i] = int32(v) << 16
		}
		return out, nil

	case malgo.FormatS24:
		n := len(samples) / 3
		out := make([]int32, n)
		for i := 0; i < n; i++ {
			j := i * 3
			v := int32(samples[j]) | int32(samples[j+1])<<8 | int32(samples[j+2])<<16
			if v&0x800000 != 0 {
				v |= -0x1000000
			}
			out[i] = v << 8
		}
		return out, nil

	case malgo.FormatS32:
		n := len(samples) / 4
		out := make([]int32, n)
		for i := 0; i < n; i++ {
			out[i] = int32(binary.LittleEndian.Uint32(samples[i*4 : i*4+4]))
		}
		return out, nil

	case malgo.FormatF32:
		n := len(samples) / 4
		out := make([]int32, n)
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(samples[i*4 : i*4+4])
			f := math.Float32frombits(bits)
			scaled := float64(f) * 2147483647.0
			if scaled > 2147483647 {
				scaled = 2147483647
			} else if scaled < -2147483648 {
				scaled = -2147483648
			}
			out[i] = int32(scaled)
		}
		return out, nil

	default:
		out := make([]int32, len(samples)/2)
		return out, nil
	}
}

// pack16 keeps the most significant 16 bits of each full-scale sample.
func pack16(ints []int32) []byte {
	out := make([]byte, len(ints)*2)
	for i, v := range ints {
		s := int16(v >> 16)
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], uint16(s))
	}
	return out
}

// pack24 keeps the most significant 24 bits of each full-scale sample,
// little-endian 3-byte packing.
func pack24(ints []int32) []byte {
	out := make([]byte, len(ints)*3)
	for i, v := range ints {
		s := v >> 8 // top 24 bits of the 32-bit value
		j := i * 3
		out[j] = byte(s)
		out[j+1] = byte(s >> 8)
		out[j+2] = byte(s >> 16)
	}
	return out
}

// computeRMS returns the RMS level (0.0-1.0 of full scale) for the left and
// right channels of an interleaved int32 buffer. Mono input reports the
// same value on both channels.
func computeRMS(ints []int32, channels int) (left, right float64) {
	if channels < 2 {
		var sum float64
		for _, v := range ints {
			f := float64(v) / math.MaxInt32
			sum += f * f
		}
		if len(ints) > 0 {
			rms := math.Sqrt(sum / float64(len(ints)))
			return rms, rms
		}
		return 0, 0
	}

	var sumL, sumR float64
	frames := len(ints) / channels
	for i := 0; i < frames; i++ {
		fl := float64(ints[i*channels]) / math.MaxInt32
		fr := float64(ints[i*channels+1]) / math.MaxInt32
		sumL += fl * fl
		sumR += fr * fr
	}
	if frames == 0 {
		return 0, 0
	}
	return math.Sqrt(sumL / float64(frames)), math.Sqrt(sumR / float64(frames))
}
