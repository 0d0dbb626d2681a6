// Package encode turns normalized PCM buffers into one of the four wire
// formats a StreamingClient can request: raw LPCM, WAV, RF64, or FLAC.
package encode

import (
	"io"

	"github.com/swyh-go/swyh-go/internal/conf"
)

// Format identifies which encoder a StreamingClient is bound to.
type Format = conf.StreamFormat

// MIMEType returns the Content-Type header value for a format.
func MIMEType(f Format) string {
	switch f {
	case conf.FormatLPCM:
		return "audio/L16"
	case conf.FormatWAV, conf.FormatRF64:
		return "audio/wav"
	case conf.FormatFLAC:
		return "audio/flac"
	default:
		return "application/octet-stream"
	}
}

// Encoder converts normalized PCM buffers to a client's wire format. An
// Encoder starts in "header pending" state: the first call to Write emits
// the container header (if any) exactly once, then streams PCM/encoded
// frames on every subsequent call (spec: "header-once invariant").
type Encoder interface {
	// Write accepts one normalized PCM buffer (interleaved, little-endian,
	// at the Encoder's configured bit depth) and writes the resulting bytes
	// — header included on the first call — to dst.
	Write(dst io.Writer, pcm []byte) error
	// Close flushes any buffered encoder state (FLAC frames in flight).
	// Raw/WAV/RF64 encoders have nothing to flush.
	Close(dst io.Writer) error
}

// New constructs the Encoder for format, at the given sample rate, channel
// count, and bit depth (16 or 24).
func New(format Format, sampleRate uint32, channels int, bitDepth int) Encoder {
	switch format {
	case conf.FormatWAV:
		return newWAVEncoder(sampleRate, channels, bitDepth, false)
	case conf.FormatRF64:
		return newWAVEncoder(sampleRate, channels, bitDepth, true)
	case conf.FormatFLAC:
		return newFLACEncoder(sampleRate, channels, bitDepth)
	default:
		return &lpcmEncoder{}
	}
}

// lpcmEncoder passes normalized PCM straight through: no header, no
// framing, matching the spec's "raw LPCM" format.
type lpcmEncoder struct{}

func (e *lpcmEncoder) Write(dst io.Writer, pcm []byte) error {
	_, err := dst.Write(pcm)
	return err
}

func (e *lpcmEncoder) Close(io.Writer) error { return nil }
