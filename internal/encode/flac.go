package encode

import (
	"io"
	"sync"

	"github.com/tphakala/flac"
)

// flacEncoder wraps a streaming FLAC encoder at compression level 0 (fastest,
// lowest-latency, matching spec §4.5: "streaming FLAC with compression level
// 0; frames flushed as they are produced"). limit_min_bitrate is always on,
// so injected silence still yields periodic frames instead of the encoder
// going silent for seconds at a time and tripping a renderer's stall
// detector.
type flacEncoder struct {
	sampleRate uint32
	channels   int
	bitDepth   int

	mu  sync.Mutex
	enc *flac.Encoder
}

func newFLACEncoder(sampleRate uint32, channels, bitDepth int) *flacEncoder {
	return &flacEncoder{sampleRate: sampleRate, channels: channels, bitDepth: bitDepth}
}

func (e *flacEncoder) Write(dst io.Writer, pcm []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.enc == nil {
		enc, err := flac.NewEncoder(dst, flac.Options{
			SampleRate:       int(e.sampleRate),
			Channels:         e.channels,
			BitsPerSample:    e.bitDepth,
			CompressionLevel: 0,
			LimitMinBitrate:  true,
		})
		if err != nil {
			return err
		}
		e.enc = enc
	}

	return e.enc.WritePCM(pcm)
}

func (e *flacEncoder) Close(io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.enc == nil {
		return nil
	}
	return e.enc.Close()
}
