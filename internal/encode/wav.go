package encode

import (
	"encoding/binary"
	"io"
	"sync"
)

// wavEncoder emits a streaming RIFF/WAV header (unknown-length, 0xFFFFFFFF
// size fields so a player doesn't expect EOF at a fixed byte count) once,
// then passes PCM straight through. rf64 additionally prepends a BW64/RF64
// 'ds64' chunk, per spec: "BW64/RF64 header... for effectively unlimited
// length."
type wavEncoder struct {
	sampleRate uint32
	channels   int
	bitDepth   int
	rf64       bool

	mu            sync.Mutex
	headerWritten bool
}

func newWAVEncoder(sampleRate uint32, channels, bitDepth int, rf64 bool) *wavEncoder {
	return &wavEncoder{sampleRate: sampleRate, channels: channels, bitDepth: bitDepth, rf64: rf64}
}

func (e *wavEncoder) Write(dst io.Writer, pcm []byte) error {
	e.mu.Lock()
	needHeader := !e.headerWritten
	e.headerWritten = true
	e.mu.Unlock()

	if needHeader {
		var header []byte
		if e.rf64 {
			header = e.buildRF64Header()
		} else {
			header = e.buildWAVHeader()
		}
		if _, err := dst.Write(header); err != nil {
			return err
		}
	}

	_, err := dst.Write(pcm)
	return err
}

func (e *wavEncoder) Close(io.Writer) error { return nil }

// buildWAVHeader writes the classic 44-byte RIFF/WAVE/fmt/data header with
// unknown-length size fields, grounded on export/wav.go's field layout
// (teacher) and the streaming 0xFFFFFFFF convention from the pmomusic
// example's writeWavHeader.
func (e *wavEncoder) buildWAVHeader() []byte {
	bitsPerSample := uint16(e.bitDepth)
	numChannels := uint16(e.channels)
	blockAlign := numChannels * bitsPerSample / 8
	byteRate := e.sampleRate * uint32(blockAlign)

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 0xFFFFFFFF)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], numChannels)
	binary.LittleEndian.PutUint32(header[24:28], e.sampleRate)
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], 0xFFFFFFFF)
	return header
}

// buildRF64Header replaces the RIFF chunk ID with RF64 and the 32-bit RIFF
// size with 0xFFFFFFFF (per spec), then inserts a 'ds64' chunk carrying
// 64-bit size fields (also set to max, since the stream length truly is
// open-ended) before the usual 'fmt '/'data' chunks.
func (e *wavEncoder) buildRF64Header() []byte {
	bitsPerSample := uint16(e.bitDepth)
	numChannels := uint16(e.channels)
	blockAlign := numChannels * bitsPerSample / 8
	byteRate := e.sampleRate * uint32(blockAlign)

	header := make([]byte, 36+28+8+16+8) // RF64 + ds64 + fmt + data headers
	off := 0
	copy(header[off:off+4], "RF64")
	off += 4
	binary.LittleEndian.PutUint32(header[off:off+4], 0xFFFFFFFF)
	off += 4
	copy(header[off:off+4], "WAVE")
	off += 4

	copy(header[off:off+4], "ds64")
	off += 4
	binary.LittleEndian.PutUint32(header[off:off+4], 28) // ds64 chunk size
	off += 4
	binary.LittleEndian.PutUint64(header[off:off+8], 0xFFFFFFFFFFFFFFFF) // riffSizeLow/High
	off += 8
	binary.LittleEndian.PutUint64(header[off:off+8], 0xFFFFFFFFFFFFFFFF) // dataSizeLow/High
	off += 8
	binary.LittleEndian.PutUint64(header[off:off+8], 0) // sampleCount, unknown
	off += 8
	binary.LittleEndian.PutUint32(header[off:off+4], 0) // table length
	off += 4

	copy(header[off:off+4], "fmt ")
	off += 4
	binary.LittleEndian.PutUint32(header[off:off+4], 16)
	off += 4
	binary.LittleEndian.PutUint16(header[off:off+2], 1)
	off += 2
	binary.LittleEndian.PutUint16(header[off:off+2], numChannels)
	off += 2
	binary.LittleEndian.PutUint32(header[off:off+4], e.sampleRate)
	off += 4
	binary.LittleEndian.PutUint32(header[off:off+4], byteRate)
	off += 4
	binary.LittleEndian.PutUint16(header[off:off+2], blockAlign)
	off += 2
	binary.LittleEndian.PutUint16(header[off:off+2], bitsPerSample)
	off += 2

	copy(header[off:off+4], "data")
	off += 4
	binary.LittleEndian.PutUint32(header[off:off+4], 0xFFFFFFFF)
	off += 4

	return header[:off]
}
