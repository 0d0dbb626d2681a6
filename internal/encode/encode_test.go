package encode

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swyh-go/swyh-go/internal/conf"
)

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "audio/L16", MIMEType(conf.FormatLPCM))
	assert.Equal(t, "audio/wav", MIMEType(conf.FormatWAV))
	assert.Equal(t, "audio/wav", MIMEType(conf.FormatRF64))
	assert.Equal(t, "audio/flac", MIMEType(conf.FormatFLAC))
}

func TestLPCMEncoder_PassesThroughWithNoHeader(t *testing.T) {
	enc := New(conf.FormatLPCM, 48000, 2, 16)
	var buf bytes.Buffer
	require.NoError(t, enc.Write(&buf, []byte{1, 2, 3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4}, buf.Bytes())
}

func TestWAVEncoder_WritesHeaderOnlyOnce(t *testing.T) {
	enc := New(conf.FormatWAV, 44100, 2, 16)
	var buf bytes.Buffer

	require.NoError(t, enc.Write(&buf, []byte{1, 2}))
	require.NoError(t, enc.Write(&buf, []byte{3, 4}))

	assert.Equal(t, "RIFF", string(buf.Bytes()[0:4]))
	size := binary.LittleEndian.Uint32(buf.Bytes()[4:8])
	assert.Equal(t, uint32(0xFFFFFFFF), size, "streaming WAV declares unknown length")
	assert.Equal(t, "WAVE", string(buf.Bytes()[8:12]))

	payload := buf.Bytes()[44:]
	assert.Equal(t, []byte{1, 2, 3, 4}, payload)
}

func TestRF64Encoder_UsesRF64ChunkID(t *testing.T) {
	enc := New(conf.FormatRF64, 48000, 2, 24)
	var buf bytes.Buffer
	require.NoError(t, enc.Write(&buf, []byte{9, 9, 9}))

	assert.Equal(t, "RF64", string(buf.Bytes()[0:4]))
	assert.Equal(t, "ds64", string(buf.Bytes()[12:16]))
}
