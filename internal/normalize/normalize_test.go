package normalize

import (
	"encoding/binary"
	"testing"

	"github.com/gen2brain/malgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func s16Samples(values ...int16) []byte {
	buf := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(buf[i*2:i*2+2], uint16(v))
	}
	return buf
}

func TestNormalize_S16ToS16IsLosslessPassthroughOfTopBits(t *testing.T) {
	in := s16Samples(1000, -1000, 32767, -32768)
	result, err := Normalize(in, malgo.FormatS16, 2, 48000, Depth16)
	require.NoError(t, err)
	require.Len(t, result.Samples, 8)

	got := int16(binary.LittleEndian.Uint16(result.Samples[0:2]))
	assert.Equal(t, int16(1000), got)
}

func TestNormalize_S16ToS24Depth(t *testing.T) {
	in := s16Samples(1000)
	result, err := Normalize(in, malgo.FormatS16, 1, 48000, Depth24)
	require.NoError(t, err)
	assert.Equal(t, Depth24, result.Depth)
	assert.Len(t, result.Samples, 3)
}

func TestNormalize_EmptyInput(t *testing.T) {
	result, err := Normalize(nil, malgo.FormatS16, 2, 48000, Depth16)
	require.NoError(t, err)
	assert.Empty(t, result.Samples)
}

func TestNormalize_RMSGatedByFlag(t *testing.T) {
	in := s16Samples(32767, -32768, 32767, -32768)

	SetRMSEnabled(false)
	result, err := Normalize(in, malgo.FormatS16, 2, 48000, Depth16)
	require.NoError(t, err)
	assert.Zero(t, result.RMSLeft)
	assert.Zero(t, result.RMSRight)

	SetRMSEnabled(true)
	defer SetRMSEnabled(false)
	result, err = Normalize(in, malgo.FormatS16, 2, 48000, Depth16)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.RMSLeft, 0.01)
	assert.InDelta(t, 1.0, result.RMSRight, 0.01)
}

func TestNormalize_MonoComputesSameRMSBothChannels(t *testing.T) {
	SetRMSEnabled(true)
	defer SetRMSEnabled(false)

	in := s16Samples(16384, -16384)
	result, err := Normalize(in, malgo.FormatS16, 1, 48000, Depth16)
	require.NoError(t, err)
	assert.Equal(t, result.RMSLeft, result.RMSRight)
}
