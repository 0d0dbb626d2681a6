package upnp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swyh-go/swyh-go/internal/conf"
)

func TestProtocolInfo_AllFormats(t *testing.T) {
	cases := []struct {
		format   conf.StreamFormat
		expected string
	}{
		{conf.FormatLPCM, "http-get:*:audio/L16:*"},
		{conf.FormatWAV, "http-get:*:audio/wav:*"},
		{conf.FormatRF64, "http-get:*:audio/wav:*"},
		{conf.FormatFLAC, "http-get:*:audio/flac:*"},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, ProtocolInfo(c.format), "format %q", c.format)
	}
}

func TestProtocolInfo_UnknownFallsBackToOctetStream(t *testing.T) {
	assert.Equal(t, "http-get:*:application/octet-stream:*", ProtocolInfo(conf.StreamFormat("bogus")))
}

func TestBuildDIDL_EscapesURLAndSetsAttributes(t *testing.T) {
	didl := BuildDIDL("http://host:5901/stream/swyh.wav?a=1&b=2", conf.FormatWAV, 44100, 2, 16)

	assert.Contains(t, didl, `protocolInfo="http-get:*:audio/wav:*"`)
	assert.Contains(t, didl, `sampleFrequency="44100"`)
	assert.Contains(t, didl, `nrAudioChannels="2"`)
	assert.Contains(t, didl, `bitsPerSample="16"`)
	assert.Contains(t, didl, "&amp;")
	assert.False(t, strings.Contains(didl, "a=1&b=2"), "ampersand must be escaped in the URL text content")
	assert.True(t, strings.HasPrefix(didl, "<DIDL-Lite"))
}

func TestBuildDIDL_FlacUsesFlacProtocolInfo(t *testing.T) {
	didl := BuildDIDL("http://host:5901/stream/swyh.flac", conf.FormatFLAC, 48000, 2, 24)
	assert.Contains(t, didl, `protocolInfo="http-get:*:audio/flac:*"`)
	assert.Contains(t, didl, `bitsPerSample="24"`)
}
