package upnp

import (
	"fmt"
	"html"

	"github.com/swyh-go/swyh-go/internal/conf"
)

// ProtocolInfo returns the protocolInfo string a renderer expects for a
// given stream format, per spec §4.8: "http-get:*:audio/L16:*" for LPCM,
// "audio/wav" for both WAV and RF64, "audio/flac" for FLAC.
func ProtocolInfo(format conf.StreamFormat) string {
	switch format {
	case conf.FormatLPCM:
		return "http-get:*:audio/L16:*"
	case conf.FormatWAV, conf.FormatRF64:
		return "http-get:*:audio/wav:*"
	case conf.FormatFLAC:
		return "http-get:*:audio/flac:*"
	default:
		return "http-get:*:application/octet-stream:*"
	}
}

// BuildDIDL constructs the DIDL-Lite metadata XML for SetAVTransportURI /
// OpenHome Insert, parameterized by MIME type, sample rate, channel count,
// and bit depth (spec §4.8).
func BuildDIDL(streamURL string, format conf.StreamFormat, sampleRate uint32, channels, bitDepth int) string {
	protocolInfo := ProtocolInfo(format)
	return fmt.Sprintf(
		`<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/">`+
			`<item id="1" parentID="0" restricted="1">`+
			`<dc:title>swyh-go</dc:title>`+
			`<upnp:class>object.item.audioItem.musicTrack</upnp:class>`+
			`<res protocolInfo="%s" sampleFrequency="%d" nrAudioChannels="%d" bitsPerSample="%d">%s</res>`+
			`</item>`+
			`</DIDL-Lite>`,
		protocolInfo, sampleRate, channels, bitDepth, html.EscapeString(streamURL),
	)
}
