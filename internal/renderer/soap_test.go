package renderer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAVTransportURIBody_EscapesURLAndIncludesMetadata(t *testing.T) {
	body := setAVTransportURIBody("http://host:5901/stream/swyh.wav?a=1&b=2", "<DIDL-Lite/>")
	assert.Contains(t, body, "<u:SetAVTransportURI")
	assert.Contains(t, body, "&amp;")
	assert.False(t, strings.Contains(body, "a=1&b=2"))
	assert.Contains(t, body, "&lt;DIDL-Lite/&gt;")
}

func TestInsertBody_UsesOpenHomeNamespace(t *testing.T) {
	body := insertBody("http://host:5901/stream/swyh.flac", "<DIDL-Lite/>")
	assert.Contains(t, body, "urn:av-openhome-org:service:Playlist:1")
	assert.Contains(t, body, "<u:Insert")
}

func TestSetVolumeBody_EmbedsValue(t *testing.T) {
	assert.Contains(t, setVolumeBody(42), "<DesiredVolume>42</DesiredVolume>")
	assert.Contains(t, ohSetVolumeBody(7), "<Value>7</Value>")
}

func TestSoapActionHeader_Format(t *testing.T) {
	h := soapActionHeader("urn:schemas-upnp-org:service:AVTransport:1", "Play")
	assert.Equal(t, `"urn:schemas-upnp-org:service:AVTransport:1#Play"`, h)
}

func TestEnvelope_WrapsBodyInSOAPEnvelope(t *testing.T) {
	e := envelope("<u:Stop/>")
	assert.True(t, strings.HasPrefix(e, "<?xml"))
	assert.Contains(t, e, "<s:Envelope")
	assert.Contains(t, e, "<u:Stop/>")
	assert.True(t, strings.HasSuffix(e, "</s:Envelope>"))
}
