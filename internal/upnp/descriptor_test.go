package upnp

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDescriptorXML = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <URLBase>http://10.0.0.5:0/</URLBase>
  <device>
    <friendlyName>Living Room Sonos</friendlyName>
    <serviceList>
      <service>
        <serviceType>urn:schemas-upnp-org:service:AVTransport:1</serviceType>
        <controlURL>/MediaRenderer/AVTransport/Control</controlURL>
      </service>
      <service>
        <serviceType>urn:av-openhome-org:service:Playlist:1</serviceType>
        <controlURL>/ctl/OHPlaylist</controlURL>
      </service>
    </serviceList>
  </device>
</root>`

func loadDescriptor(t *testing.T, xmlDoc, location string) *Descriptor {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xmlDoc))
	d, err := parseDescriptor(doc, location)
	require.NoError(t, err)
	return d
}

func TestParseDescriptor_ExtractsServicesAndRepairsURLBase(t *testing.T) {
	d := loadDescriptor(t, sampleDescriptorXML, "http://10.0.0.5:1400/desc.xml")

	assert.Equal(t, "Living Room Sonos", d.FriendlyName)
	assert.Equal(t, "http://10.0.0.5:1400", d.URLBase, "port 0 in declared URLBase must be repaired from location")
	assert.True(t, strings.HasSuffix(d.AVTransportControlURL, "/MediaRenderer/AVTransport/Control"))
	assert.True(t, strings.HasSuffix(d.OHPlaylistControlURL, "/ctl/OHPlaylist"))
	assert.False(t, d.HasQPlay)
}

func TestPreferredService_PrefersOpenHomeOverAVTransport(t *testing.T) {
	d := loadDescriptor(t, sampleDescriptorXML, "http://10.0.0.5:1400/desc.xml")
	kind, url := d.PreferredService()
	assert.Equal(t, ServiceOpenHomePlaylist, kind)
	assert.Contains(t, url, "OHPlaylist")
}

func TestPreferredService_QPlayForcesAVTransport(t *testing.T) {
	d := loadDescriptor(t, sampleDescriptorXML, "http://10.0.0.5:1400/desc.xml")
	d.HasQPlay = true
	kind, url := d.PreferredService()
	assert.Equal(t, ServiceAVTransport, kind)
	assert.Contains(t, url, "AVTransport")
}

func TestPreferredService_AVTransportOnlyWhenNoOpenHome(t *testing.T) {
	d := &Descriptor{AVTransportControlURL: "http://x/av"}
	kind, url := d.PreferredService()
	assert.Equal(t, ServiceAVTransport, kind)
	assert.Equal(t, "http://x/av", url)
}
