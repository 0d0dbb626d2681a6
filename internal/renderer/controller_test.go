package renderer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swyh-go/swyh-go/internal/conf"
	"github.com/swyh-go/swyh-go/internal/upnp"
)

const testDescriptorXML = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <friendlyName>Office Speaker</friendlyName>
    <serviceList>
      <service>
        <serviceType>urn:schemas-upnp-org:service:AVTransport:1</serviceType>
        <controlURL>/AVTransport/Control</controlURL>
      </service>
    </serviceList>
  </device>
</root>`

func TestController_AdmitLocationsSkipsUnreachableWithoutAbortingBatch(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testDescriptorXML))
	}))
	defer good.Close()

	store := conf.NewStore(t.TempDir(), 0, conf.Default(0))
	c := NewController(store, nil)

	admitted := c.AdmitLocations(context.Background(), []string{
		good.URL + "/desc.xml",
		"http://127.0.0.1:1/desc.xml", // unreachable
	})

	require.Len(t, admitted, 1)
	assert.Equal(t, "Office Speaker", admitted[0].FriendlyName)
}

func TestController_ReplayAutoreconnectOnlyRunsOnce(t *testing.T) {
	settings := conf.Default(0)
	settings.AutoReconnect = true
	settings.RememberedRenderers = []conf.RememberedRenderer{
		{FriendlyName: "Office Speaker", Location: "loc-1", AutoResume: true},
	}
	store := conf.NewStore(t.TempDir(), 0, settings)
	c := NewController(store, nil)

	playSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer playSrv.Close()

	r := c.Registry.Upsert("loc-1", &upnp.Descriptor{
		FriendlyName:          "Office Speaker",
		AVTransportControlURL: playSrv.URL + "/control",
	})

	calls := 0
	buildStream := func(*Renderer) (string, string) {
		calls++
		return "http://host:5901/stream/swyh.wav", "<DIDL-Lite/>"
	}

	c.ReplayAutoreconnect(context.Background(), []*Renderer{r}, buildStream)
	c.ReplayAutoreconnect(context.Background(), []*Renderer{r}, buildStream)

	assert.Equal(t, 1, calls)
}
