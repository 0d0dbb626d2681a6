package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swyh-go/swyh-go/internal/capture"
	"github.com/swyh-go/swyh-go/internal/conf"
	"github.com/swyh-go/swyh-go/internal/renderer"
	"github.com/swyh-go/swyh-go/internal/ssdp"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	store := conf.NewStore(t.TempDir(), 0, conf.Default(0))
	stream := capture.NewStream("", nil, nil)
	disc := ssdp.New("", nil)
	ctl := renderer.NewController(store, nil)
	return New(store, nil, stream, disc, ctl)
}

func TestOrchestrator_SatisfiesClientSourceInterface(t *testing.T) {
	o := newTestOrchestrator(t)
	o.sampleRate.Store(44100)
	o.channels.Store(2)

	assert.EqualValues(t, 44100, o.SampleRate())
	assert.Equal(t, 2, o.Channels())

	sub := o.Subscribe()
	require.NotNil(t, sub)
	assert.Equal(t, 1, o.fanout.SubscriberCount())
	o.Unsubscribe(sub)
	assert.Equal(t, 0, o.fanout.SubscriberCount())
}

func TestStreamURLFor_BuildsCorrectPathForEachFormat(t *testing.T) {
	o := newTestOrchestrator(t)
	url := o.streamURLFor(conf.FormatFLAC)
	assert.True(t, strings.HasSuffix(url, "/stream/swyh.flac"))
	assert.True(t, strings.HasPrefix(url, "http://"))
}

func TestBuildStreamTarget_ProducesMatchingDIDLForRenderer(t *testing.T) {
	o := newTestOrchestrator(t)
	o.sampleRate.Store(48000)
	o.channels.Store(2)

	streamURL, didl := o.buildStreamTarget(&renderer.Renderer{})
	assert.Contains(t, didl, "sampleFrequency=\"48000\"")
	assert.Contains(t, didl, "nrAudioChannels=\"2\"")
	assert.Contains(t, didl, streamURLEscapedFragment(streamURL))
}

func streamURLEscapedFragment(url string) string {
	// BuildDIDL HTML-escapes '&'; a plain stream URL (no query string) is
	// unaffected, so it should appear in the DIDL verbatim.
	return url
}

func TestLocalAdvertiseHost_NeverReturnsEmpty(t *testing.T) {
	assert.NotEmpty(t, localAdvertiseHost())
}

func TestItoa(t *testing.T) {
	assert.Equal(t, "5901", itoa(5901))
}
