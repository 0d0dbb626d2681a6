// Package renderer controls discovered UPnP/OpenHome media renderers: SOAP
// play/stop/volume actions over a pooled HTTP client, plus the registry
// that tracks per-renderer state across discovery passes.
package renderer

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/beevik/etree"

	"github.com/swyh-go/swyh-go/internal/conf"
	swyherrors "github.com/swyh-go/swyh-go/internal/errors"
	"github.com/swyh-go/swyh-go/internal/upnp"
)

// Renderer is a discovered device plus its live control state. Identity is
// the SSDP Location URL, not (IP, port), per spec §4.6: "to support proxies
// that expose multiple virtual devices at the same address."
type Renderer struct {
	Location     string
	FriendlyName string
	Kind         upnp.ServiceKind
	ControlURL   string
	HasQPlay     bool
	LastSeen     time.Time

	mu             sync.Mutex
	client         *httpClient
	currentStreamURL string
	playing        bool
	volume         *int // nil = unavailable
	openClients    int
}

func newRenderer(loc string, d *upnp.Descriptor) *Renderer {
	kind, controlURL := d.PreferredService()
	return &Renderer{
		Location:     loc,
		FriendlyName: d.FriendlyName,
		Kind:         kind,
		ControlURL:   controlURL,
		HasQPlay:     d.HasQPlay,
		LastSeen:     time.Now(),
		client:       newHTTPClient(),
	}
}

// IsPlayable reports whether discovery found a usable control service.
func (r *Renderer) IsPlayable() bool {
	return r.Kind != upnp.ServiceNone && r.ControlURL != ""
}

// Play issues the Stop->SetURI/Insert->Play sequence for streamURL. Sending
// an explicit Stop first is required by some renderers (e.g. Moode) before
// they accept a new AVTransportURI, per spec §4.8.
func (r *Renderer) Play(ctx context.Context, streamURL, didl string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_ = r.stopLocked(ctx) // best-effort; some renderers reject Stop on an idle transport

	var err error
	switch r.Kind {
	case upnp.ServiceAVTransport:
		err = r.playAVTransport(ctx, streamURL, didl)
	case upnp.ServiceOpenHomePlaylist:
		err = r.playOpenHome(ctx, streamURL, didl)
	default:
		return swyherrors.Newf("renderer %s has no playable service", r.Location).
			Component("renderer").Category(swyherrors.CategoryRenderer).Build()
	}
	if err != nil {
		return err
	}
	r.currentStreamURL = streamURL
	r.playing = true
	return nil
}

func (r *Renderer) playAVTransport(ctx context.Context, streamURL, didl string) error {
	setURIAction := soapActionHeader("urn:schemas-upnp-org:service:AVTransport:1", "SetAVTransportURI")
	if _, err := r.client.postSOAP(ctx, r.ControlURL, setURIAction, setAVTransportURIBody(streamURL, didl)); err != nil {
		return err
	}
	playAction := soapActionHeader("urn:schemas-upnp-org:service:AVTransport:1", "Play")
	if _, err := r.client.postSOAP(ctx, r.ControlURL, playAction, envelope(avTransportPlayTmpl)); err != nil {
		return err
	}
	return nil
}

// playOpenHome issues DeleteAll -> Insert -> Play. SeekId is deliberately
// never sent (spec §4.8: interferes with autoresume on some devices).
func (r *Renderer) playOpenHome(ctx context.Context, streamURL, didl string) error {
	deleteAction := soapActionHeader("urn:av-openhome-org:service:Playlist:1", "DeleteAll")
	if _, err := r.client.postSOAP(ctx, r.ControlURL, deleteAction, envelope(ohDeleteAllTmpl)); err != nil {
		return err
	}
	insertAction := soapActionHeader("urn:av-openhome-org:service:Playlist:1", "Insert")
	if _, err := r.client.postSOAP(ctx, r.ControlURL, insertAction, insertBody(streamURL, didl)); err != nil {
		return err
	}
	playAction := soapActionHeader("urn:av-openhome-org:service:Playlist:1", "Play")
	if _, err := r.client.postSOAP(ctx, r.ControlURL, playAction, envelope(ohPlayTmpl)); err != nil {
		return err
	}
	return nil
}

// Stop sends Stop to the renderer's active service. Stopping an
// already-stopped renderer (not started by Play, or stopped since, and with
// no open StreamingClient) is a no-op that returns success, per spec §9.
func (r *Renderer) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.playing && r.openClients == 0 {
		return nil
	}
	return r.stopLocked(ctx)
}

func (r *Renderer) stopLocked(ctx context.Context) error {
	if !r.IsPlayable() {
		return nil
	}
	var action, body string
	switch r.Kind {
	case upnp.ServiceAVTransport:
		action = soapActionHeader("urn:schemas-upnp-org:service:AVTransport:1", "Stop")
		body = envelope(avTransportStopTmpl)
	case upnp.ServiceOpenHomePlaylist:
		action = soapActionHeader("urn:av-openhome-org:service:Playlist:1", "Stop")
		body = envelope(ohStopTmpl)
	default:
		return nil
	}
	_, err := r.client.postSOAP(ctx, r.ControlURL, action, body)
	r.playing = false
	return err
}

// GetVolume probes the current volume. Failure (e.g. recent Sonos firmware
// that rejects the call) is reported as unavailable, not an error, per
// spec §4.8.
func (r *Renderer) GetVolume(ctx context.Context) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var serviceType, action string
	switch r.Kind {
	case upnp.ServiceAVTransport:
		serviceType, action = "urn:schemas-upnp-org:service:RenderingControl:1", "GetVolume"
	case upnp.ServiceOpenHomePlaylist:
		serviceType, action = "urn:av-openhome-org:service:Volume:1", "Volume"
	default:
		return 0, false
	}

	var body string
	if r.Kind == upnp.ServiceAVTransport {
		body = envelope(avTransportGetVolumeTmpl)
	} else {
		body = envelope(ohVolumeGetTmpl)
	}

	resp, err := r.client.postSOAP(ctx, r.ControlURL, soapActionHeader(serviceType, action), body)
	if err != nil {
		r.volume = nil
		return 0, false
	}
	vol, ok := parseVolumeResponse(resp)
	if !ok {
		r.volume = nil
		return 0, false
	}
	r.volume = &vol
	return vol, true
}

// SetVolume is idempotent: sending the same value twice has no additional
// effect on the renderer beyond the SOAP round trip itself.
func (r *Renderer) SetVolume(ctx context.Context, vol int) error {
	if vol < 0 {
		vol = 0
	}
	if vol > 100 {
		vol = 100
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var serviceType, action, body string
	switch r.Kind {
	case upnp.ServiceAVTransport:
		serviceType, action, body = "urn:schemas-upnp-org:service:RenderingControl:1", "SetVolume", setVolumeBody(vol)
	case upnp.ServiceOpenHomePlaylist:
		serviceType, action, body = "urn:av-openhome-org:service:Volume:1", "SetVolume", ohSetVolumeBody(vol)
	default:
		return swyherrors.Newf("renderer %s has no volume service", r.Location).
			Component("renderer").Category(swyherrors.CategoryRenderer).Build()
	}
	if _, err := r.client.postSOAP(ctx, r.ControlURL, soapActionHeader(serviceType, action), body); err != nil {
		return err
	}
	r.volume = &vol
	return nil
}

// NoteClientOpen records a StreamingClient GET from this renderer. A second
// concurrent GET from the same renderer is tolerated (autoresume pattern,
// spec §4.8) rather than treated as a conflicting stream.
func (r *Renderer) NoteClientOpen() {
	r.mu.Lock()
	r.openClients++
	r.mu.Unlock()
}

// NoteClientClosed records that one open GET from this renderer ended.
func (r *Renderer) NoteClientClosed() {
	r.mu.Lock()
	if r.openClients > 0 {
		r.openClients--
	}
	r.mu.Unlock()
}

// HasOpenClients reports whether any StreamingClient from this renderer is
// currently connected, used by autoreconnect to decide what to persist.
func (r *Renderer) HasOpenClients() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openClients > 0
}

func parseVolumeResponse(body string) (int, bool) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return 0, false
	}
	for _, tag := range []string{"CurrentVolume", "Value"} {
		if el := doc.FindElement("//" + tag); el != nil {
			if v, err := strconv.Atoi(strings.TrimSpace(el.Text())); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// Registry holds the live set of discovered renderers, keyed by Location.
// Never truncated by discovery; a renderer is removed only on explicit
// user action or process exit, per spec §4.6.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]*Renderer
	log       *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		renderers: make(map[string]*Renderer),
		log:       log.With("component", "renderer_registry"),
	}
}

// Upsert merges a freshly-fetched descriptor into the registry. An
// existing renderer at the same Location has its LastSeen/service map
// refreshed in place; its playing state is untouched.
func (reg *Registry) Upsert(loc string, d *upnp.Descriptor) *Renderer {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if existing, ok := reg.renderers[loc]; ok {
		existing.mu.Lock()
		existing.FriendlyName = d.FriendlyName
		existing.LastSeen = time.Now()
		kind, controlURL := d.PreferredService()
		existing.Kind = kind
		existing.ControlURL = controlURL
		existing.HasQPlay = d.HasQPlay
		existing.mu.Unlock()
		return existing
	}

	r := newRenderer(loc, d)
	reg.renderers[loc] = r
	reg.log.Info("renderer discovered", "location", loc, "name", r.FriendlyName, "kind", kindString(r.Kind))
	if m := packageMetrics.Load(); m != nil {
		m.SetDiscoveredCount(len(reg.renderers))
	}
	return r
}

// Get returns the renderer at loc, if any.
func (reg *Registry) Get(loc string) (*Renderer, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.renderers[loc]
	return r, ok
}

// All returns a snapshot slice of every known renderer.
func (reg *Registry) All() []*Renderer {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*Renderer, 0, len(reg.renderers))
	for _, r := range reg.renderers {
		out = append(out, r)
	}
	return out
}

// Remove deletes a renderer by explicit user action.
func (reg *Registry) Remove(loc string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.renderers, loc)
	if m := packageMetrics.Load(); m != nil {
		m.SetDiscoveredCount(len(reg.renderers))
	}
}

// Playing returns every renderer with at least one open StreamingClient,
// used to build the autoreconnect list at shutdown (spec §4.8).
func (reg *Registry) Playing() []*Renderer {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	var out []*Renderer
	for _, r := range reg.renderers {
		if r.HasOpenClients() {
			out = append(out, r)
		}
	}
	return out
}

func kindString(k upnp.ServiceKind) string {
	switch k {
	case upnp.ServiceAVTransport:
		return "avtransport"
	case upnp.ServiceOpenHomePlaylist:
		return "openhome"
	default:
		return "none"
	}
}

// ToRemembered converts the currently-playing renderers into the
// persisted-config shape for autoreconnect.
func ToRemembered(renderers []*Renderer) []conf.RememberedRenderer {
	out := make([]conf.RememberedRenderer, 0, len(renderers))
	for _, r := range renderers {
		out = append(out, conf.RememberedRenderer{
			FriendlyName: r.FriendlyName,
			Location:     r.Location,
			AutoResume:   true,
		})
	}
	return out
}
