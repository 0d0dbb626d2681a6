package renderer

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/swyh-go/swyh-go/internal/conf"
	"github.com/swyh-go/swyh-go/internal/upnp"
)

// Controller fetches device descriptors for newly discovered SSDP
// locations, admits them into the Registry, and replays the autoreconnect
// list exactly once after the first discovery pass completes.
type Controller struct {
	Registry *Registry

	store      *conf.Store
	descClient *http.Client
	log        *slog.Logger

	reconnectOnce sync.Once
}

func NewController(store *conf.Store, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		Registry:   NewRegistry(log),
		store:      store,
		descClient: &http.Client{},
		log:        log.With("component", "renderer_controller"),
	}
}

// AdmitLocations fetches and parses the descriptor at each location and
// upserts every fetched descriptor into the registry, returning only the
// renderers with a recognized control service (spec §4.7). Unreachable
// locations are logged and skipped; unrecognized ones are logged and left
// out of the result. Neither aborts the batch.
func (c *Controller) AdmitLocations(ctx context.Context, locations []string) []*Renderer {
	admitted := make([]*Renderer, 0, len(locations))
	for _, loc := range locations {
		d, err := upnp.Fetch(ctx, c.descClient, loc)
		if err != nil {
			c.log.Warn("descriptor fetch failed", "location", loc, "error", err)
			continue
		}
		r := c.Registry.Upsert(loc, d)
		if !r.IsPlayable() {
			c.log.Debug("renderer has no recognized control service", "location", loc)
			continue
		}
		admitted = append(admitted, r)
	}
	return admitted
}

// ReplayAutoreconnect plays the remembered renderers found in the current
// admitted batch, exactly once per process lifetime (spec §4.8:
// "those renderers are played automatically after first discovery
// completes").
func (c *Controller) ReplayAutoreconnect(ctx context.Context, admitted []*Renderer, buildStream func(*Renderer) (streamURL, didl string)) {
	settings := c.store.Get()
	if !settings.AutoReconnect || len(settings.RememberedRenderers) == 0 {
		return
	}

	c.reconnectOnce.Do(func() {
		remembered := make(map[string]bool, len(settings.RememberedRenderers))
		for _, rr := range settings.RememberedRenderers {
			if rr.AutoResume {
				remembered[rr.Location] = true
			}
		}
		for _, r := range admitted {
			if !remembered[r.Location] {
				continue
			}
			streamURL, didl := buildStream(r)
			if err := r.Play(ctx, streamURL, didl); err != nil {
				c.log.Warn("autoreconnect play failed", "location", r.Location, "error", err)
				continue
			}
			c.log.Info("autoreconnect replayed", "location", r.Location, "name", r.FriendlyName)
		}
	})
}

// PersistPlaying serializes the renderers with an open StreamingClient into
// settings for the next startup's autoreconnect pass, per spec §4.8.
func (c *Controller) PersistPlaying() {
	playing := c.Registry.Playing()
	settings := c.store.Get().Clone()
	settings.RememberedRenderers = ToRemembered(playing)
	c.store.Update(settings)
	if err := c.store.Save(); err != nil {
		c.log.Warn("failed to persist autoreconnect state", "error", err)
	}
}

// StopAll issues Stop to every renderer currently playing, honoring ctx's
// deadline (the orchestrator binds this to a 5-second global deadline on
// StopAll, spec §4.9).
func (c *Controller) StopAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, r := range c.Registry.All() {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Stop(ctx); err != nil {
				c.log.Warn("stop failed during shutdown", "location", r.Location, "error", err)
			}
		}()
	}
	wg.Wait()
}
