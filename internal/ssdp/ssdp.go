// Package ssdp discovers UPnP/DLNA/OpenHome renderers via SSDP M-SEARCH,
// deduplicating repeated announcements with a short-TTL cache.
package ssdp

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/koron/go-ssdp"
	"github.com/patrickmn/go-cache"

	swyherrors "github.com/swyh-go/swyh-go/internal/errors"
	"github.com/swyh-go/swyh-go/internal/telemetry"
)

// collectionWindow is how long M-SEARCH responses are gathered for, per
// spec §4.7: "collects responses for a fixed 4-second window."
const collectionWindow = 4 * time.Second

const mSearchTTL = 2 // per UPnP spec

// Announcement is one unique Location URL discovered during a search pass.
type Announcement struct {
	Location string
	Server   string
	USN      string
}

// Discoverer runs periodic or one-shot M-SEARCH passes on a chosen network
// interface, deduplicating by Location.
type Discoverer struct {
	iface string
	log   *slog.Logger

	seen *cache.Cache
	mu   sync.Mutex

	metrics *telemetry.SSDPMetrics
}

// SetMetrics attaches optional Prometheus counters for discovery pass
// latency and result counts.
func (d *Discoverer) SetMetrics(m *telemetry.SSDPMetrics) { d.metrics = m }

// New creates a Discoverer bound to ifaceName (empty string = default
// interface chosen by the OS routing table).
func New(ifaceName string, log *slog.Logger) *Discoverer {
	if log == nil {
		log = slog.Default()
	}
	return &Discoverer{
		iface: ifaceName,
		log:   log.With("component", "ssdp"),
		seen:  cache.New(10*time.Minute, time.Minute),
	}
}

// Search performs one M-SEARCH pass, collecting for collectionWindow, and
// returns every unique (never-before-seen within the dedup TTL) Location.
func (d *Discoverer) Search() ([]Announcement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	started := time.Now()

	if d.iface != "" {
		ifi, err := net.InterfaceByName(d.iface)
		if err != nil {
			return nil, swyherrors.New(err).
				Component("ssdp").
				Category(swyherrors.CategoryNetwork).
				Context("interface", d.iface).
				Build()
		}
		ssdp.Interfaces = []net.Interface{*ifi}
	} else {
		ssdp.Interfaces = nil
	}

	list, err := ssdp.Search(ssdp.All, int(collectionWindow.Seconds()), "")
	if err != nil {
		if d.metrics != nil {
			d.metrics.RecordFailure()
		}
		return nil, swyherrors.New(err).
			Component("ssdp").
			Category(swyherrors.CategorySSDP).
			Context("operation", "msearch").
			Build()
	}

	out := make([]Announcement, 0, len(list))
	for _, svc := range list {
		if _, found := d.seen.Get(svc.Location); found {
			continue
		}
		d.seen.Set(svc.Location, struct{}{}, cache.DefaultExpiration)
		out = append(out, Announcement{
			Location: svc.Location,
			Server:   svc.Server,
			USN:      svc.USN,
		})
	}
	d.log.Debug("msearch pass complete", "new_locations", len(out), "mx", collectionWindow, "ttl", mSearchTTL)
	if d.metrics != nil {
		d.metrics.RecordPass(time.Since(started), len(out))
	}
	return out, nil
}
