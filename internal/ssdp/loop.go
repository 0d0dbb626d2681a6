package ssdp

import (
	"context"
	"time"
)

// Loop runs Search at startup and then every interval, publishing each
// batch of new Announcements to onDiscovered. An interval of 0 disables
// discovery entirely (spec §4.7: "serve-only"); any positive value below
// 0.5 minutes is clamped up to that floor.
func (d *Discoverer) Loop(ctx context.Context, intervalMinutes float64, onDiscovered func([]Announcement)) {
	if intervalMinutes <= 0 {
		d.log.Info("ssdp discovery disabled (interval=0)")
		return
	}
	if intervalMinutes < 0.5 {
		intervalMinutes = 0.5
	}
	interval := time.Duration(intervalMinutes * float64(time.Minute))

	runOnce := func() {
		found, err := d.Search()
		if err != nil {
			d.log.Warn("ssdp search failed, will retry next interval", "error", err)
			return
		}
		if len(found) > 0 {
			onDiscovered(found)
		}
	}

	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
