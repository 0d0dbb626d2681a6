// Package orchestrator owns the single writable reference to the Renderer
// and StreamingClient registries and drains the process-wide event channel,
// the way the teacher's internal/events.EventBus drains ErrorEvents to a
// single worker pool — except this program has exactly one consumer, so the
// worker pool collapses to one goroutine over a closed enum.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/swyh-go/swyh-go/internal/bus"
	"github.com/swyh-go/swyh-go/internal/capture"
	"github.com/swyh-go/swyh-go/internal/conf"
	"github.com/swyh-go/swyh-go/internal/events"
	"github.com/swyh-go/swyh-go/internal/httpserver"
	"github.com/swyh-go/swyh-go/internal/normalize"
	"github.com/swyh-go/swyh-go/internal/notify"
	"github.com/swyh-go/swyh-go/internal/renderer"
	"github.com/swyh-go/swyh-go/internal/silence"
	"github.com/swyh-go/swyh-go/internal/ssdp"
	"github.com/swyh-go/swyh-go/internal/telemetry"
	"github.com/swyh-go/swyh-go/internal/upnp"
)

// stopAllDeadline bounds how long StopAll waits for every renderer's Stop
// SOAP call to return before the process exits anyway (spec §4.9).
const stopAllDeadline = 5 * time.Second

// Orchestrator wires the capture -> normalize -> silence -> fan-out bus ->
// HTTP server pipeline together with SSDP discovery and renderer control,
// and owns process shutdown.
type Orchestrator struct {
	store *conf.Store
	log   *slog.Logger

	evBus *events.Bus

	stream     *capture.Stream
	injector   *silence.Injector
	injectMode silence.Mode
	fanout     *bus.Bus

	discoverer *ssdp.Discoverer
	renderCtl  *renderer.Controller
	httpSrv    *httpserver.Server
	notifier   *notify.Notifier
	metrics    *telemetry.Metrics
	serveOnly  bool

	sampleRate atomic.Uint32
	channels   atomic.Int32

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds an Orchestrator from already-constructed components. Callers
// assemble the dependency graph (cmd/swyh-go/run.go) and hand it here so
// this package stays free of CLI/config-file concerns.
func New(store *conf.Store, log *slog.Logger, stream *capture.Stream, discoverer *ssdp.Discoverer, renderCtl *renderer.Controller) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	o := &Orchestrator{
		store:      store,
		log:        log.With("component", "orchestrator"),
		evBus:      events.NewBus(256),
		stream:     stream,
		fanout:     bus.New(bus.DefaultSubscriberCapacity),
		discoverer: discoverer,
		renderCtl:  renderCtl,
	}
	o.httpSrv = httpserver.New(store, o, o.evBus, log)
	return o
}

// Subscribe implements httpserver.ClientSource.
func (o *Orchestrator) Subscribe() *bus.Subscription { return o.fanout.Subscribe() }

// Unsubscribe implements httpserver.ClientSource.
func (o *Orchestrator) Unsubscribe(sub *bus.Subscription) { o.fanout.Unsubscribe(sub) }

// SampleRate implements httpserver.ClientSource.
func (o *Orchestrator) SampleRate() uint32 { return o.sampleRate.Load() }

// Channels implements httpserver.ClientSource.
func (o *Orchestrator) Channels() int { return int(o.channels.Load()) }

// SetNotifier attaches the optional MQTT/shoutrrr push-notification fanout.
// Must be called before Run; a nil notifier (the default) means events are
// never forwarded to an external sink, just logged.
func (o *Orchestrator) SetNotifier(n *notify.Notifier) { o.notifier = n }

// SetServeOnly disables active SSDP discovery (spec §6's -x flag): the HTTP
// stream endpoint still serves any renderer that knows its URL, but nothing
// is auto-discovered or auto-reconnected. Must be called before Run.
func (o *Orchestrator) SetServeOnly(serveOnly bool) { o.serveOnly = serveOnly }

// SetMetrics wires the optional Prometheus telemetry into every subsystem
// that exposes a SetMetrics hook, and mounts /metrics on the streaming HTTP
// server so the exposition endpoint shares the same listener. Must be
// called before Run.
func (o *Orchestrator) SetMetrics(m *telemetry.Metrics) {
	o.metrics = m
	if m == nil {
		return
	}
	o.stream.SetMetrics(m.Capture)
	o.fanout.SetMetrics(m.Bus)
	o.discoverer.SetMetrics(m.SSDP)
	o.httpSrv.SetMetrics(m.Client)
	o.httpSrv.ExposeMetrics(m.Handler())
	renderer.SetMetrics(m.Renderer)
}

// EventBus exposes the event channel so other components can publish onto
// it. The HTTP server receives it through httpserver.New inside New; the
// capture stream is handed it by its caller through Stream.SetBus.
func (o *Orchestrator) EventBus() *events.Bus { return o.evBus }

// Run starts every subsystem and blocks until ctx is cancelled or a StopAll
// event arrives on the event bus.
func (o *Orchestrator) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	settings := o.store.Get()

	if err := o.stream.Start(runCtx); err != nil {
		cancel()
		return err
	}
	o.sampleRate.Store(o.stream.SampleRate())
	o.channels.Store(int32(o.stream.Channels()))

	mode := silence.SelectMode(string(settings.StreamFormat), settings.InjectSilence)
	o.injectMode = mode
	o.injector = silence.NewInjector(
		time.Duration(settings.CaptureTimeoutMS)*time.Millisecond,
		mode,
		o.stream.SampleRate(),
		o.stream.Channels(),
		normalize.Depth(settings.BitDepth),
	)
	o.injector.Start()

	o.wg.Add(1)
	go o.pumpCapture(runCtx, normalize.Depth(settings.BitDepth))

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if err := o.httpSrv.Start(); err != nil {
			o.log.Error("http server exited", "error", err)
		}
	}()

	if !o.serveOnly {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			o.discoverer.Loop(runCtx, float64(settings.SSDPIntervalSeconds)/60.0, o.onDiscovered)
		}()
	} else {
		o.log.Info("serve-only mode: active SSDP discovery disabled")
	}

	o.wg.Add(1)
	go o.drainEvents(runCtx)

	<-runCtx.Done()
	o.shutdown()
	return nil
}

// pumpCapture reads normalized real buffers and injected filler buffers,
// publishing both onto the fan-out bus so the per-client encoders never see
// a gap. Injected buffers don't reset the injector's own idle timer (that
// would be circular); only real capture data does, via MarkReal.
func (o *Orchestrator) pumpCapture(ctx context.Context, depth normalize.Depth) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-o.stream.Output():
			if !ok {
				return
			}
			result, err := normalize.Normalize(raw.Samples, raw.Format, raw.Channels, raw.SampleRate, depth)
			if err != nil {
				o.log.Warn("normalize failed, dropping buffer", "error", err)
				continue
			}
			if o.injector != nil {
				o.injector.MarkReal()
			}
			if o.metrics != nil {
				o.metrics.Capture.SetRMS(result.RMSLeft, result.RMSRight)
			}
			o.fanout.Publish(result.Samples)
		case filler, ok := <-o.injectorOutput():
			if !ok {
				continue
			}
			if o.metrics != nil {
				o.metrics.Capture.RecordInjectedBuffer(o.injectMode.String())
			}
			o.fanout.Publish(filler.Samples)
		}
	}
}

func (o *Orchestrator) injectorOutput() <-chan normalize.Result {
	if o.injector == nil {
		return nil
	}
	return o.injector.Output()
}

// onDiscovered admits newly found SSDP locations and, on the first batch,
// replays autoreconnect.
func (o *Orchestrator) onDiscovered(found []ssdp.Announcement) {
	locations := make([]string, 0, len(found))
	for _, a := range found {
		locations = append(locations, a.Location)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	admitted := o.renderCtl.AdmitLocations(ctx, locations)
	for _, r := range admitted {
		o.evBus.Publish(events.Event{Kind: events.RendererDiscovered, RendererLocation: r.Location, RendererFriendlyName: r.FriendlyName})
	}

	o.renderCtl.ReplayAutoreconnect(ctx, admitted, o.buildStreamTarget)
}

func (o *Orchestrator) buildStreamTarget(r *renderer.Renderer) (streamURL, didl string) {
	settings := o.store.Get()
	streamURL = o.streamURLFor(settings.StreamFormat)
	didl = upnp.BuildDIDL(streamURL, settings.StreamFormat, o.SampleRate(), o.Channels(), settings.BitDepth)
	return streamURL, didl
}

func (o *Orchestrator) streamURLFor(format conf.StreamFormat) string {
	settings := o.store.Get()
	host := settings.AdvertiseHost
	if host == "" {
		host = localAdvertiseHost()
	}
	return "http://" + host + ":" + itoa(settings.ServerPort) + "/stream/swyh." + string(format)
}

// drainEvents is the orchestrator's single consumer loop over the event
// bus, grounded on the teacher's EventBus.worker select-on-ctx-or-channel
// shape.
func (o *Orchestrator) drainEvents(ctx context.Context) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-o.evBus.Events():
			if !ok {
				return
			}
			o.handleEvent(ev)
			if ev.Kind == events.StopAll {
				o.cancel()
				return
			}
		}
	}
}

func (o *Orchestrator) handleEvent(ev events.Event) {
	switch ev.Kind {
	case events.CaptureEnded:
		o.log.Warn("capture ended", "reason", ev.Reason)
	case events.RendererDiscovered:
		o.log.Info("renderer admitted", "location", ev.RendererLocation, "name", ev.RendererFriendlyName)
	case events.ClientConnected:
		o.log.Debug("client connected", "addr", ev.ClientAddr)
	case events.ClientDisconnected:
		o.log.Debug("client disconnected", "addr", ev.ClientAddr)
	default:
		o.log.Debug("event", "kind", ev.Kind.String())
	}
	if o.notifier != nil {
		o.notifier.Handle(context.Background(), ev)
	}
}

// shutdown stops every subsystem in dependency order and persists the
// autoreconnect list, with a global deadline on renderer Stop calls.
func (o *Orchestrator) shutdown() {
	stopCtx, cancel := context.WithTimeout(context.Background(), stopAllDeadline)
	defer cancel()

	o.renderCtl.PersistPlaying()
	o.renderCtl.StopAll(stopCtx)

	if o.injector != nil {
		o.injector.Stop()
	}
	if err := o.stream.Stop(); err != nil {
		o.log.Warn("capture stop failed", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := o.httpSrv.Shutdown(shutdownCtx); err != nil {
		o.log.Warn("http server shutdown failed", "error", err)
	}

	o.wg.Wait()
	o.evBus.Close()
}

// StopAll publishes the StopAll event, triggering an orderly shutdown of
// every subsystem (Ctrl-C in CLI, spec §4.9).
func (o *Orchestrator) StopAll() {
	o.evBus.Publish(events.Event{Kind: events.StopAll})
}
