package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/swyh-go/swyh-go/internal/capture"
	"github.com/swyh-go/swyh-go/internal/conf"
	swyherrors "github.com/swyh-go/swyh-go/internal/errors"
	"github.com/swyh-go/swyh-go/internal/logging"
	"github.com/swyh-go/swyh-go/internal/notify"
	"github.com/swyh-go/swyh-go/internal/orchestrator"
	"github.com/swyh-go/swyh-go/internal/procpriority"
	"github.com/swyh-go/swyh-go/internal/renderer"
	"github.com/swyh-go/swyh-go/internal/ssdp"
	"github.com/swyh-go/swyh-go/internal/telemetry"
)

const exitConfigError = 1
const exitAudioDeviceError = 2
const exitInterrupted = 130

func runDaemon(cmd *cobra.Command, flags *cliFlags) error {
	dir := flags.configDir
	if dir == "" {
		d, err := conf.DefaultConfigDir()
		if err != nil {
			return &exitCodeError{code: exitConfigError, err: fmt.Errorf("resolve config directory: %w", err)}
		}
		dir = d
	}

	store, err := conf.Load(dir, flags.configID)
	if err != nil {
		return &exitCodeError{code: exitConfigError, err: fmt.Errorf("load configuration: %w", err)}
	}

	settings := store.Get().Clone()
	applyFlags(settings, flags, cmd.Flags().Changed)
	if err := conf.Validate(settings); err != nil {
		return &exitCodeError{code: exitConfigError, err: fmt.Errorf("invalid configuration: %w", err)}
	}
	store.Update(settings)
	if err := store.Save(); err != nil {
		return &exitCodeError{code: exitConfigError, err: fmt.Errorf("persist configuration: %w", err)}
	}

	if err := logging.Init(dir, settings.ConfigID, logLevelFromString(settings.LogLevel)); err != nil {
		return &exitCodeError{code: exitConfigError, err: fmt.Errorf("initialize logging: %w", err)}
	}
	logging.SetLevel(logLevelFromString(settings.LogLevel))
	log := logging.ForService("swyh-go")

	if settings.SentryDSN != "" {
		if err := swyherrors.InitSentry(settings.SentryDSN, ""); err != nil {
			log.Warn("failed to initialize sentry reporting, continuing without it", "error", err)
		}
	}

	if flags.dryRun {
		return runDryRun(log, settings)
	}

	stream := capture.NewStream(settings.SelectedAudioSource, nil, log)
	discoverer := ssdp.New(settings.NetworkInterface, log)
	renderCtl := renderer.NewController(store, log)

	orch := orchestrator.New(store, log, stream, discoverer, renderCtl)
	stream.SetBus(orch.EventBus())
	orch.SetServeOnly(flags.serveOnly)

	if metrics, err := telemetry.NewMetrics(); err != nil {
		log.Warn("telemetry disabled: failed to initialize prometheus registry", "error", err)
	} else {
		orch.SetMetrics(metrics)
	}

	if n := buildNotifier(settings, log); n != nil {
		orch.SetNotifier(n)
	}

	if settings.RaiseProcessPriority {
		procpriority.Raise(log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting swyh-go", "config_id", settings.ConfigID, "port", settings.ServerPort, "format", settings.StreamFormat, "serve_only", flags.serveOnly)

	runErr := orch.Run(ctx)
	if runErr != nil {
		return &exitCodeError{code: exitAudioDeviceError, err: runErr}
	}
	if ctx.Err() != nil {
		log.Info("shutdown complete")
		return &exitCodeError{code: exitInterrupted, err: fmt.Errorf("interrupted")}
	}
	return nil
}

// buildNotifier wires the optional MQTT/shoutrrr push-notification sinks.
// Connection failures are logged, not fatal: a misconfigured notify target
// shouldn't prevent the capture/streaming pipeline from starting.
func buildNotifier(settings *conf.Settings, log *slog.Logger) *notify.Notifier {
	var sinks []notify.Sink

	if settings.MQTTBrokerURL != "" {
		mqttSink := notify.NewMQTTSink(settings.MQTTBrokerURL, settings.MQTTTopic, log)
		if err := mqttSink.Connect(context.Background()); err != nil {
			log.Warn("mqtt notify sink failed to connect, notifications to it will be dropped", "error", err)
		}
		sinks = append(sinks, notify.WrapMQTT(mqttSink))
	}

	if settings.ShoutrrrURL != "" {
		sinks = append(sinks, notify.WrapShoutrrr(notify.NewShoutrrrSink(settings.ShoutrrrURL, log)))
	}

	if len(sinks) == 0 {
		return nil
	}
	return notify.NewNotifier(log, sinks...)
}

// runDryRun validates configuration, resolves the capture device selector,
// and prints what would have been streamed, without opening the device or
// starting any network listener (spec §6's -n flag).
func runDryRun(log *slog.Logger, settings *conf.Settings) error {
	devices, err := capture.EnumerateDevices()
	if err != nil {
		return &exitCodeError{code: exitAudioDeviceError, err: fmt.Errorf("enumerate audio devices: %w", err)}
	}

	fmt.Printf("swyh-go dry run: configuration id %d\n", settings.ConfigID)
	fmt.Printf("  server_port=%d format=%s bit_depth=%d stream_size_policy=%s\n",
		settings.ServerPort, settings.StreamFormat, settings.BitDepth, settings.StreamSizePolicy)
	fmt.Printf("  ssdp_interval=%ds network_interface=%q advertise_host=%q\n",
		settings.SSDPIntervalSeconds, settings.NetworkInterface, settings.AdvertiseHost)
	fmt.Println("  audio devices:")
	for _, d := range devices {
		marker := ""
		if d.IsDefault {
			marker = " (default)"
		}
		fmt.Printf("    [%d] %s%s\n", d.Index, d.Name, marker)
	}

	if settings.SelectedAudioSource == "" {
		log.Info("dry run complete, no device selector configured, would use default device")
		return nil
	}
	selected, err := capture.ResolveSelector(devices, settings.SelectedAudioSource)
	if err != nil {
		return &exitCodeError{code: exitAudioDeviceError, err: fmt.Errorf("resolve selected audio source %q: %w", settings.SelectedAudioSource, err)}
	}
	fmt.Printf("  selected device: [%d] %s\n", selected.Index, selected.Name)
	return nil
}

func applyFormatFlag(s *conf.Settings, raw string) {
	format, size, hasSize := strings.Cut(raw, "+")
	s.StreamFormat = conf.StreamFormat(format)
	if hasSize {
		s.StreamSizePolicy = conf.StreamSizePolicy(size)
	}
}

func firstCSVField(s string) string {
	field, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(field)
}
