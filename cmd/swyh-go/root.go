package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/swyh-go/swyh-go/internal/conf"
)

// cliFlags holds the raw flag values before they're merged onto a loaded
// Settings snapshot in runDaemon. Left zero-valued, a flag was not passed
// and the persisted/default setting wins.
type cliFlags struct {
	dryRun         bool
	configID       int
	configDir      string
	port           int
	autoReconnect  string // "true"/"false"/"" (unset)
	autoResume     string
	deviceSelector string
	logLevel       string
	ssdpIntervalM  int
	bitDepth       int
	format         string
	netInterfaces  string
	advertiseHost  string
	serveOnly      bool
	upFrontBufferMS int
}

// RootCommand builds the single swyh-go daemon command. Unlike the teacher's
// multi-subcommand cobra tree, this program is one binary governed entirely
// by flags (spec §6), so every flag is bound directly on the root command.
func RootCommand() *cobra.Command {
	flags := &cliFlags{}

	cmd := &cobra.Command{
		Use:   "swyh-go",
		Short: "Stream This, Yeah! (Go) - stream audio capture to UPnP/DLNA/OpenHome renderers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := cmd.Flags()
	fs.BoolVarP(&flags.dryRun, "dry-run", "n", false, "validate configuration and list audio devices, then exit without streaming")
	fs.IntVarP(&flags.configID, "config-id", "c", 0, "configuration id, selects config<id>.toml and log<id>.txt")
	fs.StringVarP(&flags.configDir, "config-dir", "C", "", "directory holding config<id>.toml (default $HOME/.swyh-go)")
	fs.IntVarP(&flags.port, "port", "p", 0, "HTTP streaming server port (0 = use configured/default port)")
	fs.StringVarP(&flags.autoReconnect, "autoreconnect", "a", "", "auto-reconnect to remembered renderers on startup (true|false)")
	fs.StringVarP(&flags.autoResume, "autoresume", "r", "", "resume playback on a renderer that reconnects mid-session (true|false)")
	fs.StringVarP(&flags.deviceSelector, "source", "s", "", "capture device selector: index, name, or name:n for the nth match")
	fs.StringVarP(&flags.logLevel, "log-level", "l", "", "log level: info|debug")
	fs.IntVarP(&flags.ssdpIntervalM, "ssdp-interval", "i", 0, "SSDP rediscovery interval in minutes (0 = use configured/default)")
	fs.IntVarP(&flags.bitDepth, "bit-depth", "b", 0, "stream bit depth: 16 or 24")
	fs.StringVarP(&flags.format, "format", "f", "", "stream format[+streamsize], e.g. flac or wav+u64max-not-chunked")
	fs.StringVarP(&flags.netInterfaces, "interface", "o", "", "network interface name or IP to bind SSDP to (first of a comma list)")
	fs.StringVarP(&flags.advertiseHost, "advertise", "e", "", "IP address to advertise to renderers, overriding auto-detection")
	fs.BoolVarP(&flags.serveOnly, "serve-only", "x", false, "skip active SSDP discovery; only serve renderers that already know the stream URL")
	fs.IntVarP(&flags.upFrontBufferMS, "up-front-buffer", "u", 0, "milliseconds of audio to buffer before a new client's first byte (0 = use configured/default)")

	if err := viper.BindPFlags(fs); err != nil {
		// BindPFlags only fails on programmer error (duplicate flag names);
		// surfacing it at construction time matches the teacher's setupFlags.
		panic(fmt.Sprintf("swyh-go: bind flags: %v", err))
	}

	return cmd
}

// applyFlags overlays any flags the operator actually passed onto a loaded
// Settings snapshot. Flags win over the persisted file; an unset flag (zero
// value / empty string) leaves the persisted value untouched.
func applyFlags(s *conf.Settings, f *cliFlags, changed func(name string) bool) {
	if f.port != 0 {
		s.ServerPort = f.port
	}
	if changed("autoreconnect") {
		s.AutoReconnect = f.autoReconnect == "true"
	}
	if changed("autoresume") {
		s.AutoResume = f.autoResume == "true"
	}
	if f.deviceSelector != "" {
		s.SelectedAudioSource = f.deviceSelector
	}
	if f.logLevel != "" {
		s.LogLevel = f.logLevel
	}
	if f.ssdpIntervalM != 0 {
		s.SSDPIntervalSeconds = f.ssdpIntervalM * 60
	}
	if f.bitDepth != 0 {
		s.BitDepth = f.bitDepth
	}
	if f.format != "" {
		applyFormatFlag(s, f.format)
	}
	if f.netInterfaces != "" {
		s.NetworkInterface = firstCSVField(f.netInterfaces)
	}
	if f.advertiseHost != "" {
		s.AdvertiseHost = f.advertiseHost
	}
	if f.upFrontBufferMS != 0 {
		s.UpFrontBufferMS = f.upFrontBufferMS
	}
}

// logLevelFromString maps the -l flag's two accepted values onto slog
// levels; anything else falls back to info rather than rejecting startup.
func logLevelFromString(s string) slog.Level {
	if s == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
