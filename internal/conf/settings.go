// Package conf manages swyh-go's runtime configuration: an atomically
// published snapshot backed by a per-instance TOML file on disk.
package conf

import "time"

// StreamFormat selects the wire format a client's /stream/swyh.* URL maps to.
type StreamFormat string

const (
	FormatLPCM StreamFormat = "raw"
	FormatWAV  StreamFormat = "wav"
	FormatRF64 StreamFormat = "rf64"
	FormatFLAC StreamFormat = "flac"
)

// StreamSizePolicy controls how the Content-Length / chunked-encoding
// headers are set for a streaming response.
type StreamSizePolicy string

const (
	StreamSizeNoneChunked          StreamSizePolicy = "none-chunked"
	StreamSizeU32MaxChunked        StreamSizePolicy = "u32max-chunked"
	StreamSizeU64MaxChunked        StreamSizePolicy = "u64max-chunked"
	StreamSizeU32MaxNotChunked     StreamSizePolicy = "u32max-not-chunked"
	StreamSizeU64MaxNotChunked     StreamSizePolicy = "u64max-not-chunked"
)

// RememberedRenderer is a renderer the operator previously connected to,
// persisted so autoreconnect can find it again after a restart.
type RememberedRenderer struct {
	FriendlyName string `mapstructure:"friendly_name" toml:"friendly_name"`
	Location     string `mapstructure:"location" toml:"location"`
	AutoResume   bool   `mapstructure:"auto_resume" toml:"auto_resume"`
}

// Settings is the complete, immutable configuration snapshot for one
// running instance of swyh-go. A new Settings value is published on every
// Load/Update; callers read it through a Store's atomic pointer and
// never mutate a snapshot they were handed.
type Settings struct {
	// ConfigID distinguishes multiple parallel instances (spec §6's -c flag);
	// it selects both config<id>.toml and log<id>.txt.
	ConfigID int `mapstructure:"config_id" toml:"-"`

	ServerPort int `mapstructure:"server_port" toml:"server_port"`

	StreamFormat     StreamFormat     `mapstructure:"stream_format" toml:"stream_format"`
	BitDepth         int              `mapstructure:"bit_depth" toml:"bit_depth"`
	StreamSizePolicy StreamSizePolicy `mapstructure:"stream_size_policy" toml:"stream_size_policy"`

	CaptureTimeoutMS  int  `mapstructure:"capture_timeout_ms" toml:"capture_timeout_ms"`
	InjectSilence     bool `mapstructure:"inject_silence" toml:"inject_silence"`
	UpFrontBufferMS   int  `mapstructure:"up_front_buffer_ms" toml:"up_front_buffer_ms"`

	SSDPIntervalSeconds int    `mapstructure:"ssdp_interval_seconds" toml:"ssdp_interval_seconds"`
	NetworkInterface    string `mapstructure:"network_interface" toml:"network_interface"`

	// AdvertiseHost overrides the IP embedded in stream URLs and DIDL
	// metadata handed to renderers (spec §6's -e flag). Empty means derive it
	// by dialing out on the default route (see orchestrator.localAdvertiseHost).
	AdvertiseHost string `mapstructure:"advertise_host" toml:"advertise_host"`

	AutoResume    bool `mapstructure:"auto_resume" toml:"auto_resume"`
	AutoReconnect bool `mapstructure:"auto_reconnect" toml:"auto_reconnect"`

	SelectedAudioSource string `mapstructure:"selected_audio_source" toml:"selected_audio_source"`

	RaiseProcessPriority bool `mapstructure:"raise_process_priority" toml:"raise_process_priority"`

	LogLevel string `mapstructure:"log_level" toml:"log_level"`

	SentryDSN string `mapstructure:"sentry_dsn" toml:"sentry_dsn"`

	MQTTBrokerURL string `mapstructure:"mqtt_broker_url" toml:"mqtt_broker_url"`
	MQTTTopic     string `mapstructure:"mqtt_topic" toml:"mqtt_topic"`

	ShoutrrrURL string `mapstructure:"shoutrrr_url" toml:"shoutrrr_url"`

	RememberedRenderers []RememberedRenderer `mapstructure:"remembered_renderers" toml:"remembered_renderers"`

	savedAt time.Time
}

// Clone returns a deep-enough copy safe for the caller to mutate before
// handing it back to a Store: the renderer slice is copied, scalars are
// copied by value.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	clone := *s
	clone.RememberedRenderers = append([]RememberedRenderer(nil), s.RememberedRenderers...)
	return &clone
}
