package conf

import "github.com/spf13/viper"

// Default returns a Settings value identical to what a fresh, never-saved
// configuration id would load, matching spec §3's documented defaults.
func Default(configID int) *Settings {
	return &Settings{
		ConfigID: configID,

		ServerPort: 5901,

		StreamFormat:     FormatLPCM,
		BitDepth:         16,
		StreamSizePolicy: StreamSizeU64MaxNotChunked,

		CaptureTimeoutMS: 2000,
		InjectSilence:    true,
		UpFrontBufferMS:  0,

		SSDPIntervalSeconds: 60,
		NetworkInterface:    "",
		AdvertiseHost:       "",

		AutoResume:    false,
		AutoReconnect: true,

		SelectedAudioSource: "",

		RaiseProcessPriority: false,

		LogLevel: "info",

		SentryDSN: "",

		MQTTBrokerURL: "",
		MQTTTopic:     "",

		ShoutrrrURL: "",

		RememberedRenderers: nil,
	}
}

func setViperDefaults(v *viper.Viper, d *Settings) {
	v.SetDefault("server_port", d.ServerPort)
	v.SetDefault("stream_format", string(d.StreamFormat))
	v.SetDefault("bit_depth", d.BitDepth)
	v.SetDefault("stream_size_policy", string(d.StreamSizePolicy))
	v.SetDefault("capture_timeout_ms", d.CaptureTimeoutMS)
	v.SetDefault("inject_silence", d.InjectSilence)
	v.SetDefault("up_front_buffer_ms", d.UpFrontBufferMS)
	v.SetDefault("ssdp_interval_seconds", d.SSDPIntervalSeconds)
	v.SetDefault("network_interface", d.NetworkInterface)
	v.SetDefault("advertise_host", d.AdvertiseHost)
	v.SetDefault("auto_resume", d.AutoResume)
	v.SetDefault("auto_reconnect", d.AutoReconnect)
	v.SetDefault("selected_audio_source", d.SelectedAudioSource)
	v.SetDefault("raise_process_priority", d.RaiseProcessPriority)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("sentry_dsn", d.SentryDSN)
	v.SetDefault("mqtt_broker_url", d.MQTTBrokerURL)
	v.SetDefault("mqtt_topic", d.MQTTTopic)
	v.SetDefault("shoutrrr_url", d.ShoutrrrURL)
}
