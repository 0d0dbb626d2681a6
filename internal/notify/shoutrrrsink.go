package notify

import (
	"log/slog"

	"github.com/nicholas-fedor/shoutrrr"
)

// ShoutrrrSink delivers event notifications through any of shoutrrr's
// supported services (Discord, Telegram, ntfy, etc.) via one service URL.
// No teacher analog; grounded on shoutrrr's well-known top-level
// shoutrrr.Send(url, message) API, which needs no persistent connection or
// reconnect logic, unlike MQTTSink.
type ShoutrrrSink struct {
	url string
	log *slog.Logger
}

// NewShoutrrrSink creates a sink that sends to serviceURL (e.g.
// "discord://token@id" or "telegram://token@telegram?chats=@channel").
func NewShoutrrrSink(serviceURL string, log *slog.Logger) *ShoutrrrSink {
	if log == nil {
		log = slog.Default()
	}
	return &ShoutrrrSink{url: serviceURL, log: log.With("component", "notify_shoutrrr")}
}

// Notify sends message through the configured service. Failure is logged
// and swallowed, per spec §9.
func (s *ShoutrrrSink) Notify(message string) {
	if s.url == "" {
		return
	}
	if err := shoutrrr.Send(s.url, message); err != nil {
		s.log.Warn("shoutrrr notification failed", "error", err)
	}
}
