package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/viper"

	swyherrors "github.com/swyh-go/swyh-go/internal/errors"
)

// Store holds the live configuration for one running instance behind an
// atomic.Pointer, so readers on the capture, bus, and HTTP goroutines never
// block a concurrent config reload (spec §9: hot paths never lock on config
// reads).
type Store struct {
	current atomic.Pointer[Settings]
	dir     string
	id      int
}

// NewStore creates a Store pre-loaded with snap. Use Load to build one from
// disk, or NewStore(dir, id, Default(id)) to start from defaults.
func NewStore(dir string, id int, snap *Settings) *Store {
	st := &Store{dir: dir, id: id}
	st.current.Store(snap)
	return st
}

// Get returns the current snapshot. The returned pointer must be treated as
// read-only; call Clone if you intend to mutate and Update the result.
func (s *Store) Get() *Settings {
	return s.current.Load()
}

// Update atomically swaps in a new snapshot.
func (s *Store) Update(next *Settings) {
	next.savedAt = time.Now()
	s.current.Store(next)
}

func configPath(dir string, id int) string {
	return filepath.Join(dir, fmt.Sprintf("config%d.toml", id))
}

// Load reads config<id>.toml from dir, falling back to defaults when the
// file is missing or unparseable. A corrupt file is not reported (Load has
// no logger) and is never overwritten by Load itself — only an explicit Save replaces it — so the
// operator's broken file stays on disk for inspection.
func Load(dir string, id int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, swyherrors.New(err).
			Component("conf").
			Category(swyherrors.CategoryFileIO).
			Context("dir", dir).
			Build()
	}

	path := configPath(dir, id)
	defaults := Default(id)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	setViperDefaults(v, defaults)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewStore(dir, id, defaults), nil
	}

	if err := v.ReadInConfig(); err != nil {
		return NewStore(dir, id, defaults), nil //nolint:nilerr // corrupt/unreadable config falls back to defaults by design
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return NewStore(dir, id, defaults), nil //nolint:nilerr // same fallback for unmarshal failures
	}
	settings.ConfigID = id

	if err := Validate(settings); err != nil {
		return NewStore(dir, id, defaults), nil //nolint:nilerr // invalid persisted values fall back to defaults
	}

	return NewStore(dir, id, settings), nil
}

// Save persists the current snapshot to config<id>.toml, writing to a temp
// file and renaming over the target so a crash mid-write never corrupts the
// existing config.
func (s *Store) Save() error {
	snap := s.Get()
	path := configPath(s.dir, s.id)

	v := viper.New()
	v.SetConfigType("toml")
	for k, val := range toViperMap(snap) {
		v.Set(k, val)
	}

	tmp := path + ".tmp"
	if err := v.WriteConfigAs(tmp); err != nil {
		return swyherrors.New(err).
			Component("conf").
			Category(swyherrors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		return swyherrors.New(err).
			Component("conf").
			Category(swyherrors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return nil
}

func toViperMap(s *Settings) map[string]any {
	return map[string]any{
		"server_port":            s.ServerPort,
		"stream_format":          string(s.StreamFormat),
		"bit_depth":              s.BitDepth,
		"stream_size_policy":     string(s.StreamSizePolicy),
		"capture_timeout_ms":     s.CaptureTimeoutMS,
		"inject_silence":         s.InjectSilence,
		"up_front_buffer_ms":     s.UpFrontBufferMS,
		"ssdp_interval_seconds":  s.SSDPIntervalSeconds,
		"network_interface":      s.NetworkInterface,
		"advertise_host":         s.AdvertiseHost,
		"auto_resume":            s.AutoResume,
		"auto_reconnect":         s.AutoReconnect,
		"selected_audio_source":  s.SelectedAudioSource,
		"raise_process_priority": s.RaiseProcessPriority,
		"log_level":              s.LogLevel,
		"sentry_dsn":             s.SentryDSN,
		"mqtt_broker_url":        s.MQTTBrokerURL,
		"mqtt_topic":             s.MQTTTopic,
		"shoutrrr_url":           s.ShoutrrrURL,
		"remembered_renderers":   s.RememberedRenderers,
	}
}

// DefaultConfigDir returns $HOME/.swyh-go, matching spec §6's config
// location convention.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", swyherrors.New(err).Component("conf").Category(swyherrors.CategoryFileIO).Build()
	}
	return filepath.Join(home, ".swyh-go"), nil
}
