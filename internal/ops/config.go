package ops

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"bmxfeed/internal/codec"
	"bmxfeed/internal/errors"
	"bmxfeed/internal/recorder"
	"bmxfeed/internal/source"
	"bmxfeed/pkg/exception"

	"github.com/BurntSushi/toml"
)

const (
	SourceLive   = "live"
	SourceReplay = "replay"

	LogFormatText = "text"
	LogFormatJSON = "json"

	envAPIKey    = "BITMEX_API_KEY"
	envAPISecret = "BITMEX_API_SECRET"
)

// FileConfig mirrors the JSON and TOML config layout.
type FileConfig struct {
	Source        string        `json:"source" toml:"source"`
	Subscriptions []string      `json:"subscriptions" toml:"subscriptions"`
	Live          LiveFile      `json:"live" toml:"live"`
	Replay        ReplayFile    `json:"replay" toml:"replay"`
	Capture       CaptureFile   `json:"capture" toml:"capture"`
	Auth          AuthFile      `json:"auth" toml:"auth"`
	Archive       ArchiveFile   `json:"archive" toml:"archive"`
	Log           LogFile       `json:"log" toml:"log"`
	Metrics       MetricsFile   `json:"metrics" toml:"metrics"`
	Pyroscope     PyroscopeFile `json:"pyroscope" toml:"pyroscope"`
}

type LiveFile struct {
	URL          string `json:"url" toml:"url"`
	Testnet      bool   `json:"testnet" toml:"testnet"`
	PingInterval string `json:"pingInterval" toml:"ping_interval"`
}

type ReplayFile struct {
	Files     []string `json:"files" toml:"files"`
	Delimiter string   `json:"delimiter" toml:"delimiter"`
	Encoding  string   `json:"encoding" toml:"encoding"`
}

// CaptureFile enables recording of live frames when Dir is set.
type CaptureFile struct {
	Dir                string `json:"dir" toml:"dir"`
	Delimiter          string `json:"delimiter" toml:"delimiter"`
	SegmentMaxBytes    int64  `json:"segmentMaxBytes" toml:"segment_max_bytes"`
	SegmentMaxDuration string `json:"segmentMaxDuration" toml:"segment_max_duration"`
}

type AuthFile struct {
	APIKey    string `json:"apiKey" toml:"api_key"`
	APISecret string `json:"apiSecret" toml:"api_secret"`
}

type ArchiveFile struct {
	DSN       string `json:"dsn" toml:"dsn"`
	BatchSize int    `json:"batchSize" toml:"batch_size"`
}

type LogFile struct {
	Format string `json:"format" toml:"format"`
}

type MetricsFile struct {
	Addr string `json:"addr" toml:"addr"`
}

type PyroscopeFile struct {
	ServerAddress   string `json:"serverAddress" toml:"server_address"`
	ApplicationName string `json:"applicationName" toml:"application_name"`
}

// Config is the resolved configuration ready for use.
type Config struct {
	Source        string
	Subscriptions []string
	Live          source.LiveConfig
	Replay        recorder.PlaybackConfig
	// Capture is nil when recording is disabled.
	Capture   *recorder.Config
	APIKey    string
	APISecret string
	Archive   ArchiveFile
	LogFormat string
	Metrics   MetricsFile
	Pyroscope PyroscopeFile
}

// Default returns a live configuration against the production endpoint.
func Default() Config {
	return Config{
		Source:    SourceLive,
		Live:      source.LiveConfig{URL: source.DefaultURL},
		Replay:    recorder.PlaybackConfig{Delimiter: recorder.DefaultDelimiter},
		LogFormat: LogFormatText,
		Archive:   ArchiveFile{BatchSize: 100},
		Pyroscope: PyroscopeFile{ApplicationName: "bmxfeed"},
	}
}

// Load reads a .json or .toml config file and resolves it on top of Default.
// API credentials fall back to BITMEX_API_KEY and BITMEX_API_SECRET.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}

	var raw FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := codec.Unmarshal(data, &raw); err != nil {
			return Config{}, errors.Mark(exception.ErrInvalidConfig, errors.Wrapf(err, "decode %s", path))
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return Config{}, errors.Mark(exception.ErrInvalidConfig, errors.Wrapf(err, "decode %s", path))
		}
	default:
		return Config{}, errors.Wrapf(exception.ErrInvalidConfig, "unsupported config extension: %s", path)
	}

	cfg, err := resolve(raw)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func resolve(raw FileConfig) (Config, error) {
	cfg := Default()

	if s := strings.TrimSpace(raw.Source); s != "" {
		cfg.Source = strings.ToLower(s)
	}
	cfg.Subscriptions = raw.Subscriptions

	if raw.Live.Testnet {
		cfg.Live.URL = source.DefaultTestURL
	}
	if u := strings.TrimSpace(raw.Live.URL); u != "" {
		cfg.Live.URL = u
	}
	if raw.Live.PingInterval != "" {
		d, err := parseDuration("live.pingInterval", raw.Live.PingInterval)
		if err != nil {
			return Config{}, err
		}
		cfg.Live.PingInterval = d
	}

	cfg.Replay.Files = raw.Replay.Files
	if raw.Replay.Delimiter != "" {
		cfg.Replay.Delimiter = raw.Replay.Delimiter
	}
	cfg.Replay.Encoding = raw.Replay.Encoding

	if dir := strings.TrimSpace(raw.Capture.Dir); dir != "" {
		capture := recorder.DefaultConfig(dir)
		if raw.Capture.Delimiter != "" {
			capture.Delimiter = raw.Capture.Delimiter
		}
		if raw.Capture.SegmentMaxBytes > 0 {
			capture.SegmentMaxBytes = raw.Capture.SegmentMaxBytes
		}
		if raw.Capture.SegmentMaxDuration != "" {
			d, err := parseDuration("capture.segmentMaxDuration", raw.Capture.SegmentMaxDuration)
			if err != nil {
				return Config{}, err
			}
			capture.SegmentMaxDuration = d
		}
		cfg.Capture = &capture
	}

	cfg.APIKey = firstNonEmpty(raw.Auth.APIKey, os.Getenv(envAPIKey))
	cfg.APISecret = firstNonEmpty(raw.Auth.APISecret, os.Getenv(envAPISecret))

	cfg.Archive.DSN = raw.Archive.DSN
	if raw.Archive.BatchSize > 0 {
		cfg.Archive.BatchSize = raw.Archive.BatchSize
	}
	if f := strings.TrimSpace(raw.Log.Format); f != "" {
		cfg.LogFormat = strings.ToLower(f)
	}
	cfg.Metrics = raw.Metrics
	if raw.Pyroscope.ServerAddress != "" {
		cfg.Pyroscope.ServerAddress = raw.Pyroscope.ServerAddress
	}
	if raw.Pyroscope.ApplicationName != "" {
		cfg.Pyroscope.ApplicationName = raw.Pyroscope.ApplicationName
	}

	return cfg, nil
}

// Validate checks the resolved configuration.
func (c Config) Validate() error {
	switch c.Source {
	case SourceLive:
		if err := c.Live.Validate(); err != nil {
			return err
		}
	case SourceReplay:
		if err := c.Replay.Validate(); err != nil {
			return err
		}
	default:
		return errors.Wrapf(exception.ErrInvalidConfig, "unknown source %q", c.Source)
	}

	if c.Capture != nil {
		if err := c.Capture.Validate(); err != nil {
			return err
		}
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return errors.Wrapf(exception.ErrInvalidConfig, "unknown log format %q", c.LogFormat)
	}

	if (c.APIKey == "") != (c.APISecret == "") {
		return errors.Wrap(exception.ErrInvalidConfig, "api key and secret must be set together")
	}
	return nil
}

// HasCredentials reports whether the client should authenticate after connecting.
func (c Config) HasCredentials() bool {
	return c.APIKey != "" && c.APISecret != ""
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.Mark(exception.ErrInvalidConfig, errors.Wrapf(err, "parse %s", key))
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
