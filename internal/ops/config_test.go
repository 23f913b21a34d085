package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bmxfeed/internal/source"
	"bmxfeed/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "feed.toml", `
source = "live"
subscriptions = ["trade:XBTUSD", "orderBookL2_25:XBTUSD"]

[live]
testnet = true
ping_interval = "5s"

[capture]
dir = "/tmp/bmx"
segment_max_duration = "30m"

[log]
format = "json"

[metrics]
addr = ":9100"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SourceLive, cfg.Source)
	assert.Equal(t, source.DefaultTestURL, cfg.Live.URL)
	assert.Equal(t, 5*time.Second, cfg.Live.PingInterval)
	assert.Equal(t, []string{"trade:XBTUSD", "orderBookL2_25:XBTUSD"}, cfg.Subscriptions)
	require.NotNil(t, cfg.Capture)
	assert.Equal(t, "/tmp/bmx", cfg.Capture.Dir)
	assert.Equal(t, 30*time.Minute, cfg.Capture.SegmentMaxDuration)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoadJSONReplay(t *testing.T) {
	path := writeConfig(t, "feed.json", `{
		"source": "replay",
		"replay": {"files": ["a.txt", "b.txt"], "delimiter": "|", "encoding": "ISO-8859-1"},
		"archive": {"dsn": "postgres://localhost/bmx"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SourceReplay, cfg.Source)
	assert.Equal(t, []string{"a.txt", "b.txt"}, cfg.Replay.Files)
	assert.Equal(t, "|", cfg.Replay.Delimiter)
	assert.Nil(t, cfg.Capture)
	assert.Equal(t, "postgres://localhost/bmx", cfg.Archive.DSN)
	assert.Equal(t, 100, cfg.Archive.BatchSize)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	t.Setenv(envAPIKey, "key")
	t.Setenv(envAPISecret, "secret")

	cfg, err := Load(writeConfig(t, "feed.toml", `source = "live"`))
	require.NoError(t, err)
	assert.True(t, cfg.HasCredentials())
	assert.Equal(t, "key", cfg.APIKey)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "feed.yaml", "source: live"))
	assert.ErrorIs(t, err, exception.ErrInvalidConfig)

	_, err = Load(writeConfig(t, "feed.json", `{"source":`))
	assert.ErrorIs(t, err, exception.ErrInvalidConfig)

	_, err = Load(writeConfig(t, "feed.toml", `source = "carrier-pigeon"`))
	assert.ErrorIs(t, err, exception.ErrInvalidConfig)

	_, err = Load(writeConfig(t, "feed.toml", "[live]\nping_interval = \"soon\""))
	assert.ErrorIs(t, err, exception.ErrInvalidConfig)

	_, err = Load(writeConfig(t, "feed.toml", `source = "replay"`))
	assert.ErrorIs(t, err, exception.ErrReplayNoFiles)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidateCredentialsPair(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "only-key"
	assert.ErrorIs(t, cfg.Validate(), exception.ErrInvalidConfig)
}
