package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/stepwise/internal/errors"
)

func TestDefaultRuntimeConfig(t *testing.T) {
	cfg := DefaultRuntimeConfig()

	assert.Equal(t, 100*time.Millisecond, cfg.Engine.PollInterval)
	assert.Equal(t, 500, cfg.Engine.HistoryCapacity)
	assert.Equal(t, 50*time.Millisecond, cfg.Speeds.Sorting)
	assert.Equal(t, 500*time.Millisecond, cfg.Speeds.Graph)
	assert.Equal(t, 20*time.Millisecond, cfg.Speeds.Pathfinding)
	assert.Equal(t, 300*time.Millisecond, cfg.Speeds.DP)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestSpeedDefaultAndClamp(t *testing.T) {
	speeds := DefaultRuntimeConfig().Speeds

	tests := []struct {
		family   string
		expected time.Duration
	}{
		{"sorting", 50 * time.Millisecond},
		{"graph", 500 * time.Millisecond},
		{"pathfinding", 20 * time.Millisecond},
		{"dp", 300 * time.Millisecond},
		{"structures", 400 * time.Millisecond},
		{"unknown", 50 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.family, func(t *testing.T) {
			assert.Equal(t, tt.expected, speeds.Default(tt.family))
		})
	}

	assert.Equal(t, time.Duration(0), speeds.Clamp(0))
	assert.Equal(t, 5*time.Millisecond, speeds.Clamp(time.Millisecond))
	assert.Equal(t, 2*time.Second, speeds.Clamp(time.Minute))
	assert.Equal(t, 70*time.Millisecond, speeds.Clamp(70*time.Millisecond))
}

func TestGlobalConfigExists(t *testing.T) {
	require.NotNil(t, Global)
}

func TestConfigLoadFromEnv(t *testing.T) {
	t.Setenv("STEPWISE_ENGINE_POLL_INTERVAL", "50ms")
	t.Setenv("STEPWISE_ENGINE_HISTORY_CAPACITY", "1000")
	t.Setenv("STEPWISE_SPEED_GRAPH", "250ms")
	t.Setenv("STEPWISE_SERVER_ADDR", ":9999")
	t.Setenv("STEPWISE_LOG_JSON", "true")

	cfg := DefaultRuntimeConfig()
	cfg.loadFromEnv()

	assert.Equal(t, 50*time.Millisecond, cfg.Engine.PollInterval)
	assert.Equal(t, 1000, cfg.Engine.HistoryCapacity)
	assert.Equal(t, 250*time.Millisecond, cfg.Speeds.Graph)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.True(t, cfg.Log.JSON)
}

func TestConfigLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("STEPWISE_ENGINE_POLL_INTERVAL", "soon")
	t.Setenv("STEPWISE_ENGINE_HISTORY_CAPACITY", "-4")
	t.Setenv("STEPWISE_LOG_JSON", "maybe")

	cfg := DefaultRuntimeConfig()
	cfg.loadFromEnv()

	assert.Equal(t, 100*time.Millisecond, cfg.Engine.PollInterval)
	assert.Equal(t, 500, cfg.Engine.HistoryCapacity)
	assert.False(t, cfg.Log.JSON)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRuntimeConfig().Speeds, cfg.Speeds)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
engine:
  history_capacity: 200
speeds:
  sorting: 20ms
server:
  addr: ":7000"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Engine.HistoryCapacity)
	assert.Equal(t, 20*time.Millisecond, cfg.Speeds.Sorting)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 100*time.Millisecond, cfg.Engine.PollInterval, "unset keys keep defaults")
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"bad_yaml", "engine: [unterminated"},
		{"zero_capacity", "engine:\n  history_capacity: 0\n"},
		{"default_outside_range", "speeds:\n  graph: 10s\n"},
		{"empty_range", "speeds:\n  min: 1s\n  max: 10ms\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrConfigInvalid))
			assert.True(t, errors.IsUserError(err))
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultRuntimeConfig()
	cfg.Speeds.DP = 150 * time.Millisecond

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 150*time.Millisecond, loaded.Speeds.DP)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(DefaultPath()))
	assert.Equal(t, AppName, filepath.Base(filepath.Dir(DefaultPath())))
}
