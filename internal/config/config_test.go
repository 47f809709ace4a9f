package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Setenv("ECO_ROUTE_TEST_KEY", "set")

	assert.Equal(t, "set", Get("ECO_ROUTE_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", Get("ECO_ROUTE_TEST_MISSING", "fallback"))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.Optimizer.ColdStartAfter)
	assert.Equal(t, "data/app.db", cfg.Storage.DBPath)
	assert.Zero(t, cfg.Optimizer.Timeout, "optimizer calls are uncapped by default")
	assert.Equal(t, 12*time.Hour, cfg.Server.SessionTTL)
}

func TestLoadStorageFromEnv(t *testing.T) {
	t.Setenv("SEED_PATH", "data/seeds/geocode.json")
	t.Setenv("SESSION_TTL", "30m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data/seeds/geocode.json", cfg.Storage.SeedPath)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
optimizer:
  url: https://optimizer.example.com
  coldStartAfter: 20s
geocoder:
  endpoint: https://maps.example.com/geocode/json
  ratePerSecond: 2.5
storage:
  reportTTL: 48h
`), 0o644))
	t.Setenv("OPTIMIZER_URL", "http://localhost:5001")
	t.Setenv("REPORT_TTL", "1h")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://localhost:5001", cfg.Optimizer.URL)
	assert.Equal(t, 20*time.Second, cfg.Optimizer.ColdStartAfter)
	assert.Equal(t, 4, cfg.Optimizer.MaxAttempts)
	assert.Equal(t, 2.5, cfg.Geocoder.RatePerSecond)
	assert.Equal(t, time.Hour, cfg.Storage.ReportTTL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("duration", func(t *testing.T) {
		t.Setenv("COLD_START_AFTER", "soon")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("optimizer: [1"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
	t.Run("validation", func(t *testing.T) {
		t.Setenv("COLD_START_AFTER", "0s")
		_, err := Load("")
		assert.Error(t, err)
	})
}
