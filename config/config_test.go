package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 55*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, 0, cfg.Batch.Workers)
	assert.True(t, cfg.Batch.Progress)
	assert.Empty(t, cfg.Cache.RedisURL)
	assert.Equal(t, 100, cfg.Pricing.TimeSteps)
	assert.Equal(t, uint64(1), cfg.Pricing.Seed)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPTVAL_LOG_LEVEL", "debug")
	t.Setenv("OPTVAL_HTTP_ADDR", ":9999")
	t.Setenv("OPTVAL_CACHE_TTL", "30s")
	t.Setenv("OPTVAL_PRICING_DRAWS", "5000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 5000, cfg.Pricing.Draws)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optval.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: console\nbatch:\n  workers: 3\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 3, cfg.Batch.Workers)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("OPTVAL_LOG_LEVEL", "loud")
	_, err := Load("")
	assert.ErrorContains(t, err, "log.level")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Log:     LogConfig{Level: "info", Format: "json"},
			HTTP:    HTTPConfig{Addr: ":8080"},
			Pricing: PricingConfig{TimeSteps: 1, PriceSteps: 1, Draws: 1},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Log.Format = "xml" }},
		{"addr", func(c *Config) { c.HTTP.Addr = "" }},
		{"workers", func(c *Config) { c.Batch.Workers = -1 }},
		{"ttl", func(c *Config) { c.Cache.TTL = -time.Second }},
		{"steps", func(c *Config) { c.Pricing.TimeSteps = 0 }},
		{"draws", func(c *Config) { c.Pricing.Draws = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
