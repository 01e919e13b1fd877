package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.MealDB.Timeout)
	assert.Equal(t, "https://www.themealdb.com/api/json/v1/1", cfg.MealDB.BaseURL)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 1000, cfg.Metrics.MaxSamples)
	assert.Equal(t, int64(2<<20), cfg.Import.MaxFileBytes)
	assert.Equal(t, 1000, cfg.Import.MaxRecipes)
	assert.True(t, cfg.Storage.SeedDefault)
	assert.Equal(t, time.Second, cfg.DedupWindow)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("MEALDB_BASE_URL", "http://localhost:1234")
	t.Setenv("CACHE_BACKEND", "none")
	t.Setenv("APP_METRICS_MAX_SAMPLES", "50")
	t.Setenv("DEDUP_WINDOW", "0s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://localhost:1234", cfg.MealDB.BaseURL)
	assert.Equal(t, CacheBackendNone, cfg.Cache.Backend)
	assert.Equal(t, 50, cfg.Metrics.MaxSamples)
	assert.Equal(t, time.Duration(0), cfg.DedupWindow)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server port"},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, "unknown cache backend"},
		{"redis without addr", func(c *Config) {
			c.Cache.Backend = CacheBackendRedis
			c.Cache.RedisAddr = ""
		}, "redis address"},
		{"redis zero max size", func(c *Config) {
			c.Cache.Backend = CacheBackendRedis
			c.Cache.MaxSize = 0
		}, "cache max size"},
		{"mealdb without url", func(c *Config) { c.MealDB.BaseURL = "" }, "mealdb base url"},
		{"mealdb disabled without url", func(c *Config) {
			c.MealDB.Enabled = false
			c.MealDB.BaseURL = ""
		}, ""},
		{"rate limit window", func(c *Config) { c.RateLimit.Window = 0 }, "rate limit window"},
		{"metrics samples", func(c *Config) { c.Metrics.MaxSamples = 0 }, "max samples"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
