package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves the test into dir so stray config or .env files in the package
// directory are not picked up.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, competition.DefaultPointConfig(), cfg.PointConfig())
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.AllowedOrigins)
	assert.Equal(t, "Jack World No.1", cfg.BrandingText().Company)
	assert.True(t, cfg.EnableSwagger)
	assert.False(t, cfg.EnableHSTS)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("COMPETITION_PORT", "9090")
	t.Setenv("COMPETITION_WEIGHTS_ACTIVITY", "7")
	t.Setenv("COMPETITION_SESSION_TTL", "30m")
	t.Setenv("COMPETITION_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("COMPETITION_BRANDING_TITLE", "Spring Push")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 7, cfg.PointConfig().ActivityWeight)
	assert.Equal(t, 1, cfg.PointConfig().PrimaryWeight)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "Spring Push", cfg.BrandingText().Title)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := []byte("port: 3000\nweights:\n  amh: 2\n  urus: 4\nbranding:\n  company: Acme\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "competition.yaml"), yaml, 0o644))

	t.Run("discovered in working directory", func(t *testing.T) {
		cfg, err := Load(viper.New(), "")
		require.NoError(t, err)
		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, competition.PointConfig{ActivityWeight: 5, PrimaryWeight: 2, SecondaryWeight: 4}, cfg.PointConfig())
		assert.Equal(t, "Acme", cfg.Branding.Company)
		assert.Equal(t, "Distributor Competition", cfg.Branding.Title)
	})

	t.Run("explicit file", func(t *testing.T) {
		other := filepath.Join(dir, "other.json")
		require.NoError(t, os.WriteFile(other, []byte(`{"port": 4000}`), 0o644))

		cfg, err := Load(viper.New(), other)
		require.NoError(t, err)
		assert.Equal(t, 4000, cfg.Port)
	})

	t.Run("environment beats file", func(t *testing.T) {
		t.Setenv("COMPETITION_PORT", "5000")
		cfg, err := Load(viper.New(), "")
		require.NoError(t, err)
		assert.Equal(t, 5000, cfg.Port)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(viper.New(), filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.Unsetenv("COMPETITION_LOG_LEVEL"))
	t.Cleanup(func() { _ = os.Unsetenv("COMPETITION_LOG_LEVEL") })
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("COMPETITION_LOG_LEVEL=debug\n"), 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:            8080,
			LogLevel:        "info",
			SessionTTL:      time.Hour,
			MaxUploadBytes:  1024,
			RateLimitPerMin: 60,
		}
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Port = 0 }, "port must be between"},
		{"port too large", func(c *Config) { c.Port = 70000 }, "port must be between"},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, "session_ttl"},
		{"negative upload", func(c *Config) { c.MaxUploadBytes = -1 }, "max_upload_bytes"},
		{"zero rate limit", func(c *Config) { c.RateLimitPerMin = 0 }, "rate_limit_per_min"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}
