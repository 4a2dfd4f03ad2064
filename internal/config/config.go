// Package config loads service settings from defaults, an optional config
// file, a .env file and COMPETITION_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
	"github.com/ZanzyTHEbar/distributor-competition/internal/export"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. COMPETITION_PORT.
const EnvPrefix = "COMPETITION"

// Config represents the service configuration
type Config struct {
	Port            int            `mapstructure:"port"`
	LogLevel        string         `mapstructure:"log_level"`
	Weights         WeightsConfig  `mapstructure:"weights"`
	SessionTTL      time.Duration  `mapstructure:"session_ttl"`
	MaxUploadBytes  int64          `mapstructure:"max_upload_bytes"`
	RateLimitPerMin int            `mapstructure:"rate_limit_per_min"`
	AllowedOrigins  []string       `mapstructure:"allowed_origins"`
	Branding        BrandingConfig `mapstructure:"branding"`
	EnableSwagger   bool           `mapstructure:"enable_swagger"`
	EnableHSTS      bool           `mapstructure:"enable_hsts"`
	EnableProfiling bool           `mapstructure:"enable_profiling"`
}

// WeightsConfig holds the point multipliers a new session starts with
type WeightsConfig struct {
	Activity int `mapstructure:"activity"`
	AMH      int `mapstructure:"amh"`
	URUS     int `mapstructure:"urus"`
}

// BrandingConfig is the header text printed on pages and exports
type BrandingConfig struct {
	Company  string `mapstructure:"company"`
	Title    string `mapstructure:"title"`
	Subtitle string `mapstructure:"subtitle"`
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	weights := competition.DefaultPointConfig()
	branding := export.DefaultBranding()

	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("weights.activity", weights.ActivityWeight)
	v.SetDefault("weights.amh", weights.PrimaryWeight)
	v.SetDefault("weights.urus", weights.SecondaryWeight)
	v.SetDefault("session_ttl", 12*time.Hour)
	v.SetDefault("max_upload_bytes", int64(10<<20))
	v.SetDefault("rate_limit_per_min", 120)
	v.SetDefault("allowed_origins", []string{"http://localhost:8080"})
	v.SetDefault("branding.company", branding.Company)
	v.SetDefault("branding.title", branding.Title)
	v.SetDefault("branding.subtitle", branding.Subtitle)
	v.SetDefault("enable_swagger", true)
	v.SetDefault("enable_hsts", false)
	v.SetDefault("enable_profiling", false)
}

// configFiles are probed in the working directory when no explicit file is given.
var configFiles = []string{"competition.yaml", "competition.yml", "competition.json"}

// Load builds the configuration. configFile may be empty, in which case the
// default file names are tried and their absence is not an error. A .env file
// in the working directory is loaded into the environment when present.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		for _, path := range configFiles {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", path, err)
			}
			break
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	if c.RateLimitPerMin <= 0 {
		return fmt.Errorf("rate_limit_per_min must be positive")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level: %s. Must be 'debug', 'info', 'warn', or 'error'", c.LogLevel)
	}

	return nil
}

// PointConfig returns the weights a new session starts with.
func (c *Config) PointConfig() competition.PointConfig {
	return competition.PointConfig{
		ActivityWeight:  c.Weights.Activity,
		PrimaryWeight:   c.Weights.AMH,
		SecondaryWeight: c.Weights.URUS,
	}
}

// BrandingText returns the document header text.
func (c *Config) BrandingText() export.Branding {
	return export.Branding{
		Company:  c.Branding.Company,
		Title:    c.Branding.Title,
		Subtitle: c.Branding.Subtitle,
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
