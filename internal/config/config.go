package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// BackendConfig holds the connection settings for the hosted services.
type BackendConfig struct {
	// DatabaseURL is the hosted relational store DSN (postgres://...).
	// When empty the client falls back to a local SQLite file.
	DatabaseURL string `mapstructure:"database_url" yaml:"database_url"`

	// RedisURL enables the push change feed when set; the client degrades
	// to polling without it.
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`

	// Object storage (S3-compatible) settings.
	StorageEndpoint  string `mapstructure:"storage_endpoint" yaml:"storage_endpoint"`
	StorageAccessKey string `mapstructure:"storage_access_key" yaml:"storage_access_key"`
	StorageSecretKey string `mapstructure:"storage_secret_key" yaml:"storage_secret_key"`
	StorageBucket    string `mapstructure:"storage_bucket" yaml:"storage_bucket"`
	StorageUseSSL    bool   `mapstructure:"storage_use_ssl" yaml:"storage_use_ssl"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`

	// ReminderIntervalMin is how often the deadline reminder sweep runs.
	ReminderIntervalMin int `mapstructure:"reminder_interval_min" yaml:"reminder_interval_min"`

	// FeedPollIntervalSec is the polling cadence used when no push
	// channel is available.
	FeedPollIntervalSec int `mapstructure:"feed_poll_interval_sec" yaml:"feed_poll_interval_sec"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/atelier/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "atelier", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Display:             DisplayConfig{Theme: "default"},
		ReminderIntervalMin: 30,
		FeedPollIntervalSec: 60,
	}
}

// Load reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("display.theme", "default")
	v.SetDefault("reminder_interval_min", 30)
	v.SetDefault("feed_poll_interval_sec", 60)
	v.SetDefault("backend.storage_bucket", "atelier-media")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.ReminderIntervalMin <= 0 {
		cfg.ReminderIntervalMin = 30
	}
	if cfg.FeedPollIntervalSec <= 0 {
		cfg.FeedPollIntervalSec = 60
	}

	return cfg, nil
}

// Save writes the given configuration to a YAML file at path, creating
// parent directories if needed.
func Save(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("display", cfg.Display)
	v.Set("reminder_interval_min", cfg.ReminderIntervalMin)
	v.Set("feed_poll_interval_sec", cfg.FeedPollIntervalSec)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
