// Package config loads the daemon configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "SHIELDD_CONFIG"

// Config holds daemon settings that live outside the persisted user
// settings document: where state is stored and how the process behaves.
type Config struct {
	// DataDir holds the settings store, statistics, key file, and pidfile.
	DataDir string `yaml:"data_dir"`
	// Encrypted selects the SQLCipher store backend instead of plain JSON.
	Encrypted bool `yaml:"encrypted"`
	// TickInterval is how often the daemon corrects timer completion.
	// Remaining time self-corrects from absolute timestamps, so one minute
	// granularity is enough.
	TickInterval time.Duration `yaml:"tick_interval"`
	// LogLevel is a zap level string: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Notifications toggles desktop notifications from the daemon.
	Notifications bool `yaml:"notifications"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:       filepath.Join(home, ".focusshield"),
		Encrypted:     false,
		TickInterval:  time.Minute,
		LogLevel:      "info",
		Notifications: true,
	}
}

// DefaultPath returns the config file location, honoring EnvConfigPath.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".focusshield", "config.yaml")
}

// Load reads the config file at path, filling missing fields from Default.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
