// Package config loads the bloco YAML configuration file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/bloco/pkg/autosave"
	"github.com/aretw0/bloco/pkg/core"
)

const (
	configDir  = "bloco"
	configFile = "config.yaml"
)

// Config is the resolved configuration.
type Config struct {
	Storage  StorageConfig
	Autosave AutosaveConfig
	Log      LogConfig
}

// StorageConfig selects the adapter and where it keeps data.
// An empty Path means the platform default.
type StorageConfig struct {
	Adapter string
	Path    string
	Key     string
}

// AutosaveConfig tunes the debounce scheduler.
type AutosaveConfig struct {
	Interval time.Duration
}

// LogConfig configures the CLI logger. An empty File logs to stderr.
type LogConfig struct {
	Level      slog.Level
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// rawConfig is the YAML-unmarshaling intermediary.
type rawConfig struct {
	Storage struct {
		Adapter string `yaml:"adapter"`
		Path    string `yaml:"path"`
		Key     string `yaml:"key"`
	} `yaml:"storage"`
	Autosave struct {
		Interval string `yaml:"interval"`
	} `yaml:"autosave"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  *int   `yaml:"max_size_mb"`
		MaxBackups *int   `yaml:"max_backups"`
	} `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Adapter: "fs",
			Key:     core.DefaultKey,
		},
		Autosave: AutosaveConfig{
			Interval: autosave.DefaultInterval,
		},
		Log: LogConfig{
			Level:      slog.LevelInfo,
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Path returns the default config file location:
// $XDG_CONFIG_HOME/bloco/config.yaml, falling back to the user config dir.
func Path() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, configDir, configFile)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configDir, configFile)
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path.
// If path is empty, uses Path(). A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = Path()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := mergeConfig(cfg, &raw); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.Storage.Path = ExpandPath(cfg.Storage.Path)
	cfg.Log.File = ExpandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// mergeConfig merges raw config values into the config.
func mergeConfig(cfg *Config, raw *rawConfig) error {
	if raw.Storage.Adapter != "" {
		cfg.Storage.Adapter = strings.ToLower(raw.Storage.Adapter)
	}
	if raw.Storage.Path != "" {
		cfg.Storage.Path = raw.Storage.Path
	}
	if raw.Storage.Key != "" {
		cfg.Storage.Key = raw.Storage.Key
	}

	if raw.Autosave.Interval != "" {
		d, err := time.ParseDuration(raw.Autosave.Interval)
		if err != nil {
			return fmt.Errorf("autosave.interval: %w", err)
		}
		cfg.Autosave.Interval = d
	}

	if raw.Log.Level != "" {
		level, err := ParseLevel(raw.Log.Level)
		if err != nil {
			return err
		}
		cfg.Log.Level = level
	}
	if raw.Log.File != "" {
		cfg.Log.File = raw.Log.File
	}
	if raw.Log.MaxSizeMB != nil {
		cfg.Log.MaxSizeMB = *raw.Log.MaxSizeMB
	}
	if raw.Log.MaxBackups != nil {
		cfg.Log.MaxBackups = *raw.Log.MaxBackups
	}
	return nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Storage.Adapter {
	case "fs", "sqlite", "memory":
	default:
		return fmt.Errorf("storage.adapter: unknown adapter %q", c.Storage.Adapter)
	}
	if c.Autosave.Interval <= 0 {
		return fmt.Errorf("autosave.interval must be positive, got %s", c.Autosave.Interval)
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups < 0 {
		c.Log.MaxBackups = 0
	}
	return nil
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// ExpandPath expands ~ to home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
