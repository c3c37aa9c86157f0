// Package config loads the TOML configuration file and applies environment
// overrides on top of it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	User     UserConfig     `toml:"user"`
	Watch    WatchConfig    `toml:"watch"`
	Log      LogConfig      `toml:"log"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
	Seed bool   `toml:"seed"`
}

type UserConfig struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

type WatchConfig struct {
	Enabled    bool `toml:"enabled"`
	DebounceMS int  `toml:"debounce_ms"`
}

type LogConfig struct {
	Path  string `toml:"path"`
	Debug bool   `toml:"debug"`
}

func Default() Config {
	homeDir, _ := os.UserHomeDir()
	base := filepath.Join(homeDir, ".config", "triaged")
	return Config{
		Database: DatabaseConfig{Path: filepath.Join(base, "triaged.db")},
		Watch:    WatchConfig{Enabled: true, DebounceMS: 250},
		Log:      LogConfig{Path: filepath.Join(base, "triaged.log")},
	}
}

// Load reads the config file from the standard location when present and
// finishes with environment overrides.
func Load() (Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("getting home dir: %w", err)
	}
	return LoadFrom(filepath.Join(homeDir, ".config", "triaged", "config.toml"))
}

func LoadFrom(configPath string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(configPath); err == nil {
		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			return Config{}, fmt.Errorf("reading config file: %w", readErr)
		}
		if _, decErr := toml.Decode(string(data), &cfg); decErr != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", decErr)
		}
	}
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.Path = expandPath(cfg.Log.Path)
	return FromEnv(cfg), nil
}

// FromEnv applies TRIAGED_* environment overrides to a base config.
func FromEnv(base Config) Config {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("TRIAGED_DB_PATH")); v != "" {
		cfg.Database.Path = expandPath(v)
	}
	if v, ok := getEnvBool("TRIAGED_DB_SEED"); ok {
		cfg.Database.Seed = v
	}
	if v := strings.TrimSpace(os.Getenv("TRIAGED_USER_ID")); v != "" {
		cfg.User.ID = v
	}
	if v := strings.TrimSpace(os.Getenv("TRIAGED_USER_NAME")); v != "" {
		cfg.User.Name = v
	}
	if v, ok := getEnvBool("TRIAGED_WATCH_ENABLED"); ok {
		cfg.Watch.Enabled = v
	}
	if v, ok := getEnvInt("TRIAGED_WATCH_DEBOUNCE_MS"); ok && v > 0 {
		cfg.Watch.DebounceMS = v
	}
	if v := strings.TrimSpace(os.Getenv("TRIAGED_LOG_PATH")); v != "" {
		cfg.Log.Path = expandPath(v)
	}
	if v, ok := getEnvBool("TRIAGED_LOG_DEBUG"); ok {
		cfg.Log.Debug = v
	}
	return cfg
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
