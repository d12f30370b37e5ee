// Package config holds the application settings.
//
// Settings are layered: defaults from New, then an optional YAML file, then
// OPECBRAIN_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	AppName = "opecbrain"

	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Config struct {
	// DataDir holds the record storage, the instance lock and the log file.
	DataDir string        `koanf:"data_dir"`
	Storage StorageConfig `koanf:"storage"`
	Web     WebConfig     `koanf:"web"`
	// Hotkey opens the add form, e.g. "ctrl+0" or "ctrl+shift+f2".
	Hotkey string    `koanf:"hotkey"`
	Icon   string    `koanf:"icon"`
	Log    LogConfig `koanf:"log"`
}

type StorageConfig struct {
	Backend string `koanf:"backend"`
	// File is relative to DataDir unless absolute.
	File   string `koanf:"file"`
	Driver string `koanf:"driver"`
}

type WebConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

type LogConfig struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// New returns the defaults.
func New() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Storage: StorageConfig{
			Backend: BackendJSON,
			Driver:  "sqlite",
		},
		Web: WebConfig{
			Enabled: true,
			// localhost only, avoids firewall prompts on Windows
			Addr: "127.0.0.1:8080",
		},
		Hotkey: "ctrl+0",
		Log: LogConfig{
			Level:      "info",
			File:       AppName + ".log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
	}
}

// DefaultDataDir is <user config dir>/opecbrain, falling back to APPDATA and
// then to the working directory.
func DefaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, AppName)
	}
	return AppName
}

// StoragePath resolves the storage file, choosing the default name from the
// backend when none is configured.
func (c *Config) StoragePath() string {
	file := c.Storage.File
	if file == "" {
		file = "historico.json"
		if c.Storage.Backend == BackendSQLite {
			file = "historico.db"
		}
	}
	return c.resolve(file)
}

// LogPath resolves the log file; empty means stderr.
func (c *Config) LogPath() string {
	if c.Log.File == "" {
		return ""
	}
	return c.resolve(c.Log.File)
}

func (c *Config) LockPath() string {
	return c.resolve(AppName + ".lock")
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	}
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	switch c.Storage.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("%w: unknown sqlite driver %q", ErrInvalidConfig, c.Storage.Driver)
	}
	if c.Web.Enabled && strings.TrimSpace(c.Web.Addr) == "" {
		return fmt.Errorf("%w: web.addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}
