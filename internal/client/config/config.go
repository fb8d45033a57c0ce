package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// Config holds runtime settings for the docsync CLI.
type Config struct {
	DataDir  string
	LogLevel string

	RemoteURL      string
	RemoteAPIKey   string
	AccessToken    string
	RequestTimeout time.Duration

	SyncInterval   time.Duration
	SyncStartDelay time.Duration
	DebounceDelay  time.Duration

	Backup BackupConfig
}

// BackupConfig addresses an S3-compatible bucket. Empty keys fall back to the
// default AWS credential chain.
type BackupConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = ".docsync"
	c.LogLevel = "info"
	c.RequestTimeout = 15 * time.Second
	c.SyncInterval = 5 * time.Minute
	c.SyncStartDelay = 2 * time.Second
	c.DebounceDelay = 400 * time.Millisecond
	c.Backup.Region = "us-east-1"
	c.Backup.Prefix = "docsync/"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if any) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RemoteConfigured reports whether the sync remote can be used.
func (c *Config) RemoteConfigured() bool {
	return c.RemoteURL != "" && c.RemoteAPIKey != ""
}

// BackupConfigured reports whether snapshots can be uploaded.
func (c *Config) BackupConfigured() bool {
	return c.Backup.Bucket != ""
}

func (c *Config) LocalDBPath() string { return filepath.Join(c.DataDir, "docsync.db") }

func (c *Config) StateDBPath() string { return filepath.Join(c.DataDir, "state.db") }

// Level maps LogLevel onto slog; unknown names mean info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
