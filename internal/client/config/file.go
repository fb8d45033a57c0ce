package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/docsync/internal/flagx"
	"github.com/dmitrijs2005/docsync/internal/timex"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Zero values
// leave the corresponding Config field untouched.
type FileConfig struct {
	DataDir  string `json:"data_dir" yaml:"data_dir"`
	LogLevel string `json:"log_level" yaml:"log_level"`

	Remote struct {
		URL         string         `json:"url" yaml:"url"`
		APIKey      string         `json:"api_key" yaml:"api_key"`
		AccessToken string         `json:"access_token" yaml:"access_token"`
		Timeout     timex.Duration `json:"timeout" yaml:"timeout"`
	} `json:"remote" yaml:"remote"`

	Sync struct {
		Interval      timex.Duration `json:"interval" yaml:"interval"`
		StartDelay    timex.Duration `json:"start_delay" yaml:"start_delay"`
		DebounceDelay timex.Duration `json:"debounce_delay" yaml:"debounce_delay"`
	} `json:"sync" yaml:"sync"`

	Backup struct {
		Endpoint  string `json:"endpoint" yaml:"endpoint"`
		Region    string `json:"region" yaml:"region"`
		Bucket    string `json:"bucket" yaml:"bucket"`
		Prefix    string `json:"prefix" yaml:"prefix"`
		AccessKey string `json:"access_key" yaml:"access_key"`
		SecretKey string `json:"secret_key" yaml:"secret_key"`
	} `json:"backup" yaml:"backup"`
}

// parseFile overlays cfg with the file named by -c/-config, if any.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.LogLevel, fc.LogLevel)

	setString(&cfg.RemoteURL, fc.Remote.URL)
	setString(&cfg.RemoteAPIKey, fc.Remote.APIKey)
	setString(&cfg.AccessToken, fc.Remote.AccessToken)
	if fc.Remote.Timeout.Duration > 0 {
		cfg.RequestTimeout = fc.Remote.Timeout.Duration
	}

	if fc.Sync.Interval.Duration > 0 {
		cfg.SyncInterval = fc.Sync.Interval.Duration
	}
	if fc.Sync.StartDelay.Duration > 0 {
		cfg.SyncStartDelay = fc.Sync.StartDelay.Duration
	}
	if fc.Sync.DebounceDelay.Duration > 0 {
		cfg.DebounceDelay = fc.Sync.DebounceDelay.Duration
	}

	setString(&cfg.Backup.Endpoint, fc.Backup.Endpoint)
	setString(&cfg.Backup.Region, fc.Backup.Region)
	setString(&cfg.Backup.Bucket, fc.Backup.Bucket)
	setString(&cfg.Backup.Prefix, fc.Backup.Prefix)
	setString(&cfg.Backup.AccessKey, fc.Backup.AccessKey)
	setString(&cfg.Backup.SecretKey, fc.Backup.SecretKey)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
