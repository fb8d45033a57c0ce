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

// FileConfig is an intermediate DTO used only for reading configuration
// files. Empty fields keep the current value.
type FileConfig struct {
	HTTPAddr                    string         `json:"http_addr" yaml:"http_addr"`
	GRPCAddr                    string         `json:"grpc_addr" yaml:"grpc_addr"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	APIKey                      string         `json:"api_key" yaml:"api_key"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/-config. YAML is chosen by the
// .yaml/.yml extension, JSON otherwise.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	for dst, v := range map[*string]string{
		&config.HTTPAddr:    c.HTTPAddr,
		&config.GRPCAddr:    c.GRPCAddr,
		&config.DatabaseDSN: c.DatabaseDSN,
		&config.APIKey:      c.APIKey,
		&config.SecretKey:   c.SecretKey,
		&config.LogLevel:    c.LogLevel,
	} {
		if v != "" {
			*dst = v
		}
	}
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	return nil
}
