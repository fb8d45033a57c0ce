// Package config loads runtime configuration for the docsync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string     data directory holding docsync.db and state.db
//	-u string     remote base URL
//	-k string     remote API key
//	-t string     access token of the signed-in user
//	-i duration   auto-sync interval
//	-l string     log level (debug, info, warn, error)
//
// # File schema
//
// Intervals use timex.Duration, so values can be either strings like "5m" or
// integer nanoseconds:
//
//	data_dir: ~/.docsync
//	remote:
//	  url: http://127.0.0.1:8080
//	  api_key: anon
//	sync:
//	  interval: 5m
//	  start_delay: 2s
//	backup:
//	  bucket: docsync-backups
//	  region: eu-north-1
//
// The remote is considered configured only when both its URL and API key are
// set. Environment variables are not read.
package config
