package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/docsync/internal/flagx"
)

// ValueFlags lists the flags that consume the following argument.
var ValueFlags = []string{"-c", "-config", "-a", "-g", "-d", "-k", "-s", "-t", "-l"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-g string     gRPC health bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-k string     project API key
//	-s string     JWT HMAC secret key
//	-t duration   access token validity
//	-l string     log level
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-k", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run the REST API")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port to run the health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.APIKey, "k", config.APIKey, "API key")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token validity")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
