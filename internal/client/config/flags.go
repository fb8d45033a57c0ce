package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/docsync/internal/flagx"
)

// ValueFlags lists the flags that consume the following argument. Callers use
// it to separate subcommands from options.
var ValueFlags = []string{"-c", "-config", "-d", "-u", "-k", "-t", "-i", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
// Note: args are filtered through flagx.FilterArgs first, so subcommands and
// their arguments do not reach the flag set.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-u", "-k", "-t", "-i", "-l"})

	fs := flag.NewFlagSet("docsync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.RemoteURL, "u", cfg.RemoteURL, "remote base URL")
	fs.StringVar(&cfg.RemoteAPIKey, "k", cfg.RemoteAPIKey, "remote API key")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	fs.DurationVar(&cfg.SyncInterval, "i", cfg.SyncInterval, "auto-sync interval")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
