package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/flagx"
)

// Flags are the command-line flags owned by this package. The command
// dispatcher must not see them; strip them with flagx.StripArgs together
// with flagx.ConfigFileFlags.
var Flags = []string{"-a", "-d", "-i", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the contest API
//	-d string   path of the local session database
//	-i int      submission poll interval in seconds
//	-l string   log format: text, json or zap
//
// args is filtered with flagx.FilterArgs first, so flags owned by other
// components do not interfere.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, Flags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the contest API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local session database")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Seconds()), "submission poll interval (in seconds)")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format: text, json or zap")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// keep sub-second intervals from JSON/env unless -i was given
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.PollInterval = time.Duration(*pollInterval) * time.Second
		}
	})
}
