package config

import (
	"flag"

	"github.com/dmitrijs2005/contestclient/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-s string   token HMAC secret key
//	-l string   log format: text, json or zap
//	-seed bool  load demo data
//
// args is filtered with flagx.FilterArgs first, avoiding collisions with
// other components.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-l", "-seed"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format: text, json or zap")
	fs.BoolVar(&config.Seed, "seed", config.Seed, "load demo data")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
