// Package config handles configuration for the development API server,
// including defaults, JSON overlay, and command-line flags.
package config

import "os"

// Config holds runtime settings for the development API server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP API.
//   - SecretKey: HMAC secret for signing session tokens (HS256). Empty means
//     a random secret per run, so tokens do not survive a restart.
//   - LogFormat: text, json or zap.
//   - Seed: load the demo account, contest and problems on start.
type Config struct {
	EndpointAddr string
	SecretKey    string
	LogFormat    string
	Seed         bool
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":5000"
	c.SecretKey = ""
	c.LogFormat = "zap"
	c.Seed = true
}

// LoadConfig builds a Config from defaults, then an optional JSON file and
// finally command-line flags.
func LoadConfig() *Config {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
