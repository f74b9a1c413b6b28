package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the contest client.
//
// Fields:
//   - APIBaseURL: scheme://host[:port] of the contest platform API.
//   - DatabasePath: SQLite file holding the saved session (":memory:" keeps
//     nothing between runs).
//   - PollInterval / PollMaxAttempts: submission status polling cadence and bound.
//   - RequestTimeout: client-side timeout of a single API call.
//   - LogFormat: "text", "json" or "zap".
//   - TimerTick: refresh period of the contest countdown.
//   - SessionCheckInterval: how often the REPL re-validates the session.
type Config struct {
	APIBaseURL           string
	DatabasePath         string
	PollInterval         time.Duration
	PollMaxAttempts      int
	RequestTimeout       time.Duration
	LogFormat            string
	TimerTick            time.Duration
	SessionCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000"
	c.DatabasePath = "client.db"
	c.PollInterval = 2 * time.Second
	c.PollMaxAttempts = 150
	c.RequestTimeout = 15 * time.Second
	c.LogFormat = "text"
	c.TimerTick = time.Second
	c.SessionCheckInterval = 30 * time.Second
}

// LoadConfig constructs a Config from the process environment and command
// line. See Load.
func LoadConfig() *Config {
	return Load(os.Args[1:])
}

// Load applies defaults, then overlays values from the environment (and a
// .env file), a JSON file selected with -c/-config, and finally the flags in
// args. Later sources take precedence over earlier ones. Invalid input
// panics.
func Load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
