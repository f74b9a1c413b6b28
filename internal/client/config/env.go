package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvAPIURL       = "CONTEST_API_URL"
	EnvDatabase     = "CONTEST_DB"
	EnvPollInterval = "CONTEST_POLL_INTERVAL"
	EnvLogFormat    = "CONTEST_LOG_FORMAT"
)

// envFile is loaded, if present, before the environment is read. Variables
// already set in the process environment win over the file.
var envFile = ".env"

// parseEnv overlays cfg with CONTEST_* environment variables.
func parseEnv(cfg *Config) {
	// a missing .env is the normal case
	_ = godotenv.Load(envFile)

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(EnvPollInterval); v != "" {
		d, err := parseInterval(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvPollInterval, err))
		}
		cfg.PollInterval = d
	}
}

// parseInterval accepts a Go duration ("1500ms") or whole seconds ("2").
func parseInterval(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
