package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/contestclient/internal/flagx"
	"github.com/dmitrijs2005/contestclient/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "2s" or as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL           string         `json:"api_base_url"`
	DatabasePath         string         `json:"database_path"`
	PollInterval         timex.Duration `json:"poll_interval"`
	PollMaxAttempts      int            `json:"poll_max_attempts"`
	RequestTimeout       timex.Duration `json:"request_timeout"`
	LogFormat            string         `json:"log_format"`
	TimerTick            timex.Duration `json:"timer_tick"`
	SessionCheckInterval timex.Duration `json:"session_check_interval"`
}

// parseJson overlays cfg with the values present in the JSON file named by
// -c or -config in args. Absent or zero fields keep their current value.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigFile(args)
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.PollInterval.Duration > 0 {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.PollMaxAttempts > 0 {
		cfg.PollMaxAttempts = jc.PollMaxAttempts
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
	if jc.TimerTick.Duration > 0 {
		cfg.TimerTick = jc.TimerTick.Duration
	}
	if jc.SessionCheckInterval.Duration > 0 {
		cfg.SessionCheckInterval = jc.SessionCheckInterval.Duration
	}
}
