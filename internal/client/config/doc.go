// Package config loads runtime configuration for the contest client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: CONTEST_API_URL, CONTEST_DB, CONTEST_POLL_INTERVAL and
//     CONTEST_LOG_FORMAT, optionally seeded from a .env file.
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the contest API
//	-d string   path of the local session database
//	-i int      submission poll interval (seconds)
//	-l string   log format: text, json or zap
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "2s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:5000",
//	  "database_path": "client.db",
//	  "poll_interval": "2s",
//	  "poll_max_attempts": 150,
//	  "request_timeout": "15s",
//	  "log_format": "text",
//	  "timer_tick": "1s",
//	  "session_check_interval": "30s"
//	}
package config
