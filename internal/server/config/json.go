package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/contestclient/internal/flagx"
)

// JsonConfig is the DTO read from the -c/-config file. Seed is a pointer so
// an absent field keeps the current value.
type JsonConfig struct {
	EndpointAddr string `json:"endpoint_addr"`
	SecretKey    string `json:"secret_key"`
	LogFormat    string `json:"log_format"`
	Seed         *bool  `json:"seed"`
}

// parseJson overlays config with the JSON file named by -c or -config.
// Panics if the file cannot be read or contains invalid JSON.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFile(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.LogFormat != "" {
		config.LogFormat = c.LogFormat
	}
	if c.Seed != nil {
		config.Seed = *c.Seed
	}
}
