package config

import (
	"encoding/json"
	"os"

	"github.com/ccaio-oliveira/test-alugamais/internal/flagx"
	"github.com/ccaio-oliveira/test-alugamais/internal/timex"
)

// JsonConfig mirrors Config for JSON unmarshalling. It uses timex.Duration
// for interval fields, which allows parsing both string values such as "15m"
// and integer nanoseconds. After unmarshalling, its fields are copied into
// the runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr           string         `json:"endpoint_addr"`
	DatabaseDSN            string         `json:"database_dsn"`
	SecretKey              string         `json:"secret_key"`
	TokenValidityDuration  timex.Duration `json:"token_validity_duration"`
	SessionCleanupInterval timex.Duration `json:"session_cleanup_interval"`
	BcryptCost             int            `json:"bcrypt_cost"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. Keys absent from the
// file keep the values already in config, so a partial file only overrides
// what it names. If the file cannot be read or contains invalid JSON, the
// function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

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
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.SessionCleanupInterval.Duration > 0 {
		config.SessionCleanupInterval = c.SessionCleanupInterval.Duration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
}
