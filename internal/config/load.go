package config

import (
	"fmt"
	"os"
)

// BaseURLEnv overrides server.base_url when set.
const BaseURLEnv = "DOSSIER_BASE_URL"

// Load reads, parses, normalizes, and validates a config file. An empty
// path yields the defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return Config{}, err
		}
	}
	ApplyEnv(&cfg, os.LookupEnv)
	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the normalized default configuration.
func Default() Config {
	var cfg Config
	Normalize(&cfg)
	return cfg
}

// ApplyEnv copies environment overrides into cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if value, ok := lookup(BaseURLEnv); ok && value != "" {
		cfg.Server.BaseURL = value
	}
}
