package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"dossier/internal/config"
)

// resolveConfigPath normalizes a config path or finds one from the working
// directory. An empty result means no config file exists.
func resolveConfigPath(configPath string) (string, error) {
	if strings.TrimSpace(configPath) == "" {
		return config.Locate("")
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return abs, nil
}

// loadConfig resolves and loads the config for a command.
func loadConfig(configPath string) (config.Config, error) {
	resolved, err := resolveConfigPath(configPath)
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(resolved)
}
