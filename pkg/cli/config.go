package cli

import (
	"fmt"

	"lakeboard/internal/config"
)

// resolveConfig loads configuration the same way the server binary does:
// .env file, then environment, then the optional YAML file as a fallback
// layer for anything the environment did not set.
func resolveConfig(configPath string) (*config.Config, error) {
	_ = config.LoadDotEnv(".env") // optional

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if configPath != "" {
		if err := cfg.LoadFile(configPath); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}
	return cfg, nil
}
