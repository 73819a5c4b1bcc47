package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	// max_retries: 0 is "unset" in YAML; -1 requests a single attempt.
	if cfg.Job.MaxRetries == 0 {
		cfg.Job.MaxRetries = 3
	}
	if cfg.Job.BaseDelay <= 0 {
		cfg.Job.BaseDelay = 1 * time.Second
	}
	if cfg.Job.MaxDelay < cfg.Job.BaseDelay {
		cfg.Job.MaxDelay = 30 * time.Second
	}
	if cfg.Job.LockTTL <= 0 {
		cfg.Job.LockTTL = 10 * time.Minute
	}

	return &cfg, nil
}
