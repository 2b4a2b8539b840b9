package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is configuration loaded from a YAML file:
//
//	errnotice:
//	  api_key: "..."
//	  endpoint: https://api.honeybadger.io/v1/notices
//	  app_name: shop
//	  app_version: 2.4.1
//	  environment: production
//	  excluded_errors:
//	    - "*errnotice/internal/x.NotFoundError"
type FileConfig struct {
	StaticConfig `yaml:"errnotice"`
}

// LoadFileConfig reads, parses, and validates the YAML file at path.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
