// Package config provides the sources of client configuration: a plain
// struct for code, a YAML file, and the process environment. All three
// satisfy notify.Configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"errnotice/internal/domain/entity"
	pkgconfig "errnotice/internal/pkg/config"
)

// StaticConfig is client configuration held in memory. The zero value fails
// Validate unless Disabled is set.
type StaticConfig struct {
	Key        string   `yaml:"api_key"`
	URL        string   `yaml:"endpoint"`
	AppName    string   `yaml:"app_name"`
	AppVersion string   `yaml:"app_version"`
	Env        string   `yaml:"environment"`
	Exclude    []string `yaml:"excluded_errors"`
	Disabled   bool     `yaml:"disabled"`
	Flatten    string   `yaml:"flatten_mode"`
	Language   string   `yaml:"language"`
	RatePerSec float64  `yaml:"requests_per_second"`
	RateBurst  int      `yaml:"burst"`
}

// APIKey implements notify.Configuration.
func (c *StaticConfig) APIKey() string { return c.Key }

// Endpoint implements notify.Configuration.
func (c *StaticConfig) Endpoint() string { return c.URL }

// Name implements notify.Configuration.
func (c *StaticConfig) Name() string { return c.AppName }

// Version implements notify.Configuration. Empty means not configured.
func (c *StaticConfig) Version() string { return c.AppVersion }

// Environment implements notify.Configuration.
func (c *StaticConfig) Environment() string { return c.Env }

// ExcludedErrors implements notify.Configuration.
func (c *StaticConfig) ExcludedErrors() []string { return c.Exclude }

// Enabled reports whether notices should be sent at all.
func (c *StaticConfig) Enabled() bool { return !c.Disabled }

// FlattenMode parses the flatten_mode setting. Unknown values select the default.
func (c *StaticConfig) FlattenMode() entity.FlattenMode {
	return entity.ParseFlattenMode(c.Flatten)
}

// Validate checks the settings needed to send notices. A disabled
// configuration is always valid.
func (c *StaticConfig) Validate() error {
	if c.Disabled {
		return nil
	}

	var errs []error
	if strings.TrimSpace(c.Key) == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if strings.TrimSpace(c.URL) == "" {
		errs = append(errs, ErrMissingEndpoint)
	} else if err := pkgconfig.ValidateHTTPURL(c.URL); err != nil {
		errs = append(errs, fmt.Errorf("endpoint: %w", err))
	}
	if c.RatePerSec < 0 {
		errs = append(errs, fmt.Errorf("requests_per_second must not be negative, got %g", c.RatePerSec))
	}
	if c.RateBurst < 0 {
		errs = append(errs, fmt.Errorf("burst must not be negative, got %d", c.RateBurst))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
