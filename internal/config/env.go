package config

import (
	"fmt"
	"log/slog"

	"errnotice/internal/domain/entity"
	tunables "errnotice/internal/pkg/config"
	pkgconfig "errnotice/pkg/config"
)

// Environment variables read by LoadEnvConfig.
const (
	EnvAPIKey            = "ERRNOTICE_API_KEY"
	EnvEndpoint          = "ERRNOTICE_ENDPOINT"
	EnvAppName           = "ERRNOTICE_APP_NAME"
	EnvAppVersion        = "ERRNOTICE_APP_VERSION"
	EnvEnvironment       = "ERRNOTICE_ENVIRONMENT"
	EnvExclude           = "ERRNOTICE_EXCLUDE"
	EnvDisabled          = "ERRNOTICE_DISABLED"
	EnvFlattenMode       = "ERRNOTICE_FLATTEN_MODE"
	EnvLanguage          = "ERRNOTICE_LANGUAGE"
	EnvRequestsPerSecond = "ERRNOTICE_REQUESTS_PER_SECOND"
	EnvBurst             = "ERRNOTICE_BURST"
)

// Bounds for the throttling tunables.
const (
	maxRequestsPerSecond = 10000
	maxBurst             = 10000
)

// EnvConfig is configuration read from ERRNOTICE_* environment variables.
// ERRNOTICE_EXCLUDE is a comma-separated list of type names.
type EnvConfig struct {
	StaticConfig
}

type loadOptions struct {
	logger  *slog.Logger
	metrics *tunables.ConfigMetrics
}

// LoadOption configures LoadEnvConfig and Load.
type LoadOption func(*loadOptions)

// WithLogger sets the logger for fallback warnings. Default: slog.Default().
func WithLogger(logger *slog.Logger) LoadOption {
	return func(o *loadOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records rejected tunables in m.
func WithMetrics(m *tunables.ConfigMetrics) LoadOption {
	return func(o *loadOptions) { o.metrics = m }
}

// NewClientMetrics registers the errnotice_client_config_* metrics on the
// default registry. Call it once per process.
func NewClientMetrics() *tunables.ConfigMetrics {
	return tunables.NewConfigMetrics("errnotice_client")
}

// LoadEnvConfig reads and validates the environment.
//
// Credentials and the endpoint are required. The tunables (flatten mode,
// requests per second, burst) are fail-open: a malformed value keeps its
// default, logs a warning and counts a fallback.
func LoadEnvConfig(opts ...LoadOption) (*EnvConfig, error) {
	o := loadOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := &EnvConfig{StaticConfig: StaticConfig{
		Key:        pkgconfig.GetEnvString(EnvAPIKey, ""),
		URL:        pkgconfig.GetEnvString(EnvEndpoint, ""),
		AppName:    pkgconfig.GetEnvString(EnvAppName, ""),
		AppVersion: pkgconfig.GetEnvString(EnvAppVersion, ""),
		Env:        pkgconfig.GetEnvString(EnvEnvironment, ""),
		Exclude:    pkgconfig.GetEnvStringList(EnvExclude, nil),
		Disabled:   pkgconfig.GetEnvBool(EnvDisabled, false),
		Language:   pkgconfig.GetEnvString(EnvLanguage, ""),
	}}

	fallbackApplied := false
	warn := func(field string, warnings []string) {
		fallbackApplied = true
		if o.metrics != nil {
			o.metrics.RecordFallback(field)
		}
		for _, w := range warnings {
			o.logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", w))
		}
	}

	flatten := tunables.LoadEnvString(EnvFlattenMode, entity.CauseOwnFrames.String(), validateFlattenMode)
	cfg.Flatten = flatten.Value
	if flatten.FallbackApplied {
		warn("flatten_mode", flatten.Warnings)
	}

	rps := tunables.LoadEnvFloat(EnvRequestsPerSecond, 0, func(v float64) error {
		return tunables.ValidateFloatRange(v, 0, maxRequestsPerSecond)
	})
	cfg.RatePerSec = rps.Value
	if rps.FallbackApplied {
		warn("requests_per_second", rps.Warnings)
	}

	burst := tunables.LoadEnvInt(EnvBurst, 0, func(v int) error {
		return tunables.ValidateIntRange(v, 0, maxBurst)
	})
	cfg.RateBurst = burst.Value
	if burst.FallbackApplied {
		warn("burst", burst.Warnings)
	}

	if o.metrics != nil {
		o.metrics.SetFallbackActive(fallbackApplied)
		o.metrics.RecordLoadTimestamp()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateFlattenMode(s string) error {
	switch s {
	case entity.CauseOwnFrames.String(), entity.OuterFramesReused.String():
		return nil
	default:
		return fmt.Errorf("unknown flatten mode %q", s)
	}
}
