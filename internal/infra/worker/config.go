package worker

import (
	"fmt"
	"log/slog"
	"time"

	"errnotice/internal/pkg/config"
)

// Environment variables read by LoadConfigFromEnv.
const (
	EnvMaxConcurrent  = "ERRNOTICE_MAX_CONCURRENT"
	EnvAcquireTimeout = "ERRNOTICE_ACQUIRE_TIMEOUT"
)

// PoolConfig controls the delivery worker pool.
//
// Example usage:
//
//	cfg, _ := worker.LoadConfigFromEnv(logger, worker.NewPoolMetrics())
//	pool := worker.NewPool(*cfg, logger)
//	defer pool.Shutdown(ctx)
type PoolConfig struct {
	// MaxConcurrent is the number of deliveries allowed in flight.
	// Range: 1-100
	// Default: 10
	MaxConcurrent int

	// AcquireTimeout is how long a submitted task waits for a free slot
	// before it is dropped.
	// Range: 10ms-1m
	// Default: 5s
	AcquireTimeout time.Duration
}

// DefaultConfig returns the pool defaults.
func DefaultConfig() PoolConfig {
	return PoolConfig{
		MaxConcurrent:  10,
		AcquireTimeout: 5 * time.Second,
	}
}

func validateMaxConcurrent(v int) error {
	return config.ValidateIntRange(v, 1, 100)
}

func validateAcquireTimeout(d time.Duration) error {
	return config.ValidateDuration(d, 10*time.Millisecond, time.Minute)
}

// Validate checks every field and reports all problems together.
func (c *PoolConfig) Validate() error {
	var errs []error

	if err := validateMaxConcurrent(c.MaxConcurrent); err != nil {
		errs = append(errs, fmt.Errorf("max concurrent: %w", err))
	}
	if err := validateAcquireTimeout(c.AcquireTimeout); err != nil {
		errs = append(errs, fmt.Errorf("acquire timeout: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the pool configuration with a fail-open strategy:
// any invalid value is replaced by its default, a warning is logged, and the
// fallback metrics are updated. The returned error is always nil.
func LoadConfigFromEnv(logger *slog.Logger, metrics *PoolMetrics) (*PoolConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	warn := func(field, metricField string, warnings []string) {
		fallbackApplied = true
		if metrics != nil {
			metrics.RecordFallback(metricField)
		}
		for _, warning := range warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	maxConcurrent := config.LoadEnvInt(EnvMaxConcurrent, cfg.MaxConcurrent, validateMaxConcurrent)
	cfg.MaxConcurrent = maxConcurrent.Value
	if maxConcurrent.FallbackApplied {
		warn("MaxConcurrent", "max_concurrent", maxConcurrent.Warnings)
	}

	acquireTimeout := config.LoadEnvDuration(EnvAcquireTimeout, cfg.AcquireTimeout, validateAcquireTimeout)
	cfg.AcquireTimeout = acquireTimeout.Value
	if acquireTimeout.FallbackApplied {
		warn("AcquireTimeout", "acquire_timeout", acquireTimeout.Warnings)
	}

	if metrics != nil {
		metrics.SetFallbackActive(fallbackApplied)
		metrics.RecordLoadTimestamp()
	}

	return &cfg, nil
}
