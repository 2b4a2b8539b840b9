// Package config provides fail-open environment loading for tunables.
//
// A malformed or out-of-range value never stops the process: the loader
// reports the problem in ConfigLoadResult and the caller keeps the default,
// logging a warning and bumping ConfigMetrics.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ConfigLoadResult is the outcome of loading one environment variable.
type ConfigLoadResult[T any] struct {
	// Value is the parsed value, or the default when unset or invalid
	Value T

	// Warnings describe why the default was used. Empty when FallbackApplied is false.
	Warnings []string

	// FallbackApplied is true when the variable was set but rejected
	FallbackApplied bool
}

// LoadEnv reads envKey, parses it, and validates it. An unset or blank
// variable yields the default without a warning. A parse or validation error
// yields the default with FallbackApplied set.
func LoadEnv[T any](envKey string, defaultValue T, parse func(string) (T, error), validator func(T) error) ConfigLoadResult[T] {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return ConfigLoadResult[T]{Value: defaultValue}
	}

	value, err := parse(raw)
	if err == nil && validator != nil {
		err = validator(value)
	}
	if err != nil {
		return ConfigLoadResult[T]{
			Value: defaultValue,
			Warnings: []string{fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%v'",
				envKey, raw, err, defaultValue)},
			FallbackApplied: true,
		}
	}

	return ConfigLoadResult[T]{Value: value}
}

// LoadEnvString loads a string with optional validation.
func LoadEnvString(envKey, defaultValue string, validator func(string) error) ConfigLoadResult[string] {
	return LoadEnv(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validator)
}

// LoadEnvInt loads a base-10 integer.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult[int] {
	return LoadEnv(envKey, defaultValue, func(s string) (int, error) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid integer format")
		}
		return v, nil
	}, validator)
}

// LoadEnvFloat loads a float64.
func LoadEnvFloat(envKey string, defaultValue float64, validator func(float64) error) ConfigLoadResult[float64] {
	return LoadEnv(envKey, defaultValue, func(s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number format")
		}
		return v, nil
	}, validator)
}

// LoadEnvDuration loads a Go duration string such as "5s" or "1m30s".
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult[time.Duration] {
	return LoadEnv(envKey, defaultValue, time.ParseDuration, validator)
}
