package worker

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.MaxConcurrent)
	assert.Equal(t, 5*time.Second, cfg.AcquireTimeout)
}

func TestPoolConfig_Validate(t *testing.T) {
	cfg := PoolConfig{MaxConcurrent: 0, AcquireTimeout: time.Hour}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max concurrent")
	assert.Contains(t, err.Error(), "acquire timeout")
}

func TestLoadConfigFromEnv(t *testing.T) {
	tests := []struct {
		name           string
		maxConcurrent  string
		acquireTimeout string
		want           PoolConfig
		wantFallback   float64
	}{
		{"unset uses defaults", "", "", DefaultConfig(), 0},
		{"valid values", "25", "250ms", PoolConfig{MaxConcurrent: 25, AcquireTimeout: 250 * time.Millisecond}, 0},
		{"invalid values fall back", "1000", "forever", DefaultConfig(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvMaxConcurrent, tt.maxConcurrent)
			t.Setenv(EnvAcquireTimeout, tt.acquireTimeout)
			var logs bytes.Buffer
			metrics := NewPoolMetricsWith(prometheus.NewRegistry())

			cfg, err := LoadConfigFromEnv(slog.New(slog.NewTextHandler(&logs, nil)), metrics)

			require.NoError(t, err)
			assert.Equal(t, tt.want, *cfg)
			assert.Equal(t, tt.wantFallback, testutil.ToFloat64(metrics.FallbackActive))
			if tt.wantFallback == 1 {
				assert.Contains(t, logs.String(), "Configuration fallback applied")
				assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("max_concurrent")))
				assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("acquire_timeout")))
			}
		})
	}
}

func TestLoadConfigFromEnv_NilMetrics(t *testing.T) {
	t.Setenv(EnvMaxConcurrent, "bad")
	cfg, err := LoadConfigFromEnv(slog.Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxConcurrent)
}
