package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "redis.internal:6379")

	path := writeConfig(t, `
app:
  name: mortgage-workers
camunda:
  broker_address: zeebe:26500
redis:
  enabled: true
  address: ${TEST_REDIS_ADDR}
policy:
  path: configs/policy.json
workers:
  compute-partial-limit:
    enabled: true
    cache_ttl: 600
  evaluate-readiness:
    enabled: false
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Address)
	assert.Equal(t, "configs/policy.json", cfg.Policy.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Metrics.ListenAddress)

	partial := GetWorkerConfig(cfg, "compute-partial-limit")
	assert.Equal(t, 5, partial.MaxJobsActive)
	assert.Equal(t, 10*time.Second, GetDuration(partial.Timeout))
	assert.Equal(t, 10*time.Minute, partial.CacheDuration())

	assert.False(t, IsWorkerEnabled(cfg, "evaluate-readiness"))
	assert.True(t, IsWorkerEnabled(cfg, "compute-full-eligibility"))
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing broker",
			body: "redis:\n  enabled: false\n",
			want: "camunda.broker_address is required",
		},
		{
			name: "redis enabled without address",
			body: "camunda:\n  broker_address: zeebe:26500\nredis:\n  enabled: true\n",
			want: "redis.address is required",
		},
		{
			name: "tracing without endpoint",
			body: "camunda:\n  broker_address: zeebe:26500\ntracing:\n  enabled: true\n",
			want: "tracing.jaeger_endpoint is required",
		},
		{
			name: "negative cache ttl",
			body: "camunda:\n  broker_address: zeebe:26500\nworkers:\n  evaluate-readiness:\n    cache_ttl: -1\n",
			want: "workers.evaluate-readiness.cache_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ZEEBE_ADDRESS", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFile_BrokerFromEnvironment(t *testing.T) {
	t.Setenv("ZEEBE_ADDRESS", "gateway:26500")

	cfg, err := LoadFromFile(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "gateway:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_UnsetPlaceholderFallsBackToEnvironment(t *testing.T) {
	t.Setenv("ZEEBE_ADDRESS", "gateway:26500")
	os.Unsetenv("MORTGAGE_TEST_UNSET_BROKER")

	cfg, err := LoadFromFile(writeConfig(t, "camunda:\n  broker_address: ${MORTGAGE_TEST_UNSET_BROKER}\n"))
	require.NoError(t, err)
	assert.Equal(t, "gateway:26500", cfg.Camunda.BrokerAddress)
}
