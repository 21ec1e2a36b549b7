package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	config "leaderkill/configs"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DISPATCH_TIMEOUT", "")
	t.Setenv("TRACING_ENABLED", "")
	t.Setenv("LOG_ENCODING", "")

	cfg := config.LoadConfig()

	assert.Equal(t, 30*time.Second, cfg.DispatchTimeout)
	assert.False(t, cfg.TracingEnabled)
	assert.Equal(t, 5*time.Second, cfg.EtcdDialTimeout)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("DISPATCH_TIMEOUT", "5s")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("PUSHGATEWAY_URL", "http://push:9091")
	t.Setenv("REDIS_DIAL_TIMEOUT", "250ms")

	cfg := config.LoadConfig()

	assert.Equal(t, 5*time.Second, cfg.DispatchTimeout)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, "http://push:9091", cfg.PushgatewayURL)
	assert.Equal(t, 250*time.Millisecond, cfg.RedisDialTimeout)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DISPATCH_TIMEOUT", "soon")
	t.Setenv("TRACING_ENABLED", "maybe")

	cfg := config.LoadConfig()

	assert.Equal(t, 30*time.Second, cfg.DispatchTimeout)
	assert.False(t, cfg.TracingEnabled)
}
