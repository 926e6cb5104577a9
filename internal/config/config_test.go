package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_MODE", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreModeMemory, cfg.Store.Mode)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_MODE", "Postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/lostfound")
	t.Setenv("RATE_LIMIT_BURST", "3")
	t.Setenv("MINIO_ENABLED", "true")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreModePostgres, cfg.Store.Mode)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
	assert.True(t, cfg.Minio.Enabled)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRejectsBadInput(t *testing.T) {
	t.Setenv("STORE_MODE", "sqlite")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE_MODE", "postgres")
	t.Setenv("POSTGRES_DSN", "")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("STORE_MODE", "memory")
	t.Setenv("REDIS_DB", "one")
	_, err = Load()
	assert.Error(t, err)
}

func TestGetEnvHelpersFallBack(t *testing.T) {
	t.Setenv("LF_INT", "abc")
	t.Setenv("LF_BOOL", "maybe")
	assert.Equal(t, 7, getEnvAsInt("LF_INT", 7))
	assert.True(t, getEnvAsBool("LF_BOOL", true))
}
