package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENBANK_DATABASE_URL", "postgres://localhost:5432/openbank")
	t.Setenv("OPENBANK_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("OPENBANK_RATES_API_KEY", "test-api-key")
}

func TestLoadFromEnvironment(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "postgres://localhost:5432/openbank", cfg.Database.URL)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, time.Hour, cfg.Rates.RefreshInterval)
	assert.Equal(t, "openbank.transactions", cfg.AMQP.Exchange)
	assert.Empty(t, cfg.AMQP.URL)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENBANK_SERVER_PORT", "9090")
	t.Setenv("OPENBANK_SERVER_LOG_LEVEL", "debug")
	t.Setenv("OPENBANK_RATES_REFRESH_INTERVAL", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 15*time.Minute, cfg.Rates.RefreshInterval)
}

func TestLoadRejectsMissingRequiredValues(t *testing.T) {
	t.Setenv("OPENBANK_DATABASE_URL", "")
	t.Setenv("OPENBANK_AUTH_JWT_SECRET", "")
	t.Setenv("OPENBANK_RATES_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsShortJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENBANK_AUTH_JWT_SECRET", "short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENBANK_SERVER_LOG_LEVEL", "verbose")

	_, err := Load()
	assert.Error(t, err)
}
