package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/poker")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres://localhost:5432/poker", cfg.DatabaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 50, cfg.MaxClientsPerRoom)
	assert.Equal(t, int64(10000), cfg.MaxWebSocketConnections)
	assert.Equal(t, 20, cfg.MaxConnectionsPerIP)
	assert.Equal(t, 10.0, cfg.ConnectionRatePerIP)
	assert.Equal(t, 10, cfg.ConnectionBurstPerIP)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db:5432/poker")
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("MAX_CLIENTS_PER_ROOM", "5")
	t.Setenv("CONNECTION_RATE_PER_IP", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5, cfg.MaxClientsPerRoom)
	assert.Equal(t, 2.5, cfg.ConnectionRatePerIP)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
