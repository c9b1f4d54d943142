package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("test")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.PostgresDSN)
	assert.NotEmpty(t, cfg.NATSUrl)
	assert.Equal(t, "./migrations", cfg.MigrationsDir)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_LOG_LEVEL", "debug")
	t.Setenv("APP_POSTGRES_DSN", "postgres://override:pw@db:5432/ledger")

	cfg, err := Load("test")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "postgres://override:pw@db:5432/ledger", cfg.PostgresDSN)
}
