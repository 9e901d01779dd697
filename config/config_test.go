package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_RepositoryConfig(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVER_PORT", ":9090")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	cfg, err := LoadFrom("local", ".")
	require.NoError(t, err)

	assert.Equal(t, "habitflow", cfg.DB.Password)
	assert.Equal(t, "local-dev-secret", cfg.JWT.Secret)
	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Analytics.LogWindow)
	assert.Equal(t, 5*time.Minute, cfg.Analytics.CacheTTL)
	assert.Equal(t, 366, cfg.Analytics.MaxRangeDays)
	assert.Equal(t, 100*time.Millisecond, cfg.DB.SlowQueryThreshold)
	assert.True(t, cfg.Log.Development)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "otel-collector:4317", cfg.Tracing.Endpoint)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestConfig_Location(t *testing.T) {
	cfg := Default()
	cfg.Analytics.Timezone = "UTC"
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.Analytics.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}
