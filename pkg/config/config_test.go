package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5001", cfg.ServerURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 600*time.Millisecond, cfg.PacingDelay)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CATAN_SERVER_URL", "http://example.test:8080")
	t.Setenv("CATAN_PACING_DELAY", "50ms")
	t.Setenv("CATAN_POLL_INTERVAL", "1s")
	t.Setenv("CATAN_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:8080", cfg.ServerURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50*time.Millisecond, cfg.PacingDelay)
	assert.Equal(t, time.Second, cfg.PollInterval)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("CATAN_PACING_DELAY", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
}
