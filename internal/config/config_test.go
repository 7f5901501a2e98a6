package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"OPENPROTOCOL_HOST", "OPENPROTOCOL_PORT", "OPENPROTOCOL_DIAL_TIMEOUT",
		"OPENPROTOCOL_TIMEOUT", "OPENPROTOCOL_RETRY_LIMIT", "OPENPROTOCOL_RAW_DATA",
		"OPENPROTOCOL_DISABLE_MID_PARSING", "OPENPROTOCOL_LOG_LEVEL",
	}
	for _, k := range keys {
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Connection.Host)
	assert.Equal(t, 4545, cfg.Connection.Port)
	assert.Equal(t, 5*time.Second, cfg.Connection.DialTimeout)
	assert.Equal(t, 3*time.Second, cfg.LinkLayer.Timeout)
	assert.Equal(t, 3, cfg.LinkLayer.RetryLimit)
	assert.False(t, cfg.LinkLayer.RawData)
	assert.Empty(t, cfg.LinkLayer.DisableMidParsing)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	os.Setenv("OPENPROTOCOL_HOST", "10.0.0.5")
	os.Setenv("OPENPROTOCOL_PORT", "9000")
	os.Setenv("OPENPROTOCOL_RETRY_LIMIT", "5")
	os.Setenv("OPENPROTOCOL_RAW_DATA", "true")
	os.Setenv("OPENPROTOCOL_DISABLE_MID_PARSING", "61, 70")
	os.Setenv("OPENPROTOCOL_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", cfg.Connection.Host)
	assert.Equal(t, 9000, cfg.Connection.Port)
	assert.Equal(t, 5, cfg.LinkLayer.RetryLimit)
	assert.True(t, cfg.LinkLayer.RawData)
	assert.Equal(t, []int{61, 70}, cfg.LinkLayer.DisableMidParsing)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadWithOverrides(t *testing.T) {
	clearEnv(t)
	os.Setenv("OPENPROTOCOL_HOST", "10.0.0.5")

	cfg, err := LoadWithOverrides(LoadOptions{Host: "192.168.1.100", Port: 4546, LogLevel: "warn"})
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.100", cfg.Connection.Host)
	assert.Equal(t, 4546, cfg.Connection.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestFromMap(t *testing.T) {
	raw := map[string]any{
		"connection": map[string]any{
			"host": "controller.local",
			"port": 4545,
		},
		"linklayer": map[string]any{
			"retry_limit": 4,
			"raw_data":    true,
		},
	}

	cfg, err := FromMap(raw)
	require.NoError(t, err)

	assert.Equal(t, "controller.local", cfg.Connection.Host)
	assert.Equal(t, 4545, cfg.Connection.Port)
	assert.Equal(t, 4, cfg.LinkLayer.RetryLimit)
	assert.True(t, cfg.LinkLayer.RawData)
	// Unspecified fields keep their defaults.
	assert.Equal(t, 5*time.Second, cfg.Connection.DialTimeout)
}

func TestFromMapRejectsInvalidPort(t *testing.T) {
	_, err := FromMap(map[string]any{
		"connection": map[string]any{"host": "x", "port": 70000},
	})
	require.Error(t, err)
}

func TestConnectionOptionsAddress(t *testing.T) {
	c := ConnectionOptions{Host: "10.1.1.1", Port: 4545}
	assert.Equal(t, "10.1.1.1:4545", c.Address())
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeDisabledMid(t *testing.T) {
	cfg := Default()
	cfg.LinkLayer.DisableMidParsing = []int{0}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestValidateRejectsNonPositiveTimeout(t *testing.T) {
	cfg := Default()
	cfg.LinkLayer.Timeout = 0
	require.Error(t, cfg.Validate())
}

func TestLinkLayerOptionsToOptions(t *testing.T) {
	o := LinkLayerOptions{Timeout: 2 * time.Second, RetryLimit: 7, RawData: true, DisableMidParsing: []int{61}}
	opts := o.ToOptions()
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, 7, opts.RetryLimit)
	assert.True(t, opts.RawData)
	assert.Equal(t, []int{61}, opts.DisableMidParsing)
}
