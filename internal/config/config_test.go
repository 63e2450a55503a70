package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/prompt-capture/internal/config"
)

func TestDefault_AppliesDocumentedDefaults(t *testing.T) {
	cfg := config.Default()

	assert.True(t, cfg.Capture.IsEnabled())
	assert.True(t, cfg.Capture.BeforeEnabled())
	assert.True(t, cfg.Capture.AfterEnabled())
	assert.Empty(t, cfg.Capture.CacheDir)
	assert.Equal(t, config.StrategyFirstAndLast, cfg.Capture.Strategy)
	assert.False(t, cfg.Capture.WriteBeforeImmediately)

	assert.Equal(t, 8799, cfg.Listener.Port)
	assert.Equal(t, "info", cfg.Monitoring.LogLevel)
	assert.Equal(t, "auto", cfg.Monitoring.LogFormat)
}

func TestLoadFromBytes_EmptyFileIsValid(t *testing.T) {
	cfg, err := config.LoadFromBytes([]byte(""))
	require.NoError(t, err)
	assert.True(t, cfg.Capture.IsEnabled())
}

func TestLoadFromBytes_PartialOverride(t *testing.T) {
	yaml := `
capture:
  cache_dir: /var/log/prompts
  save_before_hook: false
  strategy: last_only
`
	cfg, err := config.LoadFromBytes([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, "/var/log/prompts", cfg.Capture.CacheDir)
	assert.False(t, cfg.Capture.BeforeEnabled())
	assert.True(t, cfg.Capture.AfterEnabled(), "unset fields keep their defaults")
	assert.Equal(t, config.StrategyLastOnly, cfg.Capture.Strategy)
}

func TestLoadFromBytes_ExplicitFalseSurvivesDefaults(t *testing.T) {
	cfg, err := config.LoadFromBytes([]byte("capture:\n  enabled: false\n"))
	require.NoError(t, err)

	assert.False(t, cfg.Capture.IsEnabled())
	assert.False(t, cfg.Capture.BeforeEnabled())
	assert.False(t, cfg.Capture.AfterEnabled())
}

func TestLoadFromBytes_EnvExpansion(t *testing.T) {
	t.Setenv("CAPTURE_DIR", "/data/captures")

	cfg, err := config.LoadFromBytes([]byte("capture:\n  cache_dir: ${CAPTURE_DIR}\n"))
	require.NoError(t, err)
	assert.Equal(t, "/data/captures", cfg.Capture.CacheDir)
}

func TestLoadFromBytes_EnvExpansionDefault(t *testing.T) {
	cfg, err := config.LoadFromBytes([]byte("capture:\n  cache_dir: ${UNSET_CAPTURE_DIR:-/tmp/fallback}\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/fallback", cfg.Capture.CacheDir)
}

func TestLoadFromBytes_InvalidStrategy(t *testing.T) {
	_, err := config.LoadFromBytes([]byte("capture:\n  strategy: newest\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capture.strategy")
}

func TestLoadFromBytes_InvalidLogFormat(t *testing.T) {
	_, err := config.LoadFromBytes([]byte("monitoring:\n  log_format: xml\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_format")
}

func TestLoadFromBytes_InvalidYAML(t *testing.T) {
	_, err := config.LoadFromBytes([]byte("capture: ["))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}
