package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 2500, cfg.Gateway.Port)
	assert.Equal(t, "loopback", cfg.Gateway.Bind)
	assert.Equal(t, 5000, cfg.Gateway.MaxClients)
	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, 60, cfg.Provider.TimeoutSeconds)
	assert.Equal(t, 150, cfg.Limits.PromptMax)
	assert.Equal(t, 100, cfg.Limits.ImagePromptMax)
	assert.Equal(t, 512, cfg.Limits.AssetMaxKiB)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
gateway:
  port: 3000
  maxClients: 10
provider:
  name: gemini
limits:
  promptMax: 200
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Gateway.Port)
	assert.Equal(t, 10, cfg.Gateway.MaxClients)
	assert.Equal(t, "gemini", cfg.Provider.Name)
	assert.Equal(t, 200, cfg.Limits.PromptMax)

	// Untouched fields keep their defaults.
	assert.Equal(t, "loopback", cfg.Gateway.Bind)
	assert.Equal(t, 100, cfg.Limits.ImagePromptMax)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "gateway: [not a map")

	_, err := Load(path)
	require.Error(t, err)

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CLEO_PORT", "4444")
	t.Setenv("CLEO_BIND", "lan")
	t.Setenv("CLEO_MAX_CLIENTS", "25")
	t.Setenv("CLEO_LOG_LEVEL", "DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 4444, cfg.Gateway.Port)
	assert.Equal(t, "lan", cfg.Gateway.Bind)
	assert.Equal(t, 25, cfg.Gateway.MaxClients)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadProviderKeyFromEnv(t *testing.T) {
	t.Setenv("CLEO_PROVIDER", "openai")
	t.Setenv("OPEN_AI_API_KEY", "sk-test-123")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, "sk-test-123", cfg.Provider.APIKey)
}

func TestLoadGeminiKeyOnlyWhenSelected(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gm-test-456")

	// Default provider is openai, so the gemini key is ignored.
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Provider.APIKey)

	t.Setenv("CLEO_PROVIDER", "gemini")
	cfg, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gm-test-456", cfg.Provider.APIKey)
}

func TestLoadExpandsCredentialReferences(t *testing.T) {
	t.Setenv("MY_SECRET_KEY", "sk-from-env")

	path := writeConfig(t, `
provider:
  apiKey: ${MY_SECRET_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Provider.APIKey)
}

func TestExpandEnvVarsLeavesUnsetUntouched(t *testing.T) {
	assert.Equal(t, "${DEFINITELY_NOT_SET_12345}", expandEnvVars("${DEFINITELY_NOT_SET_12345}"))
	assert.Equal(t, "plain value", expandEnvVars("plain value"))
}

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	assert.Equal(t, Defaults(), cfg)
}
