package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/gomistral/internal/logging"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "mistral", cfg.Provider)
	assert.Equal(t, "mistral-large-latest", cfg.Model)
	assert.Equal(t, 120*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Nil(t, cfg.Temperature)
	assert.Nil(t, cfg.TopP)
	assert.Nil(t, cfg.MaxTokens)
	assert.Nil(t, cfg.RandomSeed)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("MISTRAL_PROVIDER", "azure-mistral")
	t.Setenv("MISTRAL_MODEL", "mistral-large")
	t.Setenv("MISTRAL_TEMPERATURE", "0.4")
	t.Setenv("MISTRAL_TOP_P", "0.8")
	t.Setenv("MISTRAL_MAX_TOKENS", "512")
	t.Setenv("MISTRAL_TIMEOUT", "30s")
	t.Setenv("MISTRAL_LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "azure-mistral", cfg.Provider)
	assert.Equal(t, "mistral-large", cfg.Model)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.4, *cfg.Temperature)
	require.NotNil(t, cfg.TopP)
	assert.Equal(t, 0.8, *cfg.TopP)
	require.NotNil(t, cfg.MaxTokens)
	assert.Equal(t, 512, *cfg.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, logging.LogLevelDebug, cfg.LogLevel)
}

func TestOptionsOverrideEnvironment(t *testing.T) {
	t.Setenv("MISTRAL_MODEL", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	ApplyOptions(cfg, SetModel("explicit"))

	assert.Equal(t, "explicit", cfg.Model)
}

func TestConfigOptions(t *testing.T) {
	cfg := NewConfig()
	ApplyOptions(cfg,
		SetProvider("azure-mistral"),
		SetModel("mistral-large"),
		SetTemperature(0.7),
		SetTopP(0.9),
		SetMaxTokens(256),
		SetRandomSeed(42),
		SetSafePrompt(true),
		SetTimeout(10*time.Second),
		SetMaxRetries(5),
		SetRetryDelay(time.Second),
		SetAPIVersion("2024-05-01"),
		SetRequestsPerSecond(2),
		SetAPIKey("key"),
		SetAzureEndpoint("https://x.example"),
		SetExtraHeaders(map[string]string{"X-Test": "1"}),
		SetMemory(4000),
	)

	assert.Equal(t, "azure-mistral", cfg.Provider)
	assert.Equal(t, "mistral-large", cfg.Model)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.7, *cfg.Temperature)
	require.NotNil(t, cfg.TopP)
	assert.Equal(t, 0.9, *cfg.TopP)
	require.NotNil(t, cfg.MaxTokens)
	assert.Equal(t, 256, *cfg.MaxTokens)
	require.NotNil(t, cfg.RandomSeed)
	assert.Equal(t, 42, *cfg.RandomSeed)
	assert.True(t, cfg.SafePrompt)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, "2024-05-01", cfg.APIVersion)
	assert.Equal(t, float64(2), cfg.RequestsPerSecond)
	assert.Equal(t, Secret("key"), cfg.APIKey)
	assert.Equal(t, "https://x.example", cfg.AzureEndpoint)
	assert.Equal(t, "1", cfg.ExtraHeaders["X-Test"])
	require.NotNil(t, cfg.MemoryOption)
	assert.Equal(t, 4000, cfg.MemoryOption.MaxTokens)
}

func TestSetMaxTokensClampsToOne(t *testing.T) {
	cfg := NewConfig()
	ApplyOptions(cfg, SetMaxTokens(0))
	require.NotNil(t, cfg.MaxTokens)
	assert.Equal(t, 1, *cfg.MaxTokens)
}
