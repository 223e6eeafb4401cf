// Package config holds the configuration for Mistral chat model clients,
// including environment-based loading and functional options.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/teilomillet/gomistral/internal/logging"
)

// Environment variables consulted by the Azure endpoint adapter when no
// explicit value is configured. The API key variables are checked in the
// order listed here.
const (
	EnvAzureEndpoint = "AZURE_MISTRAL_ENDPOINT"
	EnvAzureAPIKey   = "AZURE_MISTRAL_API_KEY"
	EnvAPIKey        = "MISTRAL_API_KEY"
)

// MemoryOption configures token-budgeted conversation memory.
type MemoryOption struct {
	MaxTokens int
}

// Config collects every knob for a chat model client. Optional sampling
// parameters are pointers so "unset" can be told apart from zero; when set,
// Temperature and TopP must lie in [0.0, 1.0].
type Config struct {
	Provider    string   `env:"MISTRAL_PROVIDER" envDefault:"mistral" validate:"required"`
	Model       string   `env:"MISTRAL_MODEL" envDefault:"mistral-large-latest" validate:"required"`
	Temperature *float64 `env:"MISTRAL_TEMPERATURE" validate:"omitempty,gte=0,lte=1"`
	TopP        *float64 `env:"MISTRAL_TOP_P" validate:"omitempty,gte=0,lte=1"`
	MaxTokens   *int     `env:"MISTRAL_MAX_TOKENS" validate:"omitempty,gte=1"`
	RandomSeed  *int     `env:"MISTRAL_RANDOM_SEED"`
	SafePrompt  bool     `env:"MISTRAL_SAFE_PROMPT" envDefault:"false"`

	Timeout    time.Duration `env:"MISTRAL_TIMEOUT" envDefault:"120s"`
	MaxRetries int           `env:"MISTRAL_MAX_RETRIES" envDefault:"3"`
	RetryDelay time.Duration `env:"MISTRAL_RETRY_DELAY" envDefault:"2s"`
	APIVersion string        `env:"MISTRAL_API_VERSION"`

	// RequestsPerSecond throttles outgoing requests when > 0.
	RequestsPerSecond float64 `env:"MISTRAL_REQUESTS_PER_SECOND"`

	// AzureEndpoint and APIKey are deliberately not env-tagged: the Azure
	// adapter resolves them through Resolve/ResolveSecret so the explicit
	// value always wins and the fallback order stays in one place.
	AzureEndpoint string
	APIKey        Secret

	LogLevel     logging.LogLevel `env:"MISTRAL_LOG_LEVEL" envDefault:"WARN"`
	ExtraHeaders map[string]string
	MemoryOption *MemoryOption
}

// LoadConfig builds a Config from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfig returns a Config with library defaults. Environment variables
// are not consulted here; use LoadConfig for that.
func NewConfig() *Config {
	return &Config{
		Provider:     "mistral",
		Model:        "mistral-large-latest",
		Timeout:      120 * time.Second,
		MaxRetries:   3,
		RetryDelay:   2 * time.Second,
		LogLevel:     logging.LogLevelWarn,
		ExtraHeaders: make(map[string]string),
	}
}

// ConfigOption mutates a Config; options are applied in order.
type ConfigOption func(*Config)

func ApplyOptions(cfg *Config, options ...ConfigOption) {
	for _, option := range options {
		option(cfg)
	}
}

func SetProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

func SetModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

func SetTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = &temperature
	}
}

func SetTopP(topP float64) ConfigOption {
	return func(c *Config) {
		c.TopP = &topP
	}
}

func SetMaxTokens(maxTokens int) ConfigOption {
	return func(c *Config) {
		if maxTokens < 1 {
			maxTokens = 1
		}
		c.MaxTokens = &maxTokens
	}
}

func SetRandomSeed(seed int) ConfigOption {
	return func(c *Config) {
		c.RandomSeed = &seed
	}
}

func SetSafePrompt(enabled bool) ConfigOption {
	return func(c *Config) {
		c.SafePrompt = enabled
	}
}

func SetTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

func SetMaxRetries(maxRetries int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
	}
}

func SetRetryDelay(retryDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = retryDelay
	}
}

func SetAPIVersion(version string) ConfigOption {
	return func(c *Config) {
		c.APIVersion = version
	}
}

func SetRequestsPerSecond(rps float64) ConfigOption {
	return func(c *Config) {
		c.RequestsPerSecond = rps
	}
}

// SetAPIKey sets the credential explicitly, taking precedence over the
// AZURE_MISTRAL_API_KEY / MISTRAL_API_KEY environment fallbacks.
func SetAPIKey(apiKey string) ConfigOption {
	return func(c *Config) {
		c.APIKey = Secret(apiKey)
	}
}

// SetAzureEndpoint sets the Azure endpoint explicitly, taking precedence
// over the AZURE_MISTRAL_ENDPOINT environment fallback.
func SetAzureEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.AzureEndpoint = endpoint
	}
}

func SetLogLevel(level logging.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

func SetExtraHeaders(headers map[string]string) ConfigOption {
	return func(c *Config) {
		if c.ExtraHeaders == nil {
			c.ExtraHeaders = make(map[string]string)
		}
		for k, v := range headers {
			c.ExtraHeaders[k] = v
		}
	}
}

func SetMemory(maxTokens int) ConfigOption {
	return func(c *Config) {
		c.MemoryOption = &MemoryOption{
			MaxTokens: maxTokens,
		}
	}
}
