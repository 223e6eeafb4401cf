// Package gomistral is a client for Mistral chat models, including
// Azure-hosted deployments. This file re-exports configuration types and
// options from the config package for a single-import API surface.
package gomistral

import (
	"github.com/teilomillet/gomistral/config"
	"github.com/teilomillet/gomistral/internal/logging"
)

type (
	// Config represents the complete configuration for a chat model
	// client. See config.Config for field documentation.
	Config = config.Config

	// ConfigOption mutates a Config; options are applied in order.
	ConfigOption = config.ConfigOption

	// Secret holds a credential that is redacted from logs and
	// serialized output.
	Secret = config.Secret

	// ConfigurationError is the construction-time error kind: missing
	// endpoint, out-of-range sampling parameters, and similar.
	ConfigurationError = config.ConfigurationError

	// LogLevel defines logging verbosity.
	LogLevel = logging.LogLevel
)

var (
	// LoadConfig builds a Config from environment variables.
	LoadConfig = config.LoadConfig

	// NewConfig returns a Config with library defaults.
	NewConfig = config.NewConfig

	// ApplyOptions applies ConfigOptions to a Config.
	ApplyOptions = config.ApplyOptions

	// Provider selection and model parameters
	SetProvider    = config.SetProvider    // "mistral" or "azure-mistral"
	SetModel       = config.SetModel       // model or deployment name
	SetTemperature = config.SetTemperature // sampling temperature, [0.0, 1.0]
	SetTopP        = config.SetTopP        // nucleus sampling, [0.0, 1.0]
	SetMaxTokens   = config.SetMaxTokens   // max tokens to generate
	SetRandomSeed  = config.SetRandomSeed  // seed for deterministic output
	SetSafePrompt  = config.SetSafePrompt  // enable the safe-mode prompt

	// Endpoint and credentials
	SetAPIKey        = config.SetAPIKey        // explicit credential, overrides env fallbacks
	SetAzureEndpoint = config.SetAzureEndpoint // explicit endpoint, overrides AZURE_MISTRAL_ENDPOINT
	SetAPIVersion    = config.SetAPIVersion    // deployment API version passthrough

	// Runtime behavior
	SetTimeout           = config.SetTimeout
	SetMaxRetries        = config.SetMaxRetries
	SetRetryDelay        = config.SetRetryDelay
	SetRequestsPerSecond = config.SetRequestsPerSecond
	SetLogLevel          = config.SetLogLevel
	SetExtraHeaders      = config.SetExtraHeaders
	SetMemory            = config.SetMemory
)

// LogLevel constants define available logging verbosity levels.
const (
	LogLevelOff   = logging.LogLevelOff
	LogLevelError = logging.LogLevelError
	LogLevelWarn  = logging.LogLevelWarn
	LogLevelInfo  = logging.LogLevelInfo
	LogLevelDebug = logging.LogLevelDebug
)
