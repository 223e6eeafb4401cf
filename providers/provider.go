// Package providers implements the chat-model provider abstraction for
// Mistral backends. It contains the base Mistral provider, the Azure
// deployment adapter, and a registry for resolving providers by name.
package providers

import (
	"net/http"

	"github.com/teilomillet/gomistral/config"
	"github.com/teilomillet/gomistral/internal/logging"
)

// Provider is the contract every chat backend implements. The client core
// drives it: prepare a request body, send it to Endpoint() with Headers(),
// parse the response.
type Provider interface {
	// Core identification and configuration
	Name() string
	Endpoint() string
	Headers() map[string]string
	SetExtraHeaders(extraHeaders map[string]string)
	SetDefaultOptions(cfg *config.Config)
	SetOption(key string, value any)
	SetLogger(logger logging.Logger)

	// Request preparation
	PrepareRequest(messages []Message, options map[string]any) ([]byte, error)
	PrepareStreamRequest(messages []Message, options map[string]any) ([]byte, error)
	PrepareRequestWithSchema(messages []Message, options map[string]any, schema any) ([]byte, error)

	// Response handling
	ParseResponse(body []byte) (*Response, error)
	ParseStreamResponse(chunk []byte) (*StreamChunk, error)

	// Capability checks
	SupportsJSONSchema() bool
	SupportsStreaming() bool
}

// EnvironmentValidator is the post-construction hook implemented by
// providers that resolve part of their configuration from the environment.
// The client factory invokes it exactly once, before any request is issued;
// a non-nil error aborts construction.
type EnvironmentValidator interface {
	ValidateEnvironment(cfg *config.Config) error
}

// HTTPClientProvider is implemented by providers that own pre-bound HTTP
// client handles. When a provider exposes these, the client core uses them
// instead of constructing its own.
type HTTPClientProvider interface {
	Client() *http.Client
	StreamClient() *http.Client
}

// ProviderConfig holds the static description of a provider.
type ProviderConfig struct {
	// Name is the provider identifier
	Name string

	// Endpoint is the API endpoint URL, empty when resolved per deployment
	Endpoint string

	// AuthHeader is the header key used for authentication
	AuthHeader string

	// AuthPrefix is the prefix to use before the API key (e.g., "Bearer ")
	AuthPrefix string

	// RequiredHeaders are additional headers always needed
	RequiredHeaders map[string]string

	// SupportsJSONSchema indicates if JSON schema response formats are supported
	SupportsJSONSchema bool

	// SupportsStreaming indicates if streaming is supported
	SupportsStreaming bool
}

// ProviderConstructor defines a function type for creating new provider
// instances. Each provider implementation registers one of these.
type ProviderConstructor func(apiKey, model string, extraHeaders map[string]string) Provider
