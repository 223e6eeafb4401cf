package providers

import (
	"net/http"
	"strings"
	"time"

	"github.com/teilomillet/gomistral/config"
	"github.com/teilomillet/gomistral/internal/logging"
)

const chatCompletionsPath = "/v1/chat/completions"

// AzureMistralProvider adapts the base Mistral provider to Azure-hosted
// deployments. It substitutes endpoint and credential resolution and owns
// two HTTP client handles bound to the resolved endpoint; all request
// construction and response parsing is delegated to the base provider
// unchanged.
//
// The endpoint is taken from the explicit configuration or the
// AZURE_MISTRAL_ENDPOINT environment variable; the credential from the
// explicit configuration, AZURE_MISTRAL_API_KEY, or MISTRAL_API_KEY, in
// that order.
type AzureMistralProvider struct {
	base         *MistralProvider
	apiKey       config.Secret
	endpoint     string
	extraHeaders map[string]string
	logger       logging.Logger

	// Bound handles, constructed at most once by ValidateEnvironment.
	client       *http.Client
	streamClient *http.Client
}

// NewAzureMistralProvider creates the Azure adapter. The instance is not
// usable until ValidateEnvironment has run; the client factory does this
// immediately after construction.
func NewAzureMistralProvider(apiKey, model string, extraHeaders map[string]string) Provider {
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}
	base := NewMistralProvider(apiKey, model, nil).(*MistralProvider)
	return &AzureMistralProvider{
		base:         base,
		apiKey:       config.Secret(apiKey),
		extraHeaders: extraHeaders,
		logger:       logging.NewLogger(logging.LogLevelInfo),
	}
}

// ValidateEnvironment resolves the credential and endpoint, constructs the
// HTTP client handles, and validates the sampling parameters. It runs once
// after the configuration fields are populated; every failure is a
// non-retryable ConfigurationError and leaves no usable instance behind.
//
// Calling it again on an already-initialized instance re-runs the checks
// but never replaces existing client handles.
func (p *AzureMistralProvider) ValidateEnvironment(cfg *config.Config) error {
	apiKey := p.apiKey
	if apiKey.Empty() && cfg != nil {
		apiKey = cfg.APIKey
	}
	apiKey = config.ResolveSecret(apiKey, config.EnvAzureAPIKey, config.EnvAPIKey)

	explicit := p.endpoint
	if explicit == "" && cfg != nil {
		explicit = cfg.AzureEndpoint
	}
	endpoint := config.Resolve(explicit, config.EnvAzureEndpoint)
	if endpoint == "" {
		return config.NewConfigurationError("azure_endpoint", "Must set "+config.EnvAzureEndpoint)
	}

	p.endpoint = endpoint
	p.apiKey = apiKey
	p.base.apiKey = apiKey

	timeout := 120 * time.Second
	if cfg != nil && cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	if p.client == nil {
		p.client = &http.Client{
			Transport: newBoundTransport(p.Headers(), nil),
			Timeout:   timeout,
		}
	}
	if p.streamClient == nil {
		// No whole-request timeout: SSE responses stay open far longer
		// than any sane request deadline. Cancellation is the caller's
		// context.
		p.streamClient = &http.Client{
			Transport: newBoundTransport(p.Headers(), nil),
		}
	}

	if cfg != nil {
		if t := cfg.Temperature; t != nil && (*t < 0 || *t > 1) {
			return config.NewConfigurationError("temperature", "must be in the range [0.0, 1.0]")
		}
		if tp := cfg.TopP; tp != nil && (*tp < 0 || *tp > 1) {
			return config.NewConfigurationError("top_p", "must be in the range [0.0, 1.0]")
		}
	}

	return nil
}

// Name returns the type tag used to discriminate backend variants in logs
// and telemetry.
func (p *AzureMistralProvider) Name() string {
	return "azure-mistral-chat"
}

// Endpoint returns the resolved chat-completions URL. A trailing slash on
// the configured endpoint is normalized away.
func (p *AzureMistralProvider) Endpoint() string {
	return strings.TrimSuffix(p.endpoint, "/") + chatCompletionsPath
}

// AzureEndpoint returns the resolved base endpoint.
func (p *AzureMistralProvider) AzureEndpoint() string {
	return p.endpoint
}

// Headers returns the bound request headers for the Azure deployment.
func (p *AzureMistralProvider) Headers() map[string]string {
	headers := map[string]string{
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"Authorization": "Bearer " + p.apiKey.Reveal(),
	}

	for key, value := range p.extraHeaders {
		headers[key] = value
	}

	return headers
}

// Client returns the synchronous request handle. Nil until
// ValidateEnvironment has run.
func (p *AzureMistralProvider) Client() *http.Client {
	return p.client
}

// StreamClient returns the streaming request handle. Nil until
// ValidateEnvironment has run.
func (p *AzureMistralProvider) StreamClient() *http.Client {
	return p.streamClient
}

// DefaultParams returns {model, temperature, max_tokens, top_p,
// random_seed} with absent values omitted.
func (p *AzureMistralProvider) DefaultParams() map[string]any {
	return p.base.DefaultParams()
}

// IdentifyingParams returns the base identifying parameters with the
// azure_endpoint added; on a key collision the endpoint wins.
func (p *AzureMistralProvider) IdentifyingParams() map[string]any {
	params := p.base.IdentifyingParams()
	params["azure_endpoint"] = p.endpoint
	return params
}

// Attributes returns the base serializable attributes augmented with the
// azure_endpoint.
func (p *AzureMistralProvider) Attributes() map[string]any {
	attrs := p.base.Attributes()
	attrs["azure_endpoint"] = p.endpoint
	return attrs
}

// SecretFields maps each secret attribute to the environment variable used
// to redact and rehydrate it during serialization.
func (p *AzureMistralProvider) SecretFields() map[string]string {
	return map[string]string{
		"mistral_api_key": config.EnvAzureAPIKey,
	}
}

func (p *AzureMistralProvider) SetLogger(logger logging.Logger) {
	p.logger = logger
	p.base.SetLogger(logger)
}

func (p *AzureMistralProvider) SetOption(key string, value any) {
	p.base.SetOption(key, value)
}

func (p *AzureMistralProvider) SetDefaultOptions(cfg *config.Config) {
	p.base.SetDefaultOptions(cfg)
}

func (p *AzureMistralProvider) SetExtraHeaders(extraHeaders map[string]string) {
	p.extraHeaders = extraHeaders
}

func (p *AzureMistralProvider) SupportsJSONSchema() bool {
	return p.base.SupportsJSONSchema()
}

func (p *AzureMistralProvider) SupportsStreaming() bool {
	return p.base.SupportsStreaming()
}

// PrepareRequest delegates to the base provider unchanged. Kept as an
// explicit method so Azure-specific request shaping has a place to land.
func (p *AzureMistralProvider) PrepareRequest(messages []Message, options map[string]any) ([]byte, error) {
	return p.base.PrepareRequest(messages, options)
}

func (p *AzureMistralProvider) PrepareStreamRequest(messages []Message, options map[string]any) ([]byte, error) {
	return p.base.PrepareStreamRequest(messages, options)
}

func (p *AzureMistralProvider) PrepareRequestWithSchema(messages []Message, options map[string]any, schema any) ([]byte, error) {
	return p.base.PrepareRequestWithSchema(messages, options, schema)
}

func (p *AzureMistralProvider) ParseResponse(body []byte) (*Response, error) {
	return p.base.ParseResponse(body)
}

func (p *AzureMistralProvider) ParseStreamResponse(chunk []byte) (*StreamChunk, error) {
	return p.base.ParseStreamResponse(chunk)
}

// boundTransport injects the bound headers into every request that goes
// through one of the adapter's client handles. Headers already set on the
// request win.
type boundTransport struct {
	headers map[string]string
	next    http.RoundTripper
}

func newBoundTransport(headers map[string]string, next http.RoundTripper) *boundTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &boundTransport{headers: headers, next: next}
}

func (t *boundTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		if clone.Header.Get(k) == "" {
			clone.Header.Set(k, v)
		}
	}
	return t.next.RoundTrip(clone)
}
