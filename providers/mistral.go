package providers

import (
	"encoding/json"
	"fmt"

	"github.com/teilomillet/gomistral/config"
	"github.com/teilomillet/gomistral/internal/logging"
)

const defaultMistralEndpoint = "https://api.mistral.ai/v1/chat/completions"

// MistralProvider is the base chat provider for the Mistral platform API.
// The Azure adapter composes it and substitutes endpoint and credential
// resolution; everything else (request construction, parsing) lives here.
type MistralProvider struct {
	apiKey       config.Secret
	model        string
	extraHeaders map[string]string
	options      map[string]any
	logger       logging.Logger
}

func NewMistralProvider(apiKey, model string, extraHeaders map[string]string) Provider {
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}
	return &MistralProvider{
		apiKey:       config.Secret(apiKey),
		model:        model,
		extraHeaders: extraHeaders,
		options:      make(map[string]any),
		logger:       logging.NewLogger(logging.LogLevelInfo),
	}
}

func (p *MistralProvider) SetLogger(logger logging.Logger) {
	p.logger = logger
}

func (p *MistralProvider) SetOption(key string, value any) {
	p.options[key] = value
}

// SetDefaultOptions applies the optional sampling parameters from the
// configuration. Unset pointers stay absent from the request body.
func (p *MistralProvider) SetDefaultOptions(cfg *config.Config) {
	if cfg.Temperature != nil {
		p.SetOption("temperature", *cfg.Temperature)
	}
	if cfg.TopP != nil {
		p.SetOption("top_p", *cfg.TopP)
	}
	if cfg.MaxTokens != nil {
		p.SetOption("max_tokens", *cfg.MaxTokens)
	}
	if cfg.RandomSeed != nil {
		p.SetOption("random_seed", *cfg.RandomSeed)
	}
	if cfg.SafePrompt {
		p.SetOption("safe_prompt", true)
	}
}

// Name returns the name of the provider.
func (p *MistralProvider) Name() string {
	return "mistral"
}

// Endpoint returns the API endpoint for the provider.
func (p *MistralProvider) Endpoint() string {
	return defaultMistralEndpoint
}

func (p *MistralProvider) SupportsJSONSchema() bool {
	return true
}

func (p *MistralProvider) SupportsStreaming() bool {
	return true
}

// Headers returns the headers for the API request.
func (p *MistralProvider) Headers() map[string]string {
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

// DefaultParams returns the request parameters that apply to every call:
// model plus any sampling options that were actually set. Absent values
// are omitted rather than sent as null.
func (p *MistralProvider) DefaultParams() map[string]any {
	params := map[string]any{
		"model": p.model,
	}
	for _, key := range []string{"temperature", "max_tokens", "top_p", "random_seed"} {
		if v, ok := p.options[key]; ok && v != nil {
			params[key] = v
		}
	}
	return params
}

// IdentifyingParams returns the parameters that identify this provider
// instance for logging and caching purposes.
func (p *MistralProvider) IdentifyingParams() map[string]any {
	return p.DefaultParams()
}

// Attributes returns the serializable, non-secret attributes of the
// provider instance.
func (p *MistralProvider) Attributes() map[string]any {
	attrs := map[string]any{
		"model": p.model,
	}
	if v, ok := p.options["safe_prompt"]; ok {
		attrs["safe_prompt"] = v
	}
	return attrs
}

// PrepareRequest builds the chat-completions request body. Default options
// are applied first, then per-call options, which may override them.
func (p *MistralProvider) PrepareRequest(messages []Message, options map[string]any) ([]byte, error) {
	requestBody := map[string]any{
		"model":    p.model,
		"messages": messages,
	}

	for k, v := range p.options {
		requestBody[k] = v
	}

	for k, v := range options {
		requestBody[k] = v
	}

	return json.Marshal(requestBody)
}

// PrepareStreamRequest builds a request body with streaming enabled.
func (p *MistralProvider) PrepareStreamRequest(messages []Message, options map[string]any) ([]byte, error) {
	merged := make(map[string]any, len(options)+1)
	for k, v := range options {
		merged[k] = v
	}
	merged["stream"] = true
	return p.PrepareRequest(messages, merged)
}

// PrepareRequestWithSchema builds a request body constraining the response
// to the given JSON schema.
func (p *MistralProvider) PrepareRequestWithSchema(messages []Message, options map[string]any, schema any) ([]byte, error) {
	requestBody := map[string]any{
		"model":    p.model,
		"messages": messages,
		"response_format": map[string]any{
			"type":   "json_schema",
			"schema": schema,
		},
	}

	for k, v := range p.options {
		if _, reserved := requestBody[k]; !reserved {
			requestBody[k] = v
		}
	}
	for k, v := range options {
		if _, reserved := requestBody[k]; !reserved {
			requestBody[k] = v
		}
	}

	return json.Marshal(requestBody)
}

// ParseResponse parses a chat completion and returns its first choice.
func (p *MistralProvider) ParseResponse(body []byte) (*Response, error) {
	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	choice := response.Choices[0]
	if choice.Message.Content == "" && len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	return &Response{
		Content:      choice.Message.Content,
		Role:         choice.Message.Role,
		ToolCalls:    choice.Message.ToolCalls,
		FinishReason: choice.FinishReason,
		Usage:        response.Usage,
	}, nil
}

// ParseStreamResponse parses one SSE data payload of a streaming response.
func (p *MistralProvider) ParseStreamResponse(chunk []byte) (*StreamChunk, error) {
	var payload chatCompletionChunk
	if err := json.Unmarshal(chunk, &payload); err != nil {
		return nil, fmt.Errorf("error parsing stream chunk: %w", err)
	}

	if len(payload.Choices) == 0 {
		return &StreamChunk{Usage: payload.Usage}, nil
	}

	choice := payload.Choices[0]
	return &StreamChunk{
		Content:      choice.Delta.Content,
		Role:         choice.Delta.Role,
		FinishReason: choice.FinishReason,
		Usage:        payload.Usage,
	}, nil
}

// SetExtraHeaders sets additional headers for the API request.
func (p *MistralProvider) SetExtraHeaders(extraHeaders map[string]string) {
	p.extraHeaders = extraHeaders
}
