// Package llm implements the client core shared by all Mistral chat
// providers: request execution with retry and rate limiting, streaming,
// structured output, conversation memory and config validation.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/invopop/jsonschema"
	"golang.org/x/time/rate"

	"github.com/teilomillet/gomistral/config"
	"github.com/teilomillet/gomistral/internal/logging"
	"github.com/teilomillet/gomistral/providers"
)

// LLM is the internal client contract the public facade wraps.
type LLM interface {
	Generate(ctx context.Context, messages []providers.Message) (*providers.Response, error)
	GenerateWithSchema(ctx context.Context, messages []providers.Message, schemaSource any) (*providers.Response, error)
	Stream(ctx context.Context, messages []providers.Message) (TokenStream, error)
	SetOption(key string, value any)
	SetDebugLevel(level logging.LogLevel)
	GetLogger() logging.Logger
	GetProvider() providers.Provider
	SupportsJSONSchema() bool
}

// LLMImpl drives a provider over HTTP. When the provider owns bound client
// handles (the Azure adapter does), those are used; otherwise the client
// constructs its own from the configured timeout.
type LLMImpl struct {
	Provider     providers.Provider
	Options      map[string]any
	client       *http.Client
	streamClient *http.Client
	limiter      *rate.Limiter
	retry        RetryStrategy
	logger       logging.Logger
	config       *config.Config
	MaxRetries   int
}

// NewLLM validates the configuration, resolves the provider from the
// registry, runs the provider's environment hook, and wires the HTTP
// handles. Any failure here is a construction-time error; no partially
// initialized client is returned.
func NewLLM(cfg *config.Config, logger logging.Logger, registry *providers.ProviderRegistry) (LLM, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	provider, err := registry.Get(cfg.Provider, cfg.APIKey.Reveal(), cfg.Model, cfg.ExtraHeaders)
	if err != nil {
		return nil, err
	}

	provider.SetLogger(logger)
	provider.SetDefaultOptions(cfg)

	// Post-construction hook: providers that resolve endpoint or
	// credentials from the environment validate here, once, before any
	// request is issued.
	if ev, ok := provider.(providers.EnvironmentValidator); ok {
		if err := ev.ValidateEnvironment(cfg); err != nil {
			return nil, err
		}
	}

	llmClient := &LLMImpl{
		Provider:   provider,
		Options:    make(map[string]any),
		logger:     logger,
		config:     cfg,
		MaxRetries: cfg.MaxRetries,
		retry: &DefaultRetryStrategy{
			MaxRetries:  cfg.MaxRetries,
			InitialWait: cfg.RetryDelay,
			MaxWait:     cfg.RetryDelay * 8,
		},
	}

	if hp, ok := provider.(providers.HTTPClientProvider); ok {
		llmClient.client = hp.Client()
		llmClient.streamClient = hp.StreamClient()
	} else {
		llmClient.client = &http.Client{Timeout: cfg.Timeout}
		llmClient.streamClient = &http.Client{}
	}

	if cfg.RequestsPerSecond > 0 {
		llmClient.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return llmClient, nil
}

func (l *LLMImpl) SetOption(key string, value any) {
	l.Options[key] = value
	l.logger.Debug("Option set", key, value)
}

func (l *LLMImpl) SetDebugLevel(level logging.LogLevel) {
	l.logger.Debug("Setting internal client debug level", "new_level", level)
	l.logger.SetLevel(level)
}

func (l *LLMImpl) GetLogger() logging.Logger {
	return l.logger
}

func (l *LLMImpl) GetProvider() providers.Provider {
	return l.Provider
}

func (l *LLMImpl) SupportsJSONSchema() bool {
	return l.Provider.SupportsJSONSchema()
}

// Generate sends the messages to the provider and returns the parsed
// completion, retrying failed attempts with capped exponential backoff.
func (l *LLMImpl) Generate(ctx context.Context, messages []providers.Message) (*providers.Response, error) {
	var lastErr error
	l.retry.Reset()

	for attempt := 0; attempt <= l.MaxRetries; attempt++ {
		l.logger.Debug("Generating completion", "provider", l.Provider.Name(), "attempt", attempt+1)

		result, err := l.attemptGenerate(ctx, messages)
		if err == nil {
			return result, nil
		}
		lastErr = err

		l.logger.Warn("Generation attempt failed", "error", err, "attempt", attempt+1)

		if attempt < l.MaxRetries {
			if err := l.wait(ctx); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("failed to generate after %d attempts: %w", l.MaxRetries+1, lastErr)
}

func (l *LLMImpl) wait(ctx context.Context) error {
	delay := l.retry.NextDelay()
	l.logger.Debug("Retrying", "delay", delay)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (l *LLMImpl) attemptGenerate(ctx context.Context, messages []providers.Message) (*providers.Response, error) {
	reqBody, err := l.Provider.PrepareRequest(messages, l.Options)
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to prepare request", err)
	}

	body, err := l.do(ctx, l.client, reqBody)
	if err != nil {
		return nil, err
	}

	result, err := l.Provider.ParseResponse(body)
	if err != nil {
		return nil, NewLLMError(ErrorTypeResponse, "failed to parse response", err)
	}

	l.logger.Debug("Completion generated", "finish_reason", result.FinishReason)
	return result, nil
}

// do executes one HTTP round trip against the provider endpoint, applying
// the rate limiter and classifying failures.
func (l *LLMImpl) do(ctx context.Context, client *http.Client, reqBody []byte) ([]byte, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, NewLLMError(ErrorTypeRequest, "rate limiter wait aborted", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.Provider.Endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to create request", err)
	}

	for k, v := range l.Provider.Headers() {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewLLMError(ErrorTypeResponse, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		l.logger.Error("API error", "provider", l.Provider.Name(), "status", resp.StatusCode, "body", string(body))
		return nil, statusError(resp.StatusCode)
	}

	return body, nil
}

func statusError(statusCode int) *LLMError {
	msg := fmt.Sprintf("API error: status code %d", statusCode)
	switch statusCode {
	case http.StatusTooManyRequests:
		return NewLLMError(ErrorTypeRateLimit, msg, nil)
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewLLMError(ErrorTypeAuthentication, msg, nil)
	default:
		return NewLLMError(ErrorTypeAPI, msg, nil)
	}
}

// GenerateWithSchema constrains the completion to the JSON schema derived
// from schemaSource (a struct value or pointer) and verifies the response
// parses as JSON before returning it.
func (l *LLMImpl) GenerateWithSchema(ctx context.Context, messages []providers.Message, schemaSource any) (*providers.Response, error) {
	schema := jsonschema.Reflect(schemaSource)

	var lastErr error
	l.retry.Reset()

	for attempt := 0; attempt <= l.MaxRetries; attempt++ {
		result, err := l.attemptGenerateWithSchema(ctx, messages, schema)
		if err == nil {
			return result, nil
		}
		lastErr = err

		l.logger.Warn("Generation attempt with schema failed", "error", err, "attempt", attempt+1)

		if attempt < l.MaxRetries {
			if err := l.wait(ctx); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("failed to generate with schema after %d attempts: %w", l.MaxRetries+1, lastErr)
}

func (l *LLMImpl) attemptGenerateWithSchema(ctx context.Context, messages []providers.Message, schema *jsonschema.Schema) (*providers.Response, error) {
	reqBody, err := l.Provider.PrepareRequestWithSchema(messages, l.Options, schema)
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to prepare request", err)
	}

	body, err := l.do(ctx, l.client, reqBody)
	if err != nil {
		return nil, err
	}

	result, err := l.Provider.ParseResponse(body)
	if err != nil {
		return nil, NewLLMError(ErrorTypeResponse, "failed to parse response", err)
	}

	if !json.Valid([]byte(result.Content)) {
		return nil, NewLLMError(ErrorTypeResponse, "response is not valid JSON", nil)
	}

	return result, nil
}

// Stream opens a streaming completion. Tokens are read from the returned
// TokenStream until io.EOF; the caller must Close it.
func (l *LLMImpl) Stream(ctx context.Context, messages []providers.Message) (TokenStream, error) {
	if !l.Provider.SupportsStreaming() {
		return nil, NewLLMError(ErrorTypeRequest, "provider does not support streaming", nil)
	}

	reqBody, err := l.Provider.PrepareStreamRequest(messages, l.Options)
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to prepare stream request", err)
	}

	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, NewLLMError(ErrorTypeRequest, "rate limiter wait aborted", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.Provider.Endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to create request", err)
	}

	for k, v := range l.Provider.Headers() {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := l.streamClient.Do(req)
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to send request", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		l.logger.Error("API error", "provider", l.Provider.Name(), "status", resp.StatusCode, "body", string(body))
		return nil, statusError(resp.StatusCode)
	}

	return &providerTokenStream{
		body:     resp.Body,
		decoder:  NewSSEDecoder(resp.Body),
		provider: l.Provider,
	}, nil
}

// providerTokenStream adapts an SSE body into a TokenStream using the
// provider's chunk parser.
type providerTokenStream struct {
	body     io.ReadCloser
	decoder  *SSEDecoder
	provider providers.Provider
	index    int
	done     bool
}

func (s *providerTokenStream) Next(ctx context.Context) (*StreamToken, error) {
	if s.done {
		return nil, io.EOF
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !s.decoder.Next() {
			if err := s.decoder.Err(); err != nil {
				return nil, NewLLMError(ErrorTypeResponse, "stream read failed", err)
			}
			s.done = true
			return nil, io.EOF
		}

		data := bytes.TrimSpace(s.decoder.Event().Data)
		if len(data) == 0 {
			continue
		}
		if bytes.Equal(data, []byte("[DONE]")) {
			s.done = true
			return nil, io.EOF
		}

		chunk, err := s.provider.ParseStreamResponse(data)
		if err != nil {
			return nil, NewLLMError(ErrorTypeResponse, "failed to parse stream chunk", err)
		}
		if chunk.Content == "" && chunk.FinishReason == "" {
			continue
		}

		token := &StreamToken{
			Text:         chunk.Content,
			Type:         "text",
			Index:        s.index,
			FinishReason: chunk.FinishReason,
		}
		s.index++
		return token, nil
	}
}

func (s *providerTokenStream) Close() error {
	return s.body.Close()
}
