package gomistral

import (
	"context"

	"github.com/teilomillet/gomistral/config"
	"github.com/teilomillet/gomistral/internal/logging"
	"github.com/teilomillet/gomistral/llm"
	"github.com/teilomillet/gomistral/providers"
)

// ChatModel is the public client interface for Mistral chat completions,
// whether against the Mistral platform or an Azure-hosted deployment.
type ChatModel interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt *Prompt) (string, error)

	// GenerateWithSchema constrains the completion to the JSON schema
	// derived from schemaSource (a struct value or pointer).
	GenerateWithSchema(ctx context.Context, prompt *Prompt, schemaSource any) (string, error)

	// Stream produces a token stream for the prompt. The caller reads
	// until io.EOF and must Close the stream.
	Stream(ctx context.Context, prompt *Prompt) (llm.TokenStream, error)

	// Chat sends one user message, keeping conversation history when
	// memory is configured.
	Chat(ctx context.Context, message string) (string, error)

	// GetProvider returns the provider type tag (e.g. "azure-mistral-chat").
	GetProvider() string

	// GetModel returns the configured model or deployment name.
	GetModel() string

	// IdentifyingParams returns the parameters identifying this client
	// instance for logging and telemetry.
	IdentifyingParams() map[string]any

	// SetOption sets a per-request option on the underlying client.
	SetOption(key string, value any)

	// UpdateLogLevel changes logging verbosity at runtime.
	UpdateLogLevel(level LogLevel)
}

type chatModelImpl struct {
	llm    llm.LLM
	memory *llm.Memory
	model  string
	logger logging.Logger
	config *Config
}

// New builds a ChatModel. Configuration is loaded from the environment
// first, then the options are applied on top, so explicit options always
// win. All validation happens here, including the Azure adapter's
// endpoint and credential resolution; an error means no usable client
// was constructed.
func New(opts ...ConfigOption) (ChatModel, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	config.ApplyOptions(cfg, opts...)

	logger := logging.NewLogger(cfg.LogLevel)

	inner, err := llm.NewLLM(cfg, logger, providers.GetDefaultRegistry())
	if err != nil {
		return nil, err
	}

	model := &chatModelImpl{
		llm:    inner,
		model:  cfg.Model,
		logger: logger,
		config: cfg,
	}

	if cfg.MemoryOption != nil {
		memory, err := llm.NewMemory(cfg.MemoryOption.MaxTokens, cfg.Model, logger)
		if err != nil {
			return nil, err
		}
		model.memory = memory
	}

	return model, nil
}

func (m *chatModelImpl) Generate(ctx context.Context, prompt *Prompt) (string, error) {
	resp, err := m.llm.Generate(ctx, prompt.toMessages())
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (m *chatModelImpl) GenerateWithSchema(ctx context.Context, prompt *Prompt, schemaSource any) (string, error) {
	resp, err := m.llm.GenerateWithSchema(ctx, prompt.toMessages(), schemaSource)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (m *chatModelImpl) Stream(ctx context.Context, prompt *Prompt) (llm.TokenStream, error) {
	return m.llm.Stream(ctx, prompt.toMessages())
}

func (m *chatModelImpl) Chat(ctx context.Context, message string) (string, error) {
	if m.memory == nil {
		return m.Generate(ctx, NewPrompt(message))
	}

	m.memory.Add("user", message)
	resp, err := m.llm.Generate(ctx, m.memory.Messages())
	if err != nil {
		return "", err
	}
	m.memory.Add("assistant", resp.Content)
	return resp.Content, nil
}

func (m *chatModelImpl) GetProvider() string {
	return m.llm.GetProvider().Name()
}

func (m *chatModelImpl) GetModel() string {
	return m.model
}

// identifyingParamsProvider is implemented by providers that expose
// identifying parameters (the Azure adapter does).
type identifyingParamsProvider interface {
	IdentifyingParams() map[string]any
}

func (m *chatModelImpl) IdentifyingParams() map[string]any {
	if ip, ok := m.llm.GetProvider().(identifyingParamsProvider); ok {
		return ip.IdentifyingParams()
	}
	return map[string]any{"model": m.model, "provider": m.GetProvider()}
}

func (m *chatModelImpl) SetOption(key string, value any) {
	m.llm.SetOption(key, value)
}

func (m *chatModelImpl) UpdateLogLevel(level LogLevel) {
	m.logger.SetLevel(level)
	m.llm.SetDebugLevel(level)
}
