package providers

import (
	"fmt"
	"sync"
)

// ProviderRegistry manages the registration and retrieval of chat-model
// providers. It provides thread-safe access to provider constructors and
// supports dynamic provider registration.
type ProviderRegistry struct {
	providers map[string]ProviderConstructor
	configs   map[string]ProviderConfig
	mutex     sync.RWMutex
}

// NewProviderRegistry creates a new provider registry with the specified
// providers. If no providers are specified, all known providers are
// registered by default.
func NewProviderRegistry(providerNames ...string) *ProviderRegistry {
	registry := &ProviderRegistry{
		providers: make(map[string]ProviderConstructor),
		configs:   make(map[string]ProviderConfig),
	}

	knownProviders := getKnownProviders()
	standardConfigs := getStandardConfigs()

	for name, config := range standardConfigs {
		registry.configs[name] = config
	}

	if len(providerNames) == 0 {
		for name, constructor := range knownProviders {
			registry.providers[name] = constructor
		}
	} else {
		for _, name := range providerNames {
			if constructor, ok := knownProviders[name]; ok {
				registry.providers[name] = constructor
			}
		}
	}

	return registry
}

func getKnownProviders() map[string]ProviderConstructor {
	return map[string]ProviderConstructor{
		"mistral": func(apiKey, model string, extraHeaders map[string]string) Provider {
			return NewMistralProvider(apiKey, model, extraHeaders)
		},
		"azure-mistral": func(apiKey, model string, extraHeaders map[string]string) Provider {
			return NewAzureMistralProvider(apiKey, model, extraHeaders)
		},
	}
}

func getStandardConfigs() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		"mistral": {
			Name:               "mistral",
			Endpoint:           defaultMistralEndpoint,
			AuthHeader:         "Authorization",
			AuthPrefix:         "Bearer ",
			RequiredHeaders:    map[string]string{"Content-Type": "application/json"},
			SupportsJSONSchema: true,
			SupportsStreaming:  true,
		},
		"azure-mistral": {
			Name: "azure-mistral",
			// The endpoint is resolved per deployment from configuration
			// or AZURE_MISTRAL_ENDPOINT.
			AuthHeader:         "Authorization",
			AuthPrefix:         "Bearer ",
			RequiredHeaders:    map[string]string{"Content-Type": "application/json"},
			SupportsJSONSchema: true,
			SupportsStreaming:  true,
		},
	}
}

var (
	defaultRegistry     *ProviderRegistry
	defaultRegistryOnce sync.Once
)

// GetDefaultRegistry returns the shared registry with all known providers.
func GetDefaultRegistry() *ProviderRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewProviderRegistry()
	})
	return defaultRegistry
}

// GetProviderConfig returns the configuration for a named provider and a
// boolean indicating whether the provider was found.
func (r *ProviderRegistry) GetProviderConfig(name string) (ProviderConfig, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	cfg, exists := r.configs[name]
	return cfg, exists
}

// RegisterProviderConfig registers a new provider configuration.
func (r *ProviderRegistry) RegisterProviderConfig(name string, cfg ProviderConfig) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.configs[name] = cfg
}

// Register adds a new provider constructor to the registry.
// This method is thread-safe and can be used to dynamically add new providers.
func (r *ProviderRegistry) Register(name string, constructor ProviderConstructor) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.providers[name] = constructor
}

// Get retrieves a provider instance by name.
// It creates a new provider instance using the registered constructor.
func (r *ProviderRegistry) Get(name, apiKey, model string, extraHeaders map[string]string) (Provider, error) {
	r.mutex.RLock()
	constructor, exists := r.providers[name]
	r.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}

	return constructor(apiKey, model, extraHeaders), nil
}
