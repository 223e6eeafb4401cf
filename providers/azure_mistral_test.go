package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/gomistral/config"
)

func newAzureProvider(t *testing.T, apiKey string) *AzureMistralProvider {
	t.Helper()
	p := NewAzureMistralProvider(apiKey, "mistral-large", nil)
	azure, ok := p.(*AzureMistralProvider)
	require.True(t, ok)
	return azure
}

func clearAzureEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvAzureEndpoint, "")
	t.Setenv(config.EnvAzureAPIKey, "")
	t.Setenv(config.EnvAPIKey, "")
}

func TestValidateEnvironmentMissingEndpoint(t *testing.T) {
	clearAzureEnv(t)

	azure := newAzureProvider(t, "key")
	err := azure.ValidateEnvironment(config.NewConfig())

	require.Error(t, err)
	var confErr *config.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Contains(t, err.Error(), "AZURE_MISTRAL_ENDPOINT")
}

func TestValidateEnvironmentEndpointFromEnv(t *testing.T) {
	clearAzureEnv(t)
	t.Setenv(config.EnvAzureEndpoint, "https://x.example/")

	azure := newAzureProvider(t, "key")
	require.NoError(t, azure.ValidateEnvironment(config.NewConfig()))

	assert.Equal(t, "https://x.example/", azure.AzureEndpoint())
	// Trailing slash is normalized when the request path is joined.
	assert.Equal(t, "https://x.example/v1/chat/completions", azure.Endpoint())
}

func TestValidateEnvironmentExplicitEndpointWins(t *testing.T) {
	clearAzureEnv(t)
	t.Setenv(config.EnvAzureEndpoint, "https://from-env.example")

	cfg := config.NewConfig()
	config.ApplyOptions(cfg, config.SetAzureEndpoint("https://explicit.example"))

	azure := newAzureProvider(t, "key")
	require.NoError(t, azure.ValidateEnvironment(cfg))
	assert.Equal(t, "https://explicit.example", azure.AzureEndpoint())
}

func TestValidateEnvironmentAPIKeyPriority(t *testing.T) {
	clearAzureEnv(t)
	t.Setenv(config.EnvAzureEndpoint, "https://x.example")
	t.Setenv(config.EnvAzureAPIKey, "a")
	t.Setenv(config.EnvAPIKey, "b")

	azure := newAzureProvider(t, "")
	require.NoError(t, azure.ValidateEnvironment(config.NewConfig()))

	assert.Equal(t, "Bearer a", azure.Headers()["Authorization"])
}

func TestValidateEnvironmentExplicitAPIKeyWins(t *testing.T) {
	clearAzureEnv(t)
	t.Setenv(config.EnvAzureEndpoint, "https://x.example")
	t.Setenv(config.EnvAzureAPIKey, "env-key")

	azure := newAzureProvider(t, "explicit-key")
	require.NoError(t, azure.ValidateEnvironment(config.NewConfig()))

	assert.Equal(t, "Bearer explicit-key", azure.Headers()["Authorization"])
}

func TestValidateEnvironmentTemperatureRange(t *testing.T) {
	clearAzureEnv(t)
	t.Setenv(config.EnvAzureEndpoint, "https://x.example")

	tests := []struct {
		name        string
		temperature float64
		wantErr     bool
	}{
		{"too high", 1.5, true},
		{"negative", -0.1, true},
		{"valid", 0.5, false},
		{"lower bound", 0, false},
		{"upper bound", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			config.ApplyOptions(cfg, config.SetTemperature(tt.temperature))

			err := newAzureProvider(t, "key").ValidateEnvironment(cfg)
			if tt.wantErr {
				var confErr *config.ConfigurationError
				require.ErrorAs(t, err, &confErr)
				assert.Contains(t, err.Error(), "temperature")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateEnvironmentTopPRange(t *testing.T) {
	clearAzureEnv(t)
	t.Setenv(config.EnvAzureEndpoint, "https://x.example")

	tests := []struct {
		name    string
		topP    float64
		wantErr bool
	}{
		{"negative", -0.1, true},
		{"too high", 1.01, true},
		{"lower bound", 0, false},
		{"upper bound", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			config.ApplyOptions(cfg, config.SetTopP(tt.topP))

			err := newAzureProvider(t, "key").ValidateEnvironment(cfg)
			if tt.wantErr {
				var confErr *config.ConfigurationError
				require.ErrorAs(t, err, &confErr)
				assert.Contains(t, err.Error(), "top_p")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateEnvironmentIdempotentClients(t *testing.T) {
	clearAzureEnv(t)
	t.Setenv(config.EnvAzureEndpoint, "https://x.example")

	azure := newAzureProvider(t, "key")
	cfg := config.NewConfig()

	require.NoError(t, azure.ValidateEnvironment(cfg))
	client := azure.Client()
	streamClient := azure.StreamClient()
	require.NotNil(t, client)
	require.NotNil(t, streamClient)

	require.NoError(t, azure.ValidateEnvironment(cfg))
	assert.Same(t, client, azure.Client())
	assert.Same(t, streamClient, azure.StreamClient())
}

func TestValidateEnvironmentNoUsableClientsOnFailure(t *testing.T) {
	clearAzureEnv(t)

	azure := newAzureProvider(t, "key")
	require.Error(t, azure.ValidateEnvironment(config.NewConfig()))
	assert.Nil(t, azure.Client())
	assert.Nil(t, azure.StreamClient())
}

func TestDefaultParamsOmitsAbsentValues(t *testing.T) {
	clearAzureEnv(t)
	t.Setenv(config.EnvAzureEndpoint, "https://x.example")

	tests := []struct {
		name    string
		opts    []config.ConfigOption
		want    map[string]any
		notWant []string
	}{
		{
			name:    "all absent",
			want:    map[string]any{"model": "mistral-large"},
			notWant: []string{"temperature", "max_tokens", "top_p", "random_seed"},
		},
		{
			name: "temperature only",
			opts: []config.ConfigOption{config.SetTemperature(0.7)},
			want: map[string]any{"model": "mistral-large", "temperature": 0.7},
			notWant: []string{
				"max_tokens", "top_p", "random_seed",
			},
		},
		{
			name: "all present",
			opts: []config.ConfigOption{
				config.SetTemperature(0.7),
				config.SetTopP(0.9),
				config.SetMaxTokens(256),
				config.SetRandomSeed(42),
			},
			want: map[string]any{
				"model":       "mistral-large",
				"temperature": 0.7,
				"top_p":       0.9,
				"max_tokens":  256,
				"random_seed": 42,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			config.ApplyOptions(cfg, tt.opts...)

			azure := newAzureProvider(t, "key")
			azure.SetDefaultOptions(cfg)
			require.NoError(t, azure.ValidateEnvironment(cfg))

			params := azure.DefaultParams()
			for k, v := range tt.want {
				assert.Equal(t, v, params[k], "param %q", k)
			}
			for _, k := range tt.notWant {
				assert.NotContains(t, params, k)
			}
		})
	}
}

func TestIdentifyingParamsContainsAzureEndpoint(t *testing.T) {
	clearAzureEnv(t)
	t.Setenv(config.EnvAzureEndpoint, "https://x.example")

	azure := newAzureProvider(t, "key")
	require.NoError(t, azure.ValidateEnvironment(config.NewConfig()))

	// Even a conflicting option must not displace the resolved endpoint.
	azure.SetOption("azure_endpoint", "https://bogus.example")

	params := azure.IdentifyingParams()
	assert.Equal(t, "https://x.example", params["azure_endpoint"])
}

func TestAttributesIncludesAzureEndpoint(t *testing.T) {
	clearAzureEnv(t)
	t.Setenv(config.EnvAzureEndpoint, "https://x.example")

	azure := newAzureProvider(t, "key")
	require.NoError(t, azure.ValidateEnvironment(config.NewConfig()))

	attrs := azure.Attributes()
	assert.Equal(t, "https://x.example", attrs["azure_endpoint"])
	assert.Equal(t, "mistral-large", attrs["model"])
}

func TestSecretFields(t *testing.T) {
	azure := newAzureProvider(t, "key")
	assert.Equal(t, map[string]string{"mistral_api_key": "AZURE_MISTRAL_API_KEY"}, azure.SecretFields())
}

func TestAzureProviderName(t *testing.T) {
	azure := newAzureProvider(t, "key")
	assert.Equal(t, "azure-mistral-chat", azure.Name())
}

func TestBoundClientInjectsHeaders(t *testing.T) {
	clearAzureEnv(t)

	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Setenv(config.EnvAzureEndpoint, server.URL)
	t.Setenv(config.EnvAzureAPIKey, "secret-token")

	azure := newAzureProvider(t, "")
	require.NoError(t, azure.ValidateEnvironment(config.NewConfig()))

	req, err := http.NewRequest(http.MethodPost, azure.Endpoint(), nil)
	require.NoError(t, err)

	resp, err := azure.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer secret-token", gotHeaders.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "application/json", gotHeaders.Get("Accept"))
}

func TestPrepareRequestDelegatesToBase(t *testing.T) {
	clearAzureEnv(t)
	t.Setenv(config.EnvAzureEndpoint, "https://x.example")

	azure := newAzureProvider(t, "key")
	base := NewMistralProvider("key", "mistral-large", nil)

	messages := []Message{{Role: "user", Content: "hello"}}

	azureBody, err := azure.PrepareRequest(messages, nil)
	require.NoError(t, err)
	baseBody, err := base.PrepareRequest(messages, nil)
	require.NoError(t, err)

	assert.JSONEq(t, string(baseBody), string(azureBody))
}
