package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Empty(t, cfg.APIKey)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithProvider(ProviderGemini),
			WithEmbeddingHost("http://custom:8080/v1"),
			WithEmbeddingModel("text-embedding-004"),
			WithAPIKey("secret"),
		)

		assert.Equal(t, ProviderGemini, cfg.Provider)
		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "text-embedding-004", cfg.EmbeddingModel)
		assert.Equal(t, "secret", cfg.APIKey)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name          string
		provider      string
		embeddingHost string
		expectedHost  string
		expectedProv  string
	}{
		{
			name:          "already has /v1",
			embeddingHost: "http://localhost:11434/v1",
			expectedHost:  "http://localhost:11434/v1",
			expectedProv:  ProviderOpenAI,
		},
		{
			name:          "missing /v1",
			embeddingHost: "http://localhost:11434",
			expectedHost:  "http://localhost:11434/v1",
			expectedProv:  ProviderOpenAI,
		},
		{
			name:          "has trailing slash",
			embeddingHost: "http://localhost:11434/",
			expectedHost:  "http://localhost:11434/v1",
			expectedProv:  ProviderOpenAI,
		},
		{
			name:          "empty host",
			embeddingHost: "",
			expectedHost:  "",
			expectedProv:  ProviderOpenAI,
		},
		{
			name:          "provider is lower-cased",
			provider:      " OpenAI ",
			embeddingHost: "https://api.openai.com/v1",
			expectedHost:  "https://api.openai.com/v1",
			expectedProv:  ProviderOpenAI,
		},
		{
			name:          "gemini host is left alone",
			provider:      "gemini",
			embeddingHost: "http://unused:1234",
			expectedHost:  "http://unused:1234",
			expectedProv:  ProviderGemini,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Provider:       tt.provider,
				EmbeddingHost:  tt.embeddingHost,
				EmbeddingModel: "test",
			}
			cfg.Normalize()

			assert.Equal(t, tt.expectedHost, cfg.EmbeddingHost)
			assert.Equal(t, tt.expectedProv, cfg.Provider)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := NewConfig(WithProvider("cohere"))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel(""))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingModel")
	})

	t.Run("openai requires host", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost(""))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingHost")
	})

	t.Run("gemini requires api key", func(t *testing.T) {
		cfg := NewConfig(WithProvider(ProviderGemini), WithEmbeddingModel("text-embedding-004"))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APIKey")

		cfg.APIKey = "k"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("normalizes before validating", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost("http://localhost:11434"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})
}
