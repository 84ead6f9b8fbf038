package ai

// Embedding providers understood by Config.
const (
	// ProviderOpenAI talks to OpenAI or any OpenAI-compatible embeddings API.
	ProviderOpenAI = "openai"

	// ProviderGemini talks to the Google Gemini API.
	ProviderGemini = "gemini"
)

// Providers lists the valid values of Config.Provider.
var Providers = []string{
	ProviderOpenAI,
	ProviderGemini,
}
