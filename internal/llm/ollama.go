package llm

const defaultOllamaBaseURL = "http://localhost:11434/v1"

// ollamaAPIKey is sent as the bearer token; Ollama ignores it but the
// OpenAI client requires one.
const ollamaAPIKey = "ollama"

// NewOllamaProvider creates a provider for a local Ollama server through its
// OpenAI-compatible endpoint. Structured output uses plain JSON mode with
// the schema described in the system prompt.
func NewOllamaProvider(cfg OllamaConfig) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "mistral"
	}
	p := newOpenAICompatible(ollamaAPIKey, baseURL, model)
	p.jsonObject = true
	return p
}
