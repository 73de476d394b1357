package llm

import (
	"fmt"
	"strings"
)

// Provider names accepted in configuration.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
)

// defaultOllamaModel is used when no model is configured for a local ollama
// endpoint; the hosted providers pick their defaults in their own clients.
const defaultOllamaModel = "llama3.1"

// ProviderConfig selects and parameterizes the completion backend.
type ProviderConfig struct {
	Provider  string
	APIKey    string
	AuthToken string // Anthropic OAuth bearer, used instead of the API key
	Model     string
	BaseURL   string // ollama endpoint, ignored by the hosted providers
}

// NewClient builds the completion client for the configured provider. Ollama
// speaks the OpenAI wire protocol, so it reuses that client with a local base
// URL and a placeholder key.
func NewClient(cfg ProviderConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.AuthToken, cfg.Model), nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.APIKey, cfg.Model, ""), nil
	case ProviderOllama:
		model := cfg.Model
		if model == "" {
			model = defaultOllamaModel
		}
		return NewOpenAIClient("ollama", model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
