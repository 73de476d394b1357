package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	LLMProvider      string // anthropic, openai, ollama
	AnthropicKey     string // API key (X-Api-Key header)
	AnthropicToken   string // OAuth token (Authorization: Bearer header)
	OpenAIKey        string
	LLMModel         string
	OllamaBaseURL    string
	DatabasePath     string
	Timezone         string
	MaxContextTokens int
	DefaultUserName  string
	SessionTTLDays   int
	PruneCron        string
}

func Load() *Config {
	_ = godotenv.Load() // ignore error if no .env

	return &Config{
		Port:             envOr("PORT", "8080"),
		LLMProvider:      envOr("LLM_PROVIDER", "anthropic"),
		AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicToken:   os.Getenv("ANTHROPIC_AUTH_TOKEN"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		OllamaBaseURL:    envOr("OLLAMA_BASE_URL", "http://localhost:11434/v1"),
		DatabasePath:     envOr("DATABASE_PATH", "./ritmo.db"),
		Timezone:         envOr("TIMEZONE", "America/Sao_Paulo"),
		MaxContextTokens: envIntOr("MAX_CONTEXT_TOKENS", 100000),
		DefaultUserName:  envOr("DEFAULT_USER_NAME", "Usuário"),
		SessionTTLDays:   envIntOr("SESSION_TTL_DAYS", 30),
		PruneCron:        envOr("PRUNE_CRON", "0 4 * * *"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
