package llm

import (
	"context"
	"fmt"

	"docchat/internal/config"
	"docchat/internal/rag/interfaces"
)

// New builds the configured generation provider. It returns nil without an
// error when the provider is gemini but no API key is configured, so the
// service can start and report the missing key instead of crashing.
func New(ctx context.Context, cfg *config.LLMConfig) (interfaces.LLM, error) {
	switch cfg.Provider {
	case "gemini", "":
		if cfg.Gemini.APIKey == "" {
			return nil, nil
		}
		return NewGeminiLLM(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, nil
		}
		return NewOpenAILLM(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model), nil
	case "ollama":
		baseURL := cfg.Ollama.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return NewOllamaLLM(baseURL, cfg.Ollama.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
