package embedding

import (
	"context"
	"fmt"

	"docchat/internal/config"
	"docchat/internal/rag/interfaces"
)

// New builds the configured embedding provider. It returns nil without an
// error when the provider is gemini but no API key is configured.
func New(ctx context.Context, cfg *config.EmbeddingConfig) (interfaces.EmbeddingModel, error) {
	switch cfg.Provider {
	case "gemini", "":
		if cfg.Gemini.APIKey == "" {
			return nil, nil
		}
		return NewGenaiEmbedder(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, nil
		}
		return NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model), nil
	case "ollama":
		baseURL := cfg.Ollama.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return NewOllamaEmbedder(baseURL, cfg.Ollama.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
