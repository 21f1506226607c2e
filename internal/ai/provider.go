package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kwhitfield/jobradar/internal/config"
)

// LLMProvider sends a prompt to an LLM and returns the raw text response.
// Used only by Scorer and Analyzer; not exported to the rest of the system.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewProvider builds the provider named by the AI configuration.
func NewProvider(ctx context.Context, cfg config.AIConfig) (LLMProvider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		httpClient := &http.Client{Timeout: cfg.Timeout}
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, httpClient), nil
	case config.ProviderGemini:
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
