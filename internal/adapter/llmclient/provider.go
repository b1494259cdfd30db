package llmclient

import (
	"fmt"
	"strings"
	"time"

	"news-analyzer/internal/domain"
)

// GeneratorConfig selects and parameterizes a text-generation provider.
type GeneratorConfig struct {
	Provider string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// EmbedderConfig selects and parameterizes an embedding provider.
type EmbedderConfig struct {
	Provider   string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// NewGenerator builds the LLMClient for the configured provider.
func NewGenerator(cfg GeneratorConfig) (domain.LLMClient, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return NewGeminiGenerator(cfg.APIKey, cfg.Model, cfg.Timeout), nil
	case "openai":
		return NewOpenAIGenerator(cfg.APIKey, cfg.Model), nil
	case "anthropic":
		return NewAnthropicGenerator(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// NewEncoder builds the VectorEncoder for the configured provider.
func NewEncoder(cfg EmbedderConfig) (domain.VectorEncoder, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return NewGeminiEmbedder(cfg.APIKey, cfg.Model, cfg.Dimensions, cfg.Timeout), nil
	case "openai":
		return NewOpenAIEmbedder(cfg.APIKey, cfg.Model, cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
