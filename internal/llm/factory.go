package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/claimaudit/internal/model"
)

// DefaultOllamaBaseURL is Ollama's OpenAI-compatible endpoint
const DefaultOllamaBaseURL = "http://localhost:11434/v1"

// NewProvider creates a new LLM provider based on configuration. The
// logger receives the provider's availability warnings.
func NewProvider(config Config, logger *zap.Logger) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config, logger)

	case "ollama":
		// Ollama speaks the OpenAI chat API and ignores the key
		if config.BaseURL == "" {
			config.BaseURL = DefaultOllamaBaseURL
		}
		if config.APIKey == "" {
			config.APIKey = "ollama"
		}
		p, err := NewOpenAIProvider(config, logger)
		if err != nil {
			return nil, err
		}
		p.name = "ollama"
		return p, nil

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:       modelConfig.Provider,
		Model:          modelConfig.Model,
		APIKey:         modelConfig.APIKey,
		BaseURL:        modelConfig.BaseURL,
		Timeout:        modelConfig.Timeout,
		StrictEvidence: modelConfig.StrictEvidence,
		MaxTokens:      modelConfig.MaxTokens,
	}
}
