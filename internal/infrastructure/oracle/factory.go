package oracle

import (
	"fmt"
	"os"
)

// NewProvider builds the transport for the named backend.
func NewProvider(providerName string, modelName string) (Provider, error) {
	switch providerName {
	case "openai", "":
		apiKey := os.Getenv("OPENAI_API_KEY")
		return NewOpenAIProvider(modelName, apiKey), nil
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		return NewGeminiProvider(modelName, apiKey), nil
	case "ollama":
		return NewOllamaProvider(modelName), nil
	case "mock":
		return &MockProvider{Model: modelName}, nil
	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s", providerName)
	}
}

// GetDefaultProvider builds the named transport and wraps it in the
// resilience layer so transient oracle failures never reach the evaluators.
// Provider and model overrides (flags, CURATOR_AI_* environment variables)
// are resolved by the config layer before this is called.
func GetDefaultProvider(providerName, modelName string) (Provider, error) {
	inner, err := NewProvider(providerName, modelName)
	if err != nil {
		return nil, err
	}
	return NewResilientProvider(inner, DefaultResilientConfig()), nil
}
