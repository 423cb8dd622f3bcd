package provider

import (
	"fmt"
)

// Gemini's OpenAI compatibility layer; the OpenAI provider handles it.
const geminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// NewProvider creates a provider based on configuration.
//
// This is the centralized factory function for creating any provider
// type. It dispatches on Config.Type:
//
//   - ProviderTypeGemini: Google Gemini over its OpenAI-compatible API
//   - ProviderTypeOpenAI: OpenAI, or any OpenAI-compatible endpoint
//   - ProviderTypeAnthropic: Anthropic Claude API
//   - ProviderTypeOllama: local Ollama server
//
// Returns an error if the provider type is unknown or the
// provider-specific constructor fails (e.g., missing API key).
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Type {
	case ProviderTypeGemini:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = geminiOpenAIBaseURL
		}
		return NewOpenAIProvider(baseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// MapProviderIDToType converts a config provider ID to a ProviderType.
// For unknown IDs, returns the ID cast as ProviderType (factory will error).
func MapProviderIDToType(id string) ProviderType {
	switch id {
	case "gemini", "google":
		return ProviderTypeGemini
	case "openai":
		return ProviderTypeOpenAI
	case "anthropic":
		return ProviderTypeAnthropic
	case "ollama":
		return ProviderTypeOllama
	default:
		return ProviderType(id)
	}
}
