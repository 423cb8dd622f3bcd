// Package provider abstracts the LLM backends that drive the design
// agents (Gemini via its OpenAI-compatible endpoint, OpenAI, Anthropic,
// local Ollama) behind one streaming interface.
//
// The provider layer owns all type conversions between the module's
// provider-agnostic types and each SDK's wire types; see conversions.go.
package provider

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Message is a provider-agnostic chat message.
type Message struct {
	Role    string
	Content string
}

// ToolCall is a provider-agnostic function call request from a model.
type ToolCall struct {
	Name      string
	Arguments map[string]any
}

// StreamCallback is called for each chunk of streamed response.
type StreamCallback func(chunk string, toolCalls []ToolCall) error

// Provider abstracts LLM provider implementations.
type Provider interface {
	// Chat sends messages and streams responses back via callback.
	Chat(ctx context.Context, messages []Message, callback StreamCallback) error

	// ChatWithTools sends messages with available tools and streams responses.
	ChatWithTools(ctx context.Context, messages []Message, tools []mcptypes.Tool, callback StreamCallback) error

	// GetModel returns the currently selected model name.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama    ProviderType = "ollama"
	ProviderTypeOpenAI    ProviderType = "openai"
	ProviderTypeAnthropic ProviderType = "anthropic"
	ProviderTypeGemini    ProviderType = "gemini"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // For OpenAI/Anthropic/Gemini (unused for Ollama)
}
