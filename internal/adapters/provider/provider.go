// Package provider holds one adapter per upstream LLM API family. Each
// adapter knows its request envelope, auth header convention, and
// response-extraction path; dispatch is a closed switch over ProviderKind.
package provider

import (
	"context"
	"strings"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

// Adapter translates one chat message into a provider's wire format and
// extracts the assistant text from the response.
type Adapter interface {
	Chat(ctx context.Context, message string, cfg domain.RuntimeConfig) (string, error)
}

// BearerSource resolves the access token for providers that refresh OAuth
// credentials before a request.
type BearerSource interface {
	AccessToken(ctx context.Context, cfg domain.RuntimeConfig) string
}

// Registry selects the adapter for a parsed provider kind. There is no
// fallback chain: if the selected adapter fails, the call fails.
type Registry struct {
	ollama     *OllamaAdapter
	compatible *OpenAICompatAdapter
	codex      *CodexAdapter
	anthropic  *AnthropicAdapter
	gemini     *GeminiAdapter
}

// NewRegistry wires all adapters over a shared transport. codexTokens may
// be nil, in which case the Codex adapter uses the configured access token
// without attempting a refresh.
func NewRegistry(transport *Transport, codexTokens BearerSource) *Registry {
	if transport == nil {
		transport = NewTransport()
	}

	return &Registry{
		ollama:     &OllamaAdapter{Transport: transport},
		compatible: &OpenAICompatAdapter{Transport: transport},
		codex:      &CodexAdapter{Transport: transport, Tokens: codexTokens},
		anthropic:  &AnthropicAdapter{Transport: transport},
		gemini:     &GeminiAdapter{Transport: transport},
	}
}

// For returns the adapter serving the given config. OpenAI splits on auth
// mode: subscription (oauth_token) traffic goes through the Codex
// responses endpoint, API-key traffic through the standard completions
// surface.
func (r *Registry) For(kind domain.ProviderKind, cfg domain.RuntimeConfig) Adapter {
	switch kind {
	case domain.ProviderOllama:
		return r.ollama
	case domain.ProviderOpenAI:
		if cfg.AuthMode == domain.AuthModeOAuthToken {
			return r.codex
		}
		return r.compatible
	case domain.ProviderOpenRouter:
		return r.compatible
	case domain.ProviderCopilot:
		return r.compatible
	case domain.ProviderAnthropic:
		return r.anthropic
	case domain.ProviderGemini:
		return r.gemini
	default:
		return nil
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func userTurn(message string) []chatMessage {
	return []chatMessage{{Role: "user", Content: message}}
}

func trimBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// orPlaceholder normalizes a blank extracted content field to a
// provider-specific placeholder. An upstream 2xx with no text is not a
// transport failure.
func orPlaceholder(content string, placeholder string) string {
	if strings.TrimSpace(content) == "" {
		return placeholder
	}
	return content
}
