package domain

import "strings"

// ProviderKind identifies an upstream LLM API family.
type ProviderKind string

const (
	ProviderOllama     ProviderKind = "ollama"
	ProviderOpenAI     ProviderKind = "openai"
	ProviderOpenRouter ProviderKind = "openrouter"
	ProviderCopilot    ProviderKind = "copilot"
	ProviderAnthropic  ProviderKind = "anthropic"
	ProviderGemini     ProviderKind = "gemini"
)

// ParseProviderKind maps a raw provider string to its ProviderKind.
// Matching is case-insensitive, surrounding whitespace is ignored, and
// known synonyms collapse to a single kind. Anything else is an
// *UnsupportedProviderError; there is no fallback provider.
func ParseProviderKind(raw string) (ProviderKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ollama":
		return ProviderOllama, nil
	case "openai":
		return ProviderOpenAI, nil
	case "openrouter":
		return ProviderOpenRouter, nil
	case "copilot", "github-copilot":
		return ProviderCopilot, nil
	case "anthropic":
		return ProviderAnthropic, nil
	case "gemini", "google", "google-gemini":
		return ProviderGemini, nil
	default:
		return "", &UnsupportedProviderError{Provider: raw}
	}
}
