package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

const (
	anthropicBaseURL   = "https://api.anthropic.com/v1"
	anthropicVersion   = "2023-06-01"
	anthropicOAuthBeta = "oauth-2025-04-20"
	anthropicMaxTokens = 1024

	anthropicEmptyReply = "(anthropic returned an empty response)"
)

// AnthropicAdapter speaks the Messages API. The two auth conventions are
// mutually exclusive: x-api-key in API-key mode, bearer plus the OAuth
// beta header in oauth_token mode. Never both.
type AnthropicAdapter struct {
	Transport *Transport
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (a *AnthropicAdapter) Chat(ctx context.Context, message string, cfg domain.RuntimeConfig) (string, error) {
	headers := map[string]string{"anthropic-version": anthropicVersion}

	switch cfg.AuthMode {
	case domain.AuthModeOAuthToken:
		token := cfg.BearerCredential()
		if token == "" {
			return "", &domain.MissingCredentialError{Provider: domain.ProviderAnthropic, Hint: "no OAuth access token"}
		}
		headers["Authorization"] = "Bearer " + token
		headers["anthropic-beta"] = anthropicOAuthBeta
	default:
		key := cfg.APIKeyCredential()
		if key == "" {
			return "", &domain.MissingCredentialError{Provider: domain.ProviderAnthropic, Hint: "no API key"}
		}
		headers["x-api-key"] = key
	}

	base := trimBaseURL(cfg.APIURL)
	if base == "" {
		base = anthropicBaseURL
	}

	payload := anthropicRequest{
		Model:       cfg.Model,
		MaxTokens:   anthropicMaxTokens,
		Temperature: cfg.Temperature,
		Messages:    userTurn(message),
	}

	status, body, err := a.Transport.PostJSON(ctx, base+"/messages", headers, payload)
	if err != nil {
		return "", err
	}
	if !is2xx(status) {
		return "", upstreamError(status, body)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}

	content := ""
	if len(parsed.Content) > 0 {
		content = parsed.Content[0].Text
	}

	return orPlaceholder(content, anthropicEmptyReply), nil
}
