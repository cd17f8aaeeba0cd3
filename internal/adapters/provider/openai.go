package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

const (
	openAIBaseURL     = "https://api.openai.com/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	copilotBaseURL    = "https://api.githubcopilot.com"

	copilotIntegrationID = "vscode-chat"
	copilotEditorVersion = "vscode/1.99.2"

	compatEmptyReply = "(no response content)"
)

// OpenAICompatAdapter serves every chat-completions-shaped API: OpenAI in
// API-key mode, OpenRouter, and GitHub Copilot. It always authenticates
// with a bearer token, whichever credential kind the config carries.
type OpenAICompatAdapter struct {
	Transport *Transport
}

type completionsRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type completionsResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (a *OpenAICompatAdapter) Chat(ctx context.Context, message string, cfg domain.RuntimeConfig) (string, error) {
	kind, err := domain.ParseProviderKind(cfg.Provider)
	if err != nil {
		return "", err
	}

	bearer := cfg.BearerCredential()
	if bearer == "" {
		return "", &domain.MissingCredentialError{Provider: kind, Hint: "a bearer token is required"}
	}

	base := trimBaseURL(cfg.APIURL)
	if base == "" {
		base = defaultCompatBaseURL(kind)
	}

	headers := map[string]string{"Authorization": "Bearer " + bearer}
	if kind == domain.ProviderCopilot {
		headers["Copilot-Integration-Id"] = copilotIntegrationID
		headers["Editor-Version"] = copilotEditorVersion
		if enterprise := domain.NormalizeEnterpriseDomain(cfg.EnterpriseURL); enterprise != "" {
			headers["X-GitHub-Host"] = enterprise
		}
	}

	payload := completionsRequest{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Messages:    userTurn(message),
	}

	status, body, err := a.Transport.PostJSON(ctx, base+"/chat/completions", headers, payload)
	if err != nil {
		return "", err
	}
	if !is2xx(status) {
		return "", upstreamError(status, body)
	}

	var parsed completionsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode completions response: %w", err)
	}

	content := ""
	if len(parsed.Choices) > 0 {
		content = parsed.Choices[0].Message.Content
	}

	return orPlaceholder(content, compatEmptyReply), nil
}

func defaultCompatBaseURL(kind domain.ProviderKind) string {
	switch kind {
	case domain.ProviderOpenRouter:
		return openRouterBaseURL
	case domain.ProviderCopilot:
		return copilotBaseURL
	default:
		return openAIBaseURL
	}
}
