package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

const (
	// DefaultCodexEndpoint is the ChatGPT-subscription responses surface
	// used when the config does not point elsewhere.
	DefaultCodexEndpoint = "https://chatgpt.com/backend-api/codex/responses"

	codexEmptyReply = "(codex returned an empty response)"
)

// CodexAdapter serves OpenAI in subscription (oauth_token) mode via the
// Codex responses API. The access token is resolved through Tokens, which
// refreshes stale tokens fail-soft before the request goes out.
type CodexAdapter struct {
	Transport *Transport
	Tokens    BearerSource
}

type codexRequest struct {
	Model string        `json:"model"`
	Input []chatMessage `json:"input"`
	Store bool          `json:"store"`
}

type codexResponse struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

func (a *CodexAdapter) Chat(ctx context.Context, message string, cfg domain.RuntimeConfig) (string, error) {
	token := cfg.BearerCredential()
	if a.Tokens != nil {
		token = a.Tokens.AccessToken(ctx, cfg)
	}
	if token == "" {
		return "", &domain.MissingCredentialError{
			Provider: domain.ProviderOpenAI,
			Hint:     "no OAuth access token; complete a device or browser login first",
		}
	}

	endpoint := trimBaseURL(cfg.APIURL)
	if endpoint == "" {
		endpoint = DefaultCodexEndpoint
	}

	headers := map[string]string{"Authorization": "Bearer " + token}
	if cfg.AccountID != "" {
		headers["ChatGPT-Account-Id"] = cfg.AccountID
	}

	payload := codexRequest{
		Model: cfg.Model,
		Input: userTurn(message),
		Store: false,
	}

	status, body, err := a.Transport.PostJSON(ctx, endpoint, headers, payload)
	if err != nil {
		return "", err
	}
	if !is2xx(status) {
		return "", upstreamError(status, body)
	}

	var parsed codexResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode codex response: %w", err)
	}

	content := parsed.OutputText
	if content == "" && len(parsed.Output) > 0 && len(parsed.Output[0].Content) > 0 {
		content = parsed.Output[0].Content[0].Text
	}

	return orPlaceholder(content, codexEmptyReply), nil
}
