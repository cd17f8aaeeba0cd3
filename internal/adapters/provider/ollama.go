package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

const ollamaEmptyReply = "(ollama returned an empty response)"

// OllamaAdapter talks to an Ollama-style local server. No auth header is
// ever sent.
type OllamaAdapter struct {
	Transport *Transport
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

func (a *OllamaAdapter) Chat(ctx context.Context, message string, cfg domain.RuntimeConfig) (string, error) {
	endpoint := trimBaseURL(cfg.APIURL) + "/api/chat"

	payload := ollamaRequest{
		Model:    cfg.Model,
		Messages: userTurn(message),
		Stream:   false,
		Options:  ollamaOptions{Temperature: cfg.Temperature},
	}

	status, body, err := a.Transport.PostJSON(ctx, endpoint, nil, payload)
	if err != nil {
		return "", err
	}
	if !is2xx(status) {
		return "", upstreamError(status, body)
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}

	return orPlaceholder(parsed.Message.Content, ollamaEmptyReply), nil
}
