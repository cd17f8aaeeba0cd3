package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

const (
	geminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	geminiEmptyReply = "(gemini returned an empty response)"
)

// GeminiAdapter embeds the model name in the endpoint path. A bearer token
// (oauth_token mode) travels in the Authorization header and the API key
// is omitted from the URL; otherwise the key rides as a ?key= query
// parameter. Exactly one of the two must supply a usable credential.
type GeminiAdapter struct {
	Transport *Transport
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (a *GeminiAdapter) Chat(ctx context.Context, message string, cfg domain.RuntimeConfig) (string, error) {
	bearer := ""
	if cfg.AuthMode == domain.AuthModeOAuthToken {
		bearer = strings.TrimSpace(cfg.OAuthAccessToken)
	}
	key := cfg.APIKeyCredential()
	if bearer == "" && key == "" {
		return "", &domain.MissingCredentialError{Provider: domain.ProviderGemini, Hint: "neither an OAuth token nor an API key is set"}
	}

	base := trimBaseURL(cfg.APIURL)
	if base == "" {
		base = geminiBaseURL
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", base, cfg.Model)
	headers := map[string]string{}
	if bearer != "" {
		headers["Authorization"] = "Bearer " + bearer
	} else {
		endpoint += "?key=" + url.QueryEscape(key)
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: message}},
		}},
		GenerationConfig: geminiGenConfig{Temperature: cfg.Temperature},
	}

	status, body, err := a.Transport.PostJSON(ctx, endpoint, headers, payload)
	if err != nil {
		return "", err
	}
	if !is2xx(status) {
		return "", upstreamError(status, body)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	content := ""
	if len(parsed.Candidates) > 0 && len(parsed.Candidates[0].Content.Parts) > 0 {
		content = parsed.Candidates[0].Content.Parts[0].Text
	}

	return orPlaceholder(content, geminiEmptyReply), nil
}
