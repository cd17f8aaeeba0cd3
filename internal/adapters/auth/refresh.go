package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zeroclaw/provider-gateway/internal/domain"
	"github.com/zeroclaw/provider-gateway/internal/ports"
)

// Refresher performs the refresh-token grant against the OpenAI token
// endpoint.
type Refresher struct {
	TokenURL       string
	ClientID       string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// RefreshedToken is a successful refresh-token grant result.
type RefreshedToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

func (r Refresher) tokenURL() string {
	if r.TokenURL != "" {
		return r.TokenURL
	}
	return openAIAuthBase + openAITokenPath
}

func (r Refresher) clientID() string {
	if r.ClientID != "" {
		return r.ClientID
	}
	return OpenAIClientID
}

// Refresh exchanges a refresh token for a new access token.
func (r Refresher) Refresh(ctx context.Context, refreshToken string) (RefreshedToken, error) {
	values := url.Values{}
	values.Set("grant_type", "refresh_token")
	values.Set("refresh_token", refreshToken)
	values.Set("client_id", r.clientID())

	requestCtx, cancel := requestContext(ctx, r.RequestTimeout)
	defer cancel()

	status, body, err := postForm(requestCtx, r.HTTPClient, r.tokenURL(), values)
	if err != nil {
		return RefreshedToken{}, fmt.Errorf("refresh access token: %w", err)
	}
	if !is2xx(status) {
		return RefreshedToken{}, &domain.UpstreamError{StatusCode: status, Body: string(body)}
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return RefreshedToken{}, fmt.Errorf("decode refresh response: %w", err)
	}
	if payload.AccessToken == "" {
		return RefreshedToken{}, ErrMalformedTokenResponse
	}

	expiresIn := payload.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresInSeconds
	}

	return RefreshedToken{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(expiresIn) * time.Second).UnixMilli(),
	}, nil
}

// CodexTokenSource resolves the bearer token for subscription-mode OpenAI
// calls, refreshing stale tokens first. On refresh failure the stale token
// is returned and the downstream request surfaces the upstream auth error.
type CodexTokenSource struct {
	Refresher Refresher
	Clock     ports.Clock
}

func (s CodexTokenSource) AccessToken(ctx context.Context, cfg domain.RuntimeConfig) string {
	current := cfg.BearerCredential()
	if current == "" {
		// No token at all: the caller must complete a login flow first.
		return ""
	}

	clock := s.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	if !cfg.TokenExpiringSoon(clock.Now()) || cfg.OAuthRefreshToken == "" {
		return current
	}

	refreshed, err := s.Refresher.Refresh(ctx, cfg.OAuthRefreshToken)
	if err != nil {
		return current
	}
	return refreshed.AccessToken
}
