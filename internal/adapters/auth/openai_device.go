package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

const (
	// OpenAIClientID is the public Codex client id for subscription logins.
	OpenAIClientID = "app_EMoamEEZ73f0CkXaXp7hrann"
	// OpenAIRedirectURI is the fixed redirect used by the one-shot
	// authorization-code exchange that finishes the device flow.
	OpenAIRedirectURI = "http://localhost:1455/auth/callback"

	openAIAuthBase        = "https://auth.openai.com"
	openAIUserCodePath    = "/api/accounts/deviceauth/usercode"
	openAITokenStatusPath = "/api/accounts/deviceauth/token"
	openAITokenPath       = "/oauth/token"
	openAIVerificationURL = "https://auth.openai.com/deviceauth"

	defaultExpiresInSeconds = 3600
)

// OpenAIAPI points the flow at an authorization server. The zero value
// targets auth.openai.com; tests aim it at a local server.
type OpenAIAPI struct {
	BaseURL         string
	UserCodePath    string
	TokenStatusPath string
	TokenPath       string
	VerificationURL string
}

func (a OpenAIAPI) withDefaults() OpenAIAPI {
	if a.BaseURL == "" {
		a.BaseURL = openAIAuthBase
	}
	if a.UserCodePath == "" {
		a.UserCodePath = openAIUserCodePath
	}
	if a.TokenStatusPath == "" {
		a.TokenStatusPath = openAITokenStatusPath
	}
	if a.TokenPath == "" {
		a.TokenPath = openAITokenPath
	}
	if a.VerificationURL == "" {
		a.VerificationURL = openAIVerificationURL
	}
	return a
}

// OpenAIDeviceFlow drives the subscription device-authorization flow:
// request a user code, poll the token-status endpoint until the browser
// step completes, then exchange the returned authorization code.
type OpenAIDeviceFlow struct {
	API            OpenAIAPI
	ClientID       string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	// MaxPolls caps the poll loop; 0 polls indefinitely, matching the
	// upstream behavior this flow reproduces.
	MaxPolls int

	sleep func(context.Context, time.Duration) error
}

type openAIUserCodeResponse struct {
	UserCode     string `json:"user_code"`
	DeviceAuthID string `json:"device_auth_id"`
	Interval     int    `json:"interval"`
}

type openAITokenStatusResponse struct {
	AuthorizationCode string `json:"authorization_code"`
	CodeVerifier      string `json:"code_verifier"`
	Interval          int    `json:"interval"`
}

type openAITokenExchangeResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	IDToken      string `json:"id_token"`
}

func (f *OpenAIDeviceFlow) clientID() string {
	if f.ClientID != "" {
		return f.ClientID
	}
	return OpenAIClientID
}

// Start requests a user code and returns the session the caller shows to
// the user before polling Complete.
func (f *OpenAIDeviceFlow) Start(ctx context.Context) (domain.DeviceAuthSession, error) {
	api := f.API.withDefaults()

	requestCtx, cancel := requestContext(ctx, f.RequestTimeout)
	defer cancel()

	status, body, err := postJSON(requestCtx, f.HTTPClient, api.BaseURL+api.UserCodePath, map[string]string{
		"client_id": f.clientID(),
	})
	if err != nil {
		return domain.DeviceAuthSession{}, fmt.Errorf("request user code: %w", err)
	}
	if !is2xx(status) {
		return domain.DeviceAuthSession{}, &domain.UpstreamError{StatusCode: status, Body: string(body)}
	}

	var payload openAIUserCodeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.DeviceAuthSession{}, fmt.Errorf("decode user code response: %w", err)
	}
	if payload.UserCode == "" || payload.DeviceAuthID == "" {
		return domain.DeviceAuthSession{}, fmt.Errorf("user code response missing required fields")
	}

	interval := payload.Interval
	if interval <= 0 {
		interval = defaultPollIntervalSeconds
	}

	return domain.DeviceAuthSession{
		ID:              uuid.NewString(),
		Provider:        domain.ProviderOpenAI,
		VerificationURL: api.VerificationURL,
		UserCode:        payload.UserCode,
		DeviceCode:      payload.DeviceAuthID,
		IntervalSeconds: interval,
		Metadata:        map[string]string{},
	}, nil
}

// Complete polls the token-status endpoint until the response carries both
// an authorization code and a PKCE verifier, then performs the one-shot
// code exchange. Without a MaxPolls cap it polls until the server answers
// or the context is canceled.
func (f *OpenAIDeviceFlow) Complete(ctx context.Context, session domain.DeviceAuthSession) (domain.OAuthTokenResult, error) {
	api := f.API.withDefaults()
	sleep := f.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 0; ; attempt++ {
		if f.MaxPolls > 0 && attempt >= f.MaxPolls {
			return domain.OAuthTokenResult{}, ErrDeviceFlowTimeout
		}

		pending, err := f.pollOnce(ctx, api, session)
		if err != nil {
			return domain.OAuthTokenResult{}, err
		}
		if pending.AuthorizationCode != "" && pending.CodeVerifier != "" {
			return f.exchangeCode(ctx, api, pending.AuthorizationCode, pending.CodeVerifier)
		}

		if err := sleep(ctx, pollDelay(session.IntervalSeconds)); err != nil {
			return domain.OAuthTokenResult{}, err
		}
	}
}

func (f *OpenAIDeviceFlow) pollOnce(ctx context.Context, api OpenAIAPI, session domain.DeviceAuthSession) (openAITokenStatusResponse, error) {
	requestCtx, cancel := requestContext(ctx, f.RequestTimeout)
	defer cancel()

	status, body, err := postJSON(requestCtx, f.HTTPClient, api.BaseURL+api.TokenStatusPath, map[string]string{
		"device_auth_id": session.DeviceCode,
		"user_code":      session.UserCode,
	})
	if err != nil {
		return openAITokenStatusResponse{}, fmt.Errorf("poll token status: %w", err)
	}
	if !is2xx(status) {
		return openAITokenStatusResponse{}, &domain.UpstreamError{StatusCode: status, Body: string(body)}
	}

	var payload openAITokenStatusResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return openAITokenStatusResponse{}, fmt.Errorf("decode token status response: %w", err)
	}

	return payload, nil
}

func (f *OpenAIDeviceFlow) exchangeCode(ctx context.Context, api OpenAIAPI, code string, verifier string) (domain.OAuthTokenResult, error) {
	values := url.Values{}
	values.Set("grant_type", "authorization_code")
	values.Set("code", code)
	values.Set("code_verifier", verifier)
	values.Set("redirect_uri", OpenAIRedirectURI)
	values.Set("client_id", f.clientID())

	requestCtx, cancel := requestContext(ctx, f.RequestTimeout)
	defer cancel()

	status, body, err := postForm(requestCtx, f.HTTPClient, api.BaseURL+api.TokenPath, values)
	if err != nil {
		return domain.OAuthTokenResult{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	if !is2xx(status) {
		return domain.OAuthTokenResult{}, &domain.UpstreamError{StatusCode: status, Body: string(body)}
	}

	var tokens openAITokenExchangeResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return domain.OAuthTokenResult{}, fmt.Errorf("decode token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return domain.OAuthTokenResult{}, ErrMalformedTokenResponse
	}

	expiresIn := tokens.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresInSeconds
	}

	return domain.OAuthTokenResult{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(expiresIn) * time.Second).UnixMilli(),
		AccountID:    ChatGPTAccountID(tokens.IDToken),
	}, nil
}
