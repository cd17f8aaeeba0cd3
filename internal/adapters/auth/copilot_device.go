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
	// CopilotClientID is GitHub's public device-flow client for Copilot.
	CopilotClientID = "Iv1.b507a08c87ecfe98"
	copilotScope    = "read:user"

	defaultGitHubDomain = "github.com"

	// MetadataDomainKey holds the resolved GitHub(-Enterprise) domain in
	// session metadata; the completion step polls that host.
	MetadataDomainKey = "domain"
)

// CopilotDeviceFlow drives the standard GitHub device-authorization flow
// against github.com or an enterprise host.
type CopilotDeviceFlow struct {
	ClientID       string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	// MaxPolls caps the poll loop; 0 polls indefinitely.
	MaxPolls int
	// Scheme is for tests only; empty means https.
	Scheme string

	sleep func(context.Context, time.Duration) error
}

type copilotDeviceCodeResponse struct {
	VerificationURI string `json:"verification_uri"`
	UserCode        string `json:"user_code"`
	DeviceCode      string `json:"device_code"`
	Interval        int    `json:"interval"`
}

type copilotAccessTokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Interval         int    `json:"interval"`
}

func (f *CopilotDeviceFlow) clientID() string {
	if f.ClientID != "" {
		return f.ClientID
	}
	return CopilotClientID
}

func (f *CopilotDeviceFlow) scheme() string {
	if f.Scheme != "" {
		return f.Scheme
	}
	return "https"
}

// resolveCopilotHost normalizes the enterprise domain, defaulting to
// github.com when no override is given.
func resolveCopilotHost(enterpriseURL string) string {
	host := domain.NormalizeEnterpriseDomain(enterpriseURL)
	if host == "" {
		return defaultGitHubDomain
	}
	return host
}

// Start normalizes the enterprise domain (default github.com), requests a
// device code, and records the resolved domain in session metadata.
func (f *CopilotDeviceFlow) Start(ctx context.Context, enterpriseURL string) (domain.DeviceAuthSession, error) {
	host := resolveCopilotHost(enterpriseURL)

	values := url.Values{}
	values.Set("client_id", f.clientID())
	values.Set("scope", copilotScope)

	requestCtx, cancel := requestContext(ctx, f.RequestTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s://%s/login/device/code", f.scheme(), host)
	status, body, err := postForm(requestCtx, f.HTTPClient, endpoint, values)
	if err != nil {
		return domain.DeviceAuthSession{}, fmt.Errorf("request device code: %w", err)
	}
	if !is2xx(status) {
		return domain.DeviceAuthSession{}, &domain.UpstreamError{StatusCode: status, Body: string(body)}
	}

	var payload copilotDeviceCodeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.DeviceAuthSession{}, fmt.Errorf("decode device code response: %w", err)
	}
	if payload.DeviceCode == "" || payload.UserCode == "" || payload.VerificationURI == "" {
		return domain.DeviceAuthSession{}, fmt.Errorf("device code response missing required fields")
	}

	interval := payload.Interval
	if interval <= 0 {
		interval = defaultPollIntervalSeconds
	}
	if interval < 1 {
		interval = 1
	}

	return domain.DeviceAuthSession{
		ID:              uuid.NewString(),
		Provider:        domain.ProviderCopilot,
		VerificationURL: payload.VerificationURI,
		UserCode:        payload.UserCode,
		DeviceCode:      payload.DeviceCode,
		IntervalSeconds: interval,
		Metadata:        map[string]string{MetadataDomainKey: host},
	}, nil
}

// Complete polls the access-token endpoint on the domain recorded at start
// time. GitHub issues no separate refresh token in this flow, so the
// access token doubles as the refresh token and no expiry is tracked.
func (f *CopilotDeviceFlow) Complete(ctx context.Context, session domain.DeviceAuthSession) (domain.OAuthTokenResult, error) {
	host := session.Metadata[MetadataDomainKey]
	if host == "" {
		host = defaultGitHubDomain
	}
	endpoint := fmt.Sprintf("%s://%s/login/oauth/access_token", f.scheme(), host)

	sleep := f.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	values := url.Values{}
	values.Set("client_id", f.clientID())
	values.Set("device_code", session.DeviceCode)
	values.Set("grant_type", deviceCodeGrantType)

	for attempt := 0; ; attempt++ {
		if f.MaxPolls > 0 && attempt >= f.MaxPolls {
			return domain.OAuthTokenResult{}, ErrDeviceFlowTimeout
		}

		payload, err := f.pollOnce(ctx, endpoint, values)
		if err != nil {
			return domain.OAuthTokenResult{}, err
		}

		if payload.AccessToken != "" {
			enterprise := ""
			if host != defaultGitHubDomain {
				enterprise = host
			}
			return domain.OAuthTokenResult{
				AccessToken:   payload.AccessToken,
				RefreshToken:  payload.AccessToken,
				ExpiresAt:     0,
				EnterpriseURL: enterprise,
			}, nil
		}

		if payload.Error != "" && payload.Error != "authorization_pending" && payload.Error != "slow_down" {
			return domain.OAuthTokenResult{}, &DeniedError{Code: payload.Error, Description: payload.ErrorDescription}
		}

		interval := session.IntervalSeconds
		if payload.Interval > interval {
			interval = payload.Interval
		}
		if err := sleep(ctx, pollDelay(interval)); err != nil {
			return domain.OAuthTokenResult{}, err
		}
	}
}

func (f *CopilotDeviceFlow) pollOnce(ctx context.Context, endpoint string, values url.Values) (copilotAccessTokenResponse, error) {
	requestCtx, cancel := requestContext(ctx, f.RequestTimeout)
	defer cancel()

	status, body, err := postForm(requestCtx, f.HTTPClient, endpoint, values)
	if err != nil {
		return copilotAccessTokenResponse{}, fmt.Errorf("poll access token: %w", err)
	}
	if !is2xx(status) {
		return copilotAccessTokenResponse{}, &domain.UpstreamError{StatusCode: status, Body: string(body)}
	}

	var payload copilotAccessTokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return copilotAccessTokenResponse{}, fmt.Errorf("decode access token response: %w", err)
	}

	return payload, nil
}
