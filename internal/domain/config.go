package domain

import (
	"strings"
	"time"
)

// AuthMode selects which credential a RuntimeConfig carries.
type AuthMode string

const (
	AuthModeAPIKey     AuthMode = "api_key"
	AuthModeOAuthToken AuthMode = "oauth_token"
)

// RefreshSkew is how close to expiry an OAuth access token may get before
// a refresh is attempted.
const RefreshSkew = 60 * time.Second

// RuntimeConfig is the per-call configuration for a chat request. It is
// passed by value and never retained or persisted by the gateway; the
// configuration store owning it is an external collaborator.
type RuntimeConfig struct {
	Provider string
	Model    string
	APIURL   string
	APIKey   string

	AuthMode          AuthMode
	OAuthAccessToken  string
	OAuthRefreshToken string
	// OAuthExpiresAt is epoch milliseconds; 0 means unknown or never.
	OAuthExpiresAt int64

	// AccountID is provider-specific, e.g. a ChatGPT account id.
	AccountID     string
	EnterpriseURL string

	Temperature float64
}

// APIKeyCredential returns the API key only when the config is in api_key
// mode. In oauth_token mode it returns empty rather than falling back to
// the key.
func (c RuntimeConfig) APIKeyCredential() string {
	if c.AuthMode == AuthModeAPIKey {
		return strings.TrimSpace(c.APIKey)
	}
	return ""
}

// BearerCredential returns the OAuth access token in oauth_token mode and
// the API key otherwise. Adapters that always send a bearer token use this
// regardless of which credential kind is configured.
func (c RuntimeConfig) BearerCredential() string {
	if c.AuthMode == AuthModeOAuthToken {
		return strings.TrimSpace(c.OAuthAccessToken)
	}
	return strings.TrimSpace(c.APIKey)
}

// TokenExpiringSoon reports whether the access token expires within
// RefreshSkew of now. An unset expiry never triggers a refresh.
func (c RuntimeConfig) TokenExpiringSoon(now time.Time) bool {
	if c.OAuthExpiresAt <= 0 {
		return false
	}
	expiresAt := time.UnixMilli(c.OAuthExpiresAt)
	return !expiresAt.After(now.Add(RefreshSkew))
}

// WithToken merges a completed OAuth flow result into the config, switching
// it to oauth_token mode. The caller owns persisting the merged value.
func (c RuntimeConfig) WithToken(token OAuthTokenResult) RuntimeConfig {
	c.AuthMode = AuthModeOAuthToken
	c.OAuthAccessToken = token.AccessToken
	c.OAuthRefreshToken = token.RefreshToken
	c.OAuthExpiresAt = token.ExpiresAt
	if token.AccountID != "" {
		c.AccountID = token.AccountID
	}
	if token.EnterpriseURL != "" {
		c.EnterpriseURL = token.EnterpriseURL
	}
	return c
}
