package login

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

func TestDevicePromptShowsURLAndCode(t *testing.T) {
	t.Parallel()

	out := NewRenderer().DevicePrompt(domain.DeviceAuthSession{
		Provider:        domain.ProviderOpenAI,
		VerificationURL: "https://auth.openai.com/deviceauth",
		UserCode:        "ABCD-1234",
	})

	assert.Contains(t, out, "Sign in to openai")
	assert.Contains(t, out, "https://auth.openai.com/deviceauth")
	assert.Contains(t, out, "ABCD-1234")
	assert.Contains(t, out, "Waiting for authorization")
}

func TestLoginSuccessIncludesAccountAndExpiry(t *testing.T) {
	t.Parallel()

	out := NewRenderer().LoginSuccess(domain.ProviderCopilot, domain.OAuthTokenResult{
		AccessToken:   "gho_secret",
		AccountID:     "acct-1",
		EnterpriseURL: "ghe.example.com",
	})

	assert.Contains(t, out, "Signed in to copilot")
	assert.Contains(t, out, "acct-1")
	assert.Contains(t, out, "ghe.example.com")
	assert.NotContains(t, out, "gho_secret")
}

func TestConfigStatusNeverPrintsCredentials(t *testing.T) {
	t.Parallel()

	out := NewRenderer().ConfigStatus(domain.RuntimeConfig{
		Provider:         "anthropic",
		Model:            "claude-sonnet-4",
		AuthMode:         domain.AuthModeOAuthToken,
		OAuthAccessToken: "at-secret",
		APIKey:           "sk-secret",
		OAuthExpiresAt:   1700000000000,
	})

	assert.Contains(t, out, "anthropic")
	assert.Contains(t, out, "claude-sonnet-4")
	assert.Contains(t, out, "oauth_token")
	assert.Contains(t, out, "token expires")
	assert.NotContains(t, out, "at-secret")
	assert.NotContains(t, out, "sk-secret")
}

func TestConfigStatusEmptyConfig(t *testing.T) {
	t.Parallel()

	out := NewRenderer().ConfigStatus(domain.RuntimeConfig{})

	assert.Contains(t, out, "provider: none")
	assert.Contains(t, out, "model: none")
	assert.Contains(t, out, "auth: none")
}
