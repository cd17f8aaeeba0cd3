package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

type stubOpenAIAuthorizer struct {
	started   int
	completed []domain.DeviceAuthSession
}

func (s *stubOpenAIAuthorizer) Start(ctx context.Context) (domain.DeviceAuthSession, error) {
	s.started++
	return domain.DeviceAuthSession{ID: "oa-1", Provider: domain.ProviderOpenAI, UserCode: "ABCD-1234"}, nil
}

func (s *stubOpenAIAuthorizer) Complete(ctx context.Context, session domain.DeviceAuthSession) (domain.OAuthTokenResult, error) {
	s.completed = append(s.completed, session)
	return domain.OAuthTokenResult{AccessToken: "openai-token"}, nil
}

type stubCopilotAuthorizer struct {
	started    int
	enterprise string
	completed  []domain.DeviceAuthSession
}

func (s *stubCopilotAuthorizer) Start(ctx context.Context, enterpriseURL string) (domain.DeviceAuthSession, error) {
	s.started++
	s.enterprise = enterpriseURL
	return domain.DeviceAuthSession{ID: "cp-1", Provider: domain.ProviderCopilot, UserCode: "WXYZ-9876"}, nil
}

func (s *stubCopilotAuthorizer) Complete(ctx context.Context, session domain.DeviceAuthSession) (domain.OAuthTokenResult, error) {
	s.completed = append(s.completed, session)
	return domain.OAuthTokenResult{AccessToken: "copilot-token", RefreshToken: "copilot-token"}, nil
}

func TestStartDeviceFlowRouting(t *testing.T) {
	t.Parallel()

	openai := &stubOpenAIAuthorizer{}
	copilot := &stubCopilotAuthorizer{}
	svc := NewOAuthService(openai, copilot)

	session, err := svc.StartDeviceFlow(context.Background(), "openai", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderOpenAI, session.Provider)
	assert.Equal(t, 1, openai.started)
	assert.Equal(t, 0, copilot.started)

	session, err = svc.StartDeviceFlow(context.Background(), "github-copilot", "ghe.example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderCopilot, session.Provider)
	assert.Equal(t, 1, copilot.started)
	assert.Equal(t, "ghe.example.com", copilot.enterprise)
}

func TestStartDeviceFlowRejectsNonDeviceProviders(t *testing.T) {
	t.Parallel()

	svc := NewOAuthService(&stubOpenAIAuthorizer{}, &stubCopilotAuthorizer{})

	for _, name := range []string{"ollama", "anthropic", "gemini", "openrouter"} {
		_, err := svc.StartDeviceFlow(context.Background(), name, "")
		require.Error(t, err, "provider %s", name)
		assert.Contains(t, err.Error(), "device authorization")
	}

	_, err := svc.StartDeviceFlow(context.Background(), "nonsense", "")
	var unsupported *domain.UnsupportedProviderError
	assert.ErrorAs(t, err, &unsupported)
}

func TestCompleteDeviceFlowRoutesBySessionProvider(t *testing.T) {
	t.Parallel()

	openai := &stubOpenAIAuthorizer{}
	copilot := &stubCopilotAuthorizer{}
	svc := NewOAuthService(openai, copilot)

	result, err := svc.CompleteDeviceFlow(context.Background(), domain.DeviceAuthSession{
		ID:       "oa-1",
		Provider: domain.ProviderOpenAI,
	})
	require.NoError(t, err)
	assert.Equal(t, "openai-token", result.AccessToken)
	require.Len(t, openai.completed, 1)
	assert.Equal(t, "oa-1", openai.completed[0].ID)

	result, err = svc.CompleteDeviceFlow(context.Background(), domain.DeviceAuthSession{
		ID:       "cp-1",
		Provider: domain.ProviderCopilot,
	})
	require.NoError(t, err)
	assert.Equal(t, "copilot-token", result.AccessToken)
	assert.Len(t, copilot.completed, 1)
}

func TestCompleteDeviceFlowRejectsUnknownSession(t *testing.T) {
	t.Parallel()

	svc := NewOAuthService(&stubOpenAIAuthorizer{}, &stubCopilotAuthorizer{})
	_, err := svc.CompleteDeviceFlow(context.Background(), domain.DeviceAuthSession{Provider: domain.ProviderOllama})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device authorization")
}
