package application

import (
	"context"
	"fmt"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

// OpenAIDeviceAuthorizer and CopilotDeviceAuthorizer are the two
// device-flow engines; their Start signatures differ because only the
// Copilot flow takes an enterprise override.
type OpenAIDeviceAuthorizer interface {
	Start(ctx context.Context) (domain.DeviceAuthSession, error)
	Complete(ctx context.Context, session domain.DeviceAuthSession) (domain.OAuthTokenResult, error)
}

type CopilotDeviceAuthorizer interface {
	Start(ctx context.Context, enterpriseURL string) (domain.DeviceAuthSession, error)
	Complete(ctx context.Context, session domain.DeviceAuthSession) (domain.OAuthTokenResult, error)
}

// OAuthService routes device-flow operations to the engine for the
// requested provider. Sessions pass through untouched; each one is
// consumed exactly once by its matching Complete call.
type OAuthService struct {
	openai  OpenAIDeviceAuthorizer
	copilot CopilotDeviceAuthorizer
}

func NewOAuthService(openai OpenAIDeviceAuthorizer, copilot CopilotDeviceAuthorizer) *OAuthService {
	return &OAuthService{openai: openai, copilot: copilot}
}

func (s *OAuthService) StartDeviceFlow(ctx context.Context, providerName string, enterpriseURL string) (domain.DeviceAuthSession, error) {
	kind, err := domain.ParseProviderKind(providerName)
	if err != nil {
		return domain.DeviceAuthSession{}, err
	}

	switch kind {
	case domain.ProviderOpenAI:
		return s.openai.Start(ctx)
	case domain.ProviderCopilot:
		return s.copilot.Start(ctx, enterpriseURL)
	default:
		return domain.DeviceAuthSession{}, fmt.Errorf("provider %q does not support device authorization", kind)
	}
}

func (s *OAuthService) CompleteDeviceFlow(ctx context.Context, session domain.DeviceAuthSession) (domain.OAuthTokenResult, error) {
	switch session.Provider {
	case domain.ProviderOpenAI:
		return s.openai.Complete(ctx, session)
	case domain.ProviderCopilot:
		return s.copilot.Complete(ctx, session)
	default:
		return domain.OAuthTokenResult{}, fmt.Errorf("provider %q does not support device authorization", session.Provider)
	}
}
