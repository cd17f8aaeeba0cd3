// Package application exposes the gateway operations the UI layer calls:
// sendMessage plus the OAuth session operations. Services here hold no
// per-call state; every request is a pure function of its RuntimeConfig.
package application

import (
	"context"
	"strings"

	"github.com/zeroclaw/provider-gateway/internal/adapters/provider"
	"github.com/zeroclaw/provider-gateway/internal/domain"
)

// Gateway routes a chat request to the adapter matching the config's
// provider. It retains nothing between calls; concurrent calls are
// independent by construction.
type Gateway struct {
	registry *provider.Registry
}

func NewGateway(registry *provider.Registry) *Gateway {
	if registry == nil {
		registry = provider.NewRegistry(nil, nil)
	}
	return &Gateway{registry: registry}
}

// SendMessage sends one fire-and-forget chat turn. There is no fallback
// chain: if the selected adapter fails, the call fails.
func (g *Gateway) SendMessage(ctx context.Context, message string, cfg domain.RuntimeConfig) (string, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", domain.ErrEmptyMessage
	}

	kind, err := domain.ParseProviderKind(cfg.Provider)
	if err != nil {
		return "", err
	}

	adapter := g.registry.For(kind, cfg)
	if adapter == nil {
		return "", &domain.UnsupportedProviderError{Provider: cfg.Provider}
	}

	return adapter.Chat(ctx, trimmed, cfg)
}
