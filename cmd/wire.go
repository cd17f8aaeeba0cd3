package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	authadapter "github.com/zeroclaw/provider-gateway/internal/adapters/auth"
	"github.com/zeroclaw/provider-gateway/internal/adapters/provider"
	loginrender "github.com/zeroclaw/provider-gateway/internal/adapters/render/login"
	tomlrepo "github.com/zeroclaw/provider-gateway/internal/adapters/repo/toml"
	chainstore "github.com/zeroclaw/provider-gateway/internal/adapters/secrets/chain"
	"github.com/zeroclaw/provider-gateway/internal/application"
	"github.com/zeroclaw/provider-gateway/internal/ports"
)

type app struct {
	gateway  *application.Gateway
	oauth    *application.OAuthService
	repo     ports.ConfigRepository
	secrets  ports.SecretStore
	renderer *loginrender.Renderer
	browser  authadapter.BrowserFlow
	clock    ports.Clock
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(filepath.Join(homeDir, ".zeroclaw", "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	repo, err := tomlrepo.NewRepository(viper.New(), secretStore)
	if err != nil {
		return nil, fmt.Errorf("wire config repository: %w", err)
	}

	clock := ports.SystemClock{}
	codexTokens := authadapter.CodexTokenSource{Clock: clock}
	registry := provider.NewRegistry(provider.NewTransport(), codexTokens)

	oauth := application.NewOAuthService(
		&authadapter.OpenAIDeviceFlow{},
		&authadapter.CopilotDeviceFlow{},
	)

	return &app{
		gateway:  application.NewGateway(registry),
		oauth:    oauth,
		repo:     repo,
		secrets:  secretStore,
		renderer: loginrender.NewRenderer(),
		browser: authadapter.BrowserFlow{
			Issuer:     envOrDefault("ZCGW_AUTH_ISSUER", ""),
			ListenAddr: envOrDefault("ZCGW_AUTH_LISTEN", "127.0.0.1:1455"),
		},
		clock: clock,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
