package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

const (
	defaultProvider    = "ollama"
	defaultModel       = "gpt-oss:20b"
	defaultTemperature = 0.2
)

func newChatCmd(app *app) *cobra.Command {
	var (
		providerName string
		model        string
		apiURL       string
		temperature  float64
	)

	cmd := &cobra.Command{
		Use:   "chat <message...>",
		Short: "Send a chat message to the configured provider",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigOrDefaults(cmd.Context(), app)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("provider") {
				cfg.Provider = providerName
			}
			if cmd.Flags().Changed("model") {
				cfg.Model = model
			}
			if cmd.Flags().Changed("api-url") {
				cfg.APIURL = apiURL
			}
			if cmd.Flags().Changed("temperature") {
				cfg.Temperature = temperature
			}

			reply, err := app.gateway.SendMessage(cmd.Context(), strings.Join(args, " "), cfg)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "Provider override (ollama, openai, openrouter, copilot, anthropic, gemini)")
	cmd.Flags().StringVar(&model, "model", "", "Model override")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "Base URL override")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature override")

	return cmd
}

// loadConfigOrDefaults falls back to a local Ollama setup when nothing
// was configured yet, so a fresh install can chat without a config file.
func loadConfigOrDefaults(ctx context.Context, app *app) (domain.RuntimeConfig, error) {
	cfg, err := app.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrConfigNotFound) {
			return domain.RuntimeConfig{
				Provider:    defaultProvider,
				Model:       defaultModel,
				Temperature: defaultTemperature,
			}, nil
		}
		return domain.RuntimeConfig{}, err
	}

	if cfg.Provider == "" {
		cfg.Provider = defaultProvider
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	return cfg, nil
}
