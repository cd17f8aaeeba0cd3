package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change the gateway configuration",
	}

	cmd.AddCommand(newConfigShowCmd(app), newConfigSetCmd(app))

	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.repo.Load(cmd.Context())
			if err != nil && !errors.Is(err, domain.ErrConfigNotFound) {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), app.renderer.ConfigStatus(cfg))
			return err
		},
	}
}

func newConfigSetCmd(app *app) *cobra.Command {
	var (
		providerName  string
		model         string
		apiURL        string
		apiKey        string
		authMode      string
		enterpriseURL string
		temperature   float64
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update configuration fields",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := app.repo.Load(ctx)
			if err != nil && !errors.Is(err, domain.ErrConfigNotFound) {
				return err
			}

			if cmd.Flags().Changed("provider") {
				if _, err := domain.ParseProviderKind(providerName); err != nil {
					return err
				}
				cfg.Provider = providerName
			}
			if cmd.Flags().Changed("model") {
				cfg.Model = model
			}
			if cmd.Flags().Changed("api-url") {
				cfg.APIURL = apiURL
			}
			if cmd.Flags().Changed("api-key") {
				cfg.APIKey = apiKey
				if cfg.AuthMode == "" {
					cfg.AuthMode = domain.AuthModeAPIKey
				}
			}
			if cmd.Flags().Changed("auth-mode") {
				mode := domain.AuthMode(authMode)
				if mode != domain.AuthModeAPIKey && mode != domain.AuthModeOAuthToken {
					return fmt.Errorf("invalid auth mode %q (api_key or oauth_token)", authMode)
				}
				cfg.AuthMode = mode
			}
			if cmd.Flags().Changed("enterprise-url") {
				cfg.EnterpriseURL = domain.NormalizeEnterpriseDomain(enterpriseURL)
			}
			if cmd.Flags().Changed("temperature") {
				cfg.Temperature = temperature
			}

			if err := app.repo.Save(ctx, cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), app.renderer.ConfigStatus(cfg))
			return err
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "Provider name")
	cmd.Flags().StringVar(&model, "model", "", "Model identifier")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "Base URL override")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key")
	cmd.Flags().StringVar(&authMode, "auth-mode", "", "Auth mode (api_key or oauth_token)")
	cmd.Flags().StringVar(&enterpriseURL, "enterprise-url", "", "GitHub Enterprise host for Copilot")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature")

	return cmd
}
