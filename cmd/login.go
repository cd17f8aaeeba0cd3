package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

func newLoginCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Run provider login flows",
	}

	cmd.AddCommand(newLoginDeviceCmd(app), newLoginBrowserCmd(app))

	return cmd
}

func newLoginDeviceCmd(app *app) *cobra.Command {
	var (
		providerName  string
		enterpriseURL string
	)

	cmd := &cobra.Command{
		Use:   "device",
		Short: "Sign in with a device code (openai, copilot)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			session, err := app.oauth.StartDeviceFlow(ctx, providerName, enterpriseURL)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), app.renderer.DevicePrompt(session))

			result, err := app.oauth.CompleteDeviceFlow(ctx, session)
			if err != nil {
				return err
			}

			if err := saveLoginResult(ctx, app, session.Provider, result); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), app.renderer.LoginSuccess(session.Provider, result))
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "openai", "Provider to sign in to (openai or copilot)")
	cmd.Flags().StringVar(&enterpriseURL, "enterprise-url", "", "GitHub Enterprise host for Copilot logins")

	return cmd
}

func newLoginBrowserCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browser",
		Short: "Sign in to OpenAI through the browser",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			result, err := app.browser.Login(ctx, func(authURL string) error {
				_, printErr := fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to authenticate:\n%s\n", authURL)
				return printErr
			})
			if err != nil {
				return err
			}

			if err := saveLoginResult(ctx, app, domain.ProviderOpenAI, result); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), app.renderer.LoginSuccess(domain.ProviderOpenAI, result))
			return nil
		},
	}

	return cmd
}

// saveLoginResult merges the token result into the stored config. A
// missing config file is not an error; logins bootstrap it.
func saveLoginResult(ctx context.Context, app *app, provider domain.ProviderKind, result domain.OAuthTokenResult) error {
	cfg, err := app.repo.Load(ctx)
	if err != nil && !errors.Is(err, domain.ErrConfigNotFound) {
		return err
	}

	cfg.Provider = string(provider)
	cfg = cfg.WithToken(result)

	if err := app.repo.Save(ctx, cfg); err != nil {
		return fmt.Errorf("save login tokens: %w", err)
	}

	return nil
}
