// Package login renders the terminal views for the device-authorization
// flow and the current gateway configuration.
package login

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

type Renderer struct {
	styles styles
}

func NewRenderer() *Renderer {
	return &Renderer{styles: newStyles()}
}

// DevicePrompt renders the verification URL and user code the person
// has to enter in their browser.
func (r *Renderer) DevicePrompt(session domain.DeviceAuthSession) string {
	s := r.styles

	lines := []string{
		s.title.Render(fmt.Sprintf("Sign in to %s", session.Provider)),
		s.section.Render(lipgloss.JoinVertical(
			lipgloss.Left,
			s.label.Render("Open this URL in your browser:"),
			s.url.Render(session.VerificationURL),
		)),
		s.section.Render(lipgloss.JoinVertical(
			lipgloss.Left,
			s.label.Render("Then enter this code:"),
			s.codeWrap.Render(s.code.Render(session.UserCode)),
		)),
		s.section.Render(s.header.Render("Waiting for authorization... (Ctrl+C to cancel)")),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// LoginSuccess renders the confirmation after tokens were stored.
func (r *Renderer) LoginSuccess(provider domain.ProviderKind, result domain.OAuthTokenResult) string {
	s := r.styles

	lines := []string{
		s.success.Render(fmt.Sprintf("Signed in to %s.", provider)),
	}

	if result.AccountID != "" {
		lines = append(lines, s.detail.Render(fmt.Sprintf("account: %s", result.AccountID)))
	}
	if result.EnterpriseURL != "" {
		lines = append(lines, s.detail.Render(fmt.Sprintf("enterprise host: %s", result.EnterpriseURL)))
	}
	if result.ExpiresAt > 0 {
		expires := time.UnixMilli(result.ExpiresAt).UTC()
		lines = append(lines, s.header.Render(fmt.Sprintf("token expires %s", expires.Format(time.RFC3339))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// ConfigStatus renders the active configuration without leaking
// credential material.
func (r *Renderer) ConfigStatus(cfg domain.RuntimeConfig) string {
	s := r.styles

	lines := []string{
		s.title.Render("Gateway configuration"),
		s.detail.Render(fmt.Sprintf("provider: %s", orNone(cfg.Provider))),
		s.detail.Render(fmt.Sprintf("model: %s", orNone(cfg.Model))),
	}

	if cfg.APIURL != "" {
		lines = append(lines, s.detail.Render(fmt.Sprintf("api url: %s", cfg.APIURL)))
	}

	lines = append(lines, s.detail.Render(fmt.Sprintf("auth: %s", authLabel(cfg))))

	if cfg.AccountID != "" {
		lines = append(lines, s.detail.Render(fmt.Sprintf("account: %s", cfg.AccountID)))
	}
	if cfg.EnterpriseURL != "" {
		lines = append(lines, s.detail.Render(fmt.Sprintf("enterprise host: %s", cfg.EnterpriseURL)))
	}
	if cfg.AuthMode == domain.AuthModeOAuthToken && cfg.OAuthExpiresAt > 0 {
		expires := time.UnixMilli(cfg.OAuthExpiresAt).UTC()
		lines = append(lines, s.header.Render(fmt.Sprintf("token expires %s", expires.Format(time.RFC3339))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func authLabel(cfg domain.RuntimeConfig) string {
	switch cfg.AuthMode {
	case domain.AuthModeOAuthToken:
		if cfg.OAuthAccessToken == "" {
			return "oauth_token (no token stored)"
		}
		return "oauth_token"
	case domain.AuthModeAPIKey:
		if cfg.APIKey == "" {
			return "api_key (no key stored)"
		}
		return "api_key"
	case "":
		return "none"
	default:
		return string(cfg.AuthMode)
	}
}

func orNone(value string) string {
	if value == "" {
		return "none"
	}

	return value
}
