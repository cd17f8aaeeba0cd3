package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMessage   = errors.New("message must not be empty")
	ErrConfigNotFound = errors.New("runtime config not found")
)

// UnsupportedProviderError reports a provider string that matches no
// adapter. It is fatal; the request is never retried elsewhere.
type UnsupportedProviderError struct {
	Provider string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q", e.Provider)
}

// MissingCredentialError reports an absent API key or OAuth token for a
// provider/auth-mode combination that requires one.
type MissingCredentialError struct {
	Provider ProviderKind
	Hint     string
}

func (e *MissingCredentialError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("missing credential for provider %q", e.Provider)
	}
	return fmt.Sprintf("missing credential for provider %q: %s", e.Provider, e.Hint)
}

// UpstreamError carries a non-2xx response from a chat or OAuth endpoint.
// The raw body is surfaced verbatim; this is a developer-facing gateway.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}
