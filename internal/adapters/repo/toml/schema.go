package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int            `toml:"version"`
	Provider providerSchema `toml:"provider"`
	Auth     authSchema     `toml:"auth"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported config schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type providerSchema struct {
	Name        string  `toml:"name"`
	Model       string  `toml:"model"`
	APIURL      string  `toml:"api_url,omitempty"`
	Temperature float64 `toml:"temperature,omitempty"`
}

// authSchema stores credential material as secret-store refs when a
// store is wired, inline otherwise. Inline and ref fields are mutually
// exclusive on write; reads accept either.
type authSchema struct {
	Mode          string `toml:"mode,omitempty"`
	APIKey        string `toml:"api_key,omitempty"`
	APIKeyRef     string `toml:"api_key_ref,omitempty"`
	OAuthRef      string `toml:"oauth_ref,omitempty"`
	AccessToken   string `toml:"access_token,omitempty"`
	RefreshToken  string `toml:"refresh_token,omitempty"`
	ExpiresAt     int64  `toml:"expires_at,omitempty"`
	AccountID     string `toml:"account_id,omitempty"`
	EnterpriseURL string `toml:"enterprise_url,omitempty"`
}

// tokenBundle is the JSON value stored under the oauth secret ref.
type tokenBundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}
