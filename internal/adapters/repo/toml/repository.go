// Package toml persists the gateway RuntimeConfig as a TOML file.
// Writes are atomic (temp file then rename) and serialized through a
// per-path lock so concurrent repositories over the same file do not
// interleave.
package toml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/zeroclaw/provider-gateway/internal/domain"
	"github.com/zeroclaw/provider-gateway/internal/ports"
)

const (
	configName      = "config"
	configType      = "toml"
	configPathKey   = "config.path"
	configFileMode  = 0o600
	configDirMode   = 0o700
	configDir       = ".zeroclaw"
	configFile      = "config.toml"
	tempFilePattern = ".config-*.toml.tmp"

	apiKeySecretRef = "zcgw/api_key"
	oauthSecretRef  = "zcgw/oauth"
)

type Repository struct {
	configPath string
	secrets    ports.SecretStore
	mu         *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.ConfigRepository = (*Repository)(nil)

// NewRepository resolves the config path from viper (default
// ~/.zeroclaw/config.toml). A nil secret store keeps credentials inline
// in the file; with a store, only refs land on disk.
func NewRepository(cfg *viper.Viper, secrets ports.SecretStore) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, configDir, configFile)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	cfg.SetDefault(configPathKey, defaultPath)

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	configPath := cfg.GetString(configPathKey)
	if configPath == "" {
		return nil, errors.New("config path is empty")
	}
	configPath, err = normalizeConfigPath(configPath)
	if err != nil {
		return nil, err
	}

	return &Repository{configPath: configPath, secrets: secrets, mu: lockForPath(configPath)}, nil
}

// NewRepositoryAt builds a repository over an explicit file path,
// bypassing viper resolution.
func NewRepositoryAt(path string, secrets ports.SecretStore) (*Repository, error) {
	configPath, err := normalizeConfigPath(path)
	if err != nil {
		return nil, err
	}

	return &Repository{configPath: configPath, secrets: secrets, mu: lockForPath(configPath)}, nil
}

func (r *Repository) Load(ctx context.Context) (domain.RuntimeConfig, error) {
	if err := ctx.Err(); err != nil {
		return domain.RuntimeConfig{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, found, err := r.readSchema()
	if err != nil {
		return domain.RuntimeConfig{}, err
	}
	if !found {
		return domain.RuntimeConfig{}, domain.ErrConfigNotFound
	}

	cfg := domain.RuntimeConfig{
		Provider:          file.Provider.Name,
		Model:             file.Provider.Model,
		APIURL:            file.Provider.APIURL,
		Temperature:       file.Provider.Temperature,
		AuthMode:          domain.AuthMode(file.Auth.Mode),
		APIKey:            file.Auth.APIKey,
		OAuthAccessToken:  file.Auth.AccessToken,
		OAuthRefreshToken: file.Auth.RefreshToken,
		OAuthExpiresAt:    file.Auth.ExpiresAt,
		AccountID:         file.Auth.AccountID,
		EnterpriseURL:     file.Auth.EnterpriseURL,
	}

	if r.secrets != nil && file.Auth.APIKeyRef != "" {
		key, err := r.secrets.Get(ctx, file.Auth.APIKeyRef)
		if err != nil {
			return domain.RuntimeConfig{}, fmt.Errorf("resolve api key ref: %w", err)
		}
		cfg.APIKey = key
	}

	if r.secrets != nil && file.Auth.OAuthRef != "" {
		raw, err := r.secrets.Get(ctx, file.Auth.OAuthRef)
		if err != nil {
			return domain.RuntimeConfig{}, fmt.Errorf("resolve oauth ref: %w", err)
		}
		var bundle tokenBundle
		if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
			return domain.RuntimeConfig{}, fmt.Errorf("decode oauth token bundle: %w", err)
		}
		cfg.OAuthAccessToken = bundle.AccessToken
		cfg.OAuthRefreshToken = bundle.RefreshToken
		cfg.OAuthExpiresAt = bundle.ExpiresAt
	}

	return cfg, nil
}

func (r *Repository) Save(ctx context.Context, cfg domain.RuntimeConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file := fileSchema{
		Version: currentSchemaVersion,
		Provider: providerSchema{
			Name:        cfg.Provider,
			Model:       cfg.Model,
			APIURL:      cfg.APIURL,
			Temperature: cfg.Temperature,
		},
		Auth: authSchema{
			Mode:          string(cfg.AuthMode),
			AccountID:     cfg.AccountID,
			EnterpriseURL: cfg.EnterpriseURL,
		},
	}

	if r.secrets != nil {
		if cfg.APIKey != "" {
			if err := r.secrets.Put(ctx, apiKeySecretRef, cfg.APIKey); err != nil {
				return fmt.Errorf("store api key: %w", err)
			}
			file.Auth.APIKeyRef = apiKeySecretRef
		}
		if cfg.OAuthAccessToken != "" {
			bundle, err := json.Marshal(tokenBundle{
				AccessToken:  cfg.OAuthAccessToken,
				RefreshToken: cfg.OAuthRefreshToken,
				ExpiresAt:    cfg.OAuthExpiresAt,
			})
			if err != nil {
				return fmt.Errorf("encode oauth token bundle: %w", err)
			}
			if err := r.secrets.Put(ctx, oauthSecretRef, string(bundle)); err != nil {
				return fmt.Errorf("store oauth tokens: %w", err)
			}
			file.Auth.OAuthRef = oauthSecretRef
		}
	} else {
		file.Auth.APIKey = cfg.APIKey
		file.Auth.AccessToken = cfg.OAuthAccessToken
		file.Auth.RefreshToken = cfg.OAuthRefreshToken
		file.Auth.ExpiresAt = cfg.OAuthExpiresAt
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, bool, error) {
	data, err := os.ReadFile(r.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, false, nil
		}
		return fileSchema{}, false, fmt.Errorf("read config file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, false, fmt.Errorf("decode config file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, false, err
	}
	file.applyDefaults()

	return file, true, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.configPath), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.configPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, r.configPath); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(r.configPath, configFileMode); err != nil {
		return fmt.Errorf("chmod config file: %w", err)
	}

	return nil
}

func normalizeConfigPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
