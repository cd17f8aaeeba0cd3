package ports

import "context"

// SecretStore keeps credential material (API keys, OAuth token bundles)
// out of the plain-text config file. Keys are opaque refs chosen by the
// config repository.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
