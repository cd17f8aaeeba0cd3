package ports

import (
	"context"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

// ConfigRepository is the external configuration store the gateway reads
// its RuntimeConfig from and writes merged OAuth results back to.
type ConfigRepository interface {
	Load(ctx context.Context) (domain.RuntimeConfig, error)
	Save(ctx context.Context, cfg domain.RuntimeConfig) error
}
