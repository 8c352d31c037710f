package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/adapters/secrets"
	"github.com/armadio/wardrobe-ai-gateway/internal/config"
	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

// SecretsFactory creates secret sources based on configuration
type SecretsFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSecretsFactory creates a new secrets factory
func NewSecretsFactory(cfg *config.Config, logger *zap.Logger) *SecretsFactory {
	return &SecretsFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSecretSource creates a secret source based on the configuration,
// wrapped with process-lifetime memoization.
func (f *SecretsFactory) CreateSecretSource() (core.SecretSource, error) {
	var source core.SecretSource

	switch sourceType := f.cfg.GetString("secrets.source"); sourceType {
	case "static":
		source = secrets.NewStaticSource(f.cfg.GetString("secrets.api_key"))
	case "gcp":
		gcpSource, err := secrets.NewGoogleSecretSource(
			context.Background(),
			f.cfg.GetString("secrets.gcp_secret_name"),
			f.logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCP secret source: %w", err)
		}
		source = gcpSource
	default:
		return nil, fmt.Errorf("unsupported secret source: %s", sourceType)
	}

	return secrets.NewCachedSource(source, f.logger), nil
}
