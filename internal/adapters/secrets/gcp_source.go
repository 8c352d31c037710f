package secrets

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

// GoogleSecretSource retrieves the API key from Google Secret Manager.
type GoogleSecretSource struct {
	client *secretmanager.Client
	// name is a full secret version resource name, e.g.
	// projects/my-project/secrets/gemini-api-key/versions/latest
	name   string
	logger *zap.Logger
}

// NewGoogleSecretSource creates a Secret Manager backed source for the named
// secret version.
func NewGoogleSecretSource(ctx context.Context, name string, logger *zap.Logger) (*GoogleSecretSource, error) {
	if name == "" {
		return nil, fmt.Errorf("secret version name is required")
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}

	return &GoogleSecretSource{
		client: client,
		name:   name,
		logger: logger,
	}, nil
}

// APIKey accesses the secret version and returns its payload.
func (s *GoogleSecretSource) APIKey(ctx context.Context) (string, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: s.name,
	})
	if err != nil {
		s.logger.Error("Failed to access secret version",
			zap.Error(err),
			zap.String("secret", s.name))
		return "", fmt.Errorf("%w: %v", core.ErrSecretUnavailable, err)
	}

	key := strings.TrimSpace(string(resp.GetPayload().GetData()))
	if key == "" {
		return "", fmt.Errorf("%w: secret payload is empty", core.ErrSecretUnavailable)
	}

	return key, nil
}

// Close releases the underlying Secret Manager client.
func (s *GoogleSecretSource) Close() error {
	return s.client.Close()
}
