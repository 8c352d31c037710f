package secrets

import (
	"context"
	"fmt"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

// StaticSource serves an API key supplied through configuration or the
// environment. Intended for local development and tests.
type StaticSource struct {
	key string
}

// NewStaticSource creates a static secret source.
func NewStaticSource(key string) *StaticSource {
	return &StaticSource{key: key}
}

// APIKey returns the configured key.
func (s *StaticSource) APIKey(_ context.Context) (string, error) {
	if s.key == "" {
		return "", fmt.Errorf("%w: no API key configured", core.ErrSecretUnavailable)
	}
	return s.key, nil
}
