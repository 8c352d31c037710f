package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/config"
	"github.com/armadio/wardrobe-ai-gateway/internal/core"
	"github.com/armadio/wardrobe-ai-gateway/internal/factory"
	"github.com/armadio/wardrobe-ai-gateway/internal/logging"
	"github.com/armadio/wardrobe-ai-gateway/internal/ports"
	"github.com/armadio/wardrobe-ai-gateway/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewSecretsFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewServerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.ModelTextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register secret source
	if err := container.Provide(func(f *factory.SecretsFactory) (core.SecretSource, error) {
		return f.CreateSecretSource()
	}); err != nil {
		return nil, err
	}

	// Register vision client
	if err := container.Provide(func(f *factory.LLMFactory) (core.VisionClient, error) {
		return f.CreateVisionClient()
	}); err != nil {
		return nil, err
	}

	// Register analysis cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.AnalysisCache, error) {
		return f.CreateAnalysisCache()
	}); err != nil {
		return nil, err
	}

	// Register cache TTL and enabled flag
	if err := container.Provide(func(f *factory.CacheFactory) (time.Duration, error) {
		return f.GetCacheTTL()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) bool {
		return f.IsCacheEnabled()
	}); err != nil {
		return nil, err
	}

	// Register image size limit
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) int {
		maxImageBytes := cfg.GetInt("analysis.max_image_bytes")
		logger.Info("Loaded image size limit", zap.Int("max_image_bytes", maxImageBytes))
		return maxImageBytes
	}); err != nil {
		return nil, err
	}

	// Register wardrobe service
	if err := container.Provide(core.NewWardrobeService); err != nil {
		return nil, err
	}

	// Register API server
	if err := container.Provide(func(f *factory.ServerFactory) (ports.APIServer, error) {
		return f.CreateAPIServer()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
