package factory

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/adapters/httpapi"
	"github.com/armadio/wardrobe-ai-gateway/internal/config"
	"github.com/armadio/wardrobe-ai-gateway/internal/core"
	"github.com/armadio/wardrobe-ai-gateway/internal/ports"
	"github.com/armadio/wardrobe-ai-gateway/internal/ratelimit"
	"github.com/armadio/wardrobe-ai-gateway/internal/whitelist"
)

// ServerFactory creates the inbound API server with its admission control
type ServerFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.WardrobeService
}

// NewServerFactory creates a new server factory
func NewServerFactory(cfg *config.Config, logger *zap.Logger, service *core.WardrobeService) *ServerFactory {
	return &ServerFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateAPIServer creates the API server based on the configuration
func (f *ServerFactory) CreateAPIServer() (ports.APIServer, error) {
	limiter, err := f.createRateLimiter()
	if err != nil {
		return nil, err
	}

	serverCfg := f.cfg.GetServer()
	trusted := whitelist.NewChecker(serverCfg.TrustedAddresses, f.logger)

	return httpapi.NewServer(f.service, limiter, trusted, f.logger, serverCfg.ListenAddress), nil
}

func (f *ServerFactory) createRateLimiter() (core.RateLimiter, error) {
	window, err := f.cfg.GetDuration("ratelimit.window")
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit window: %w", err)
	}
	limit := f.cfg.GetInt("ratelimit.limit")

	var store ratelimit.Store
	switch storeType := f.cfg.GetString("ratelimit.store"); storeType {
	case "memory":
		store = ratelimit.NewMemoryStore()
	case "redis":
		redisCfg := f.cfg.GetRedis()
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		store = ratelimit.NewRedisStore(client, f.cfg.GetString("cache.key_prefix"))
	default:
		return nil, fmt.Errorf("unsupported rate limit store: %s", storeType)
	}

	return ratelimit.New(store, window, limit, f.logger), nil
}
