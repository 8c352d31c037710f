package core

import (
	"context"
	"time"
)

// VisionClient defines the interface for invoking the generative vision model.
// All methods return the model's raw text output; parsing is the caller's job.
type VisionClient interface {
	// AnalyzeImage submits a garment photo with the analysis prompt.
	AnalyzeImage(ctx context.Context, image ImagePayload) (string, error)

	// FindShops looks up shop listings for a described item, with search
	// augmentation when the provider supports it.
	FindShops(ctx context.Context, description string) (string, error)

	// SuggestOutfit asks the model to compose an outfit from wardrobe items.
	SuggestOutfit(ctx context.Context, req OutfitRequest) (string, error)
}

// AnalysisCache defines the interface for the content-addressed response cache.
type AnalysisCache interface {
	// Get retrieves a cached analysis. The second return reports presence.
	Get(ctx context.Context, key string) (*GarmentAnalysis, bool, error)

	// Set stores an analysis under the content key with the given TTL.
	Set(ctx context.Context, key string, analysis *GarmentAnalysis, ttl time.Duration) error
}

// SecretSource retrieves the vision provider's API key.
type SecretSource interface {
	// APIKey returns the key, or an error wrapping ErrSecretUnavailable.
	APIKey(ctx context.Context) (string, error)
}

// RateLimiter decides whether a client address may proceed.
type RateLimiter interface {
	Check(ctx context.Context, clientAddr string) (RateLimitDecision, error)
}
