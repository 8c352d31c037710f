package core

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/utils"
)

// RawExcerptLimit bounds the model-output excerpt attached to parse errors.
const RawExcerptLimit = 200

// cacheWriteTimeout bounds the background cache population task.
const cacheWriteTimeout = 10 * time.Second

// WardrobeService orchestrates garment analysis, shopping recommendations
// and outfit suggestions against the vision model and the response cache.
type WardrobeService struct {
	vision        VisionClient
	cache         AnalysisCache
	text          *utils.ModelTextProcessor
	logger        *zap.Logger
	cacheEnabled  bool
	cacheTTL      time.Duration
	maxImageBytes int
}

// NewWardrobeService creates a new wardrobe service.
func NewWardrobeService(
	vision VisionClient,
	cache AnalysisCache,
	text *utils.ModelTextProcessor,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	maxImageBytes int,
) *WardrobeService {
	return &WardrobeService{
		vision:        vision,
		cache:         cache,
		text:          text,
		logger:        logger,
		cacheEnabled:  cacheEnabled,
		cacheTTL:      cacheTTL,
		maxImageBytes: maxImageBytes,
	}
}

// Analyze extracts garment metadata from an image. The response cache is
// consulted first and populated in the background on a miss; any cache
// failure is logged and treated as a miss, never surfaced to the caller.
func (s *WardrobeService) Analyze(ctx context.Context, image ImagePayload) (*AnalysisOutcome, error) {
	if strings.TrimSpace(image.Base64) == "" {
		return nil, ErrEmptyImage
	}

	key := ContentKey(image.Base64)
	if s.cacheEnabled {
		if analysis, ok, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Error("Cache lookup failed, proceeding without cache",
				zap.Error(err),
				zap.String("key", key))
		} else if ok {
			s.logger.Debug("Cache hit for image", zap.String("key", key))
			return &AnalysisOutcome{Analysis: analysis, Cached: true}, nil
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(image.Base64)
	if err != nil {
		return nil, ErrInvalidImage
	}
	if len(decoded) > s.maxImageBytes {
		return nil, &ImageTooLargeError{Size: len(decoded), Limit: s.maxImageBytes}
	}

	raw, err := s.vision.AnalyzeImage(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("vision model call failed: %w", err)
	}

	analysis, err := s.parseAnalysis(raw)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled {
		// Fire and forget: the response must not wait on the cache write.
		go s.storeAnalysis(key, analysis)
	}

	return &AnalysisOutcome{Analysis: analysis, ImageSize: len(decoded)}, nil
}

// Recommend looks up shop listings for a described item. Malformed model
// output yields an empty list rather than an error.
func (s *WardrobeService) Recommend(ctx context.Context, description string) ([]Recommendation, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}

	raw, err := s.vision.FindShops(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("vision model call failed: %w", err)
	}

	return s.parseRecommendations(raw), nil
}

// SuggestOutfit composes an outfit from the given wardrobe items.
func (s *WardrobeService) SuggestOutfit(ctx context.Context, req OutfitRequest) (string, error) {
	if len(req.Items) == 0 {
		return "", ErrNoItems
	}

	raw, err := s.vision.SuggestOutfit(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision model call failed: %w", err)
	}

	return strings.TrimSpace(raw), nil
}

// parseAnalysis normalizes the model's text output and backfills any of the
// five required fields the model omitted.
func (s *WardrobeService) parseAnalysis(raw string) (*GarmentAnalysis, error) {
	cleaned := s.text.StripCodeFences(raw)

	var analysis GarmentAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		excerpt := s.rawExcerpt(raw)
		s.logger.Error("Model returned unparseable analysis",
			zap.Error(err),
			zap.String("raw", excerpt))
		return nil, &MalformedOutputError{Raw: excerpt}
	}

	backfill(&analysis.Category)
	backfill(&analysis.Color)
	backfill(&analysis.Season)
	backfill(&analysis.Brand)
	backfill(&analysis.Material)

	return &analysis, nil
}

func backfill(field *string) {
	if strings.TrimSpace(*field) == "" {
		*field = FieldPlaceholder
	}
}

// rawExcerpt bounds raw model text for diagnostics. The model occasionally
// emits invalid byte sequences; the excerpt must stay valid UTF-8 because it
// travels in a JSON error envelope.
func (s *WardrobeService) rawExcerpt(raw string) string {
	return s.text.Excerpt(s.text.SanitizeUTF8(raw), RawExcerptLimit)
}

// parseRecommendations tolerantly extracts shop listings from model text.
// It accepts a JSON array or a single object, drops entries without a title
// or without an http(s) url, and absorbs parse failures into an empty list.
func (s *WardrobeService) parseRecommendations(raw string) []Recommendation {
	cleaned := s.text.StripCodeFences(raw)

	var items []Recommendation
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		var single Recommendation
		if err := json.Unmarshal([]byte(cleaned), &single); err != nil {
			s.logger.Warn("Could not parse recommendations, returning none",
				zap.String("raw", s.rawExcerpt(raw)))
			return []Recommendation{}
		}
		items = []Recommendation{single}
	}

	valid := make([]Recommendation, 0, len(items))
	for _, item := range items {
		if item.Title == "" || !strings.HasPrefix(item.URL, "http") {
			continue
		}
		valid = append(valid, item)
	}
	return valid
}

func (s *WardrobeService) storeAnalysis(key string, analysis *GarmentAnalysis) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()

	if err := s.cache.Set(ctx, key, analysis, s.cacheTTL); err != nil {
		s.logger.Error("Failed to store analysis in cache",
			zap.Error(err),
			zap.String("key", key))
	}
}
