package core

import (
	"time"
)

// FieldPlaceholder is substituted for any analysis field the model left out.
const FieldPlaceholder = "not specified"

// ImagePayload is a garment photo as submitted by a client.
type ImagePayload struct {
	Base64   string
	MimeType string
}

// GarmentAnalysis is the metadata extracted from a garment photo.
// Every field is guaranteed non-empty after backfill.
type GarmentAnalysis struct {
	Category string `json:"category"`
	Color    string `json:"color"`
	Season   string `json:"season"`
	Brand    string `json:"brand"`
	Material string `json:"material"`
}

// AnalysisOutcome ties an analysis to its provenance.
type AnalysisOutcome struct {
	Analysis *GarmentAnalysis
	// Cached reports whether the analysis came from the response cache.
	Cached bool
	// ImageSize is the decoded image size in bytes. Zero on cache hits,
	// where the image is never decoded.
	ImageSize int
}

// Recommendation points at a shop listing for a described item.
type Recommendation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// OutfitRequest describes the wardrobe items an outfit should be built from.
type OutfitRequest struct {
	Items    []string
	Occasion string
	Weather  string
}

// RateLimitDecision is the outcome of one admission check.
type RateLimitDecision struct {
	Limited    bool
	RetryAfter time.Duration
}
