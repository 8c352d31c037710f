package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.admit(w, r) {
		return
	}

	logger := s.logger.With(zap.String("request_id", uuid.NewString()))

	var req analyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, analyzeBodyLimit)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.ImageBase64 == "" {
		writeError(w, http.StatusBadRequest, "Missing image data")
		return
	}
	if req.MimeType == "" {
		req.MimeType = "image/jpeg"
	}

	outcome, err := s.service.Analyze(r.Context(), core.ImagePayload{
		Base64:   req.ImageBase64,
		MimeType: req.MimeType,
	})
	if err != nil {
		s.writeAnalyzeError(w, logger, err)
		return
	}

	meta := analyzeMetadata{
		ProcessingTime: time.Since(start).Milliseconds(),
		Cached:         outcome.Cached,
	}
	if outcome.ImageSize > 0 {
		meta.ImageSize = fmt.Sprintf("%.1f KB", float64(outcome.ImageSize)/1024)
	}

	logger.Info("Image analyzed",
		zap.Bool("cached", outcome.Cached),
		zap.Int64("processing_time_ms", meta.ProcessingTime))

	writeJSON(w, http.StatusOK, analyzeResponse{
		Success:  true,
		Data:     outcome.Analysis,
		Metadata: meta,
	})
}

// writeDecodeError distinguishes a body over the MaxBytesReader cap from
// plain malformed JSON, so oversized uploads get the 413 they deserve rather
// than a misleading 400.
func writeDecodeError(w http.ResponseWriter, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf(
			"Request body too large. Maximum allowed size is %.0f MB.",
			float64(maxBytes.Limit)/(1024*1024)))
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid JSON body")
}

func (s *Server) writeAnalyzeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var tooLarge *core.ImageTooLargeError
	var malformed *core.MalformedOutputError

	switch {
	case errors.Is(err, core.ErrEmptyImage):
		writeError(w, http.StatusBadRequest, "Missing image data")
	case errors.Is(err, core.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, "Image data is not valid base64")
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf(
			"Image too large: %.1f MB. Maximum allowed size is %.0f MB.",
			float64(tooLarge.Size)/(1024*1024),
			float64(tooLarge.Limit)/(1024*1024)))
	case errors.As(err, &malformed):
		logger.Error("Analysis failed: unparseable model output")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Success:     false,
			Error:       "Failed to parse the AI response",
			RawResponse: malformed.Raw,
		})
	default:
		logger.Error("Analysis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Image analysis failed. Please try again.")
	}
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.admit(w, r) {
		return
	}

	logger := s.logger.With(zap.String("request_id", uuid.NewString()))

	var req recommendRequest
	r.Body = http.MaxBytesReader(w, r.Body, textBodyLimit)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.ItemDescription == "" {
		writeError(w, http.StatusBadRequest, "Missing item description")
		return
	}

	recommendations, err := s.service.Recommend(r.Context(), req.ItemDescription)
	if err != nil {
		if errors.Is(err, core.ErrEmptyDescription) {
			writeError(w, http.StatusBadRequest, "Missing item description")
			return
		}
		logger.Error("Recommendation lookup failed", zap.Error(err))
		empty := []core.Recommendation{}
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Success:         false,
			Error:           "Recommendation lookup failed. Please try again.",
			Recommendations: &empty,
		})
		return
	}

	logger.Info("Recommendations returned", zap.Int("count", len(recommendations)))

	writeJSON(w, http.StatusOK, recommendResponse{
		Success:         true,
		Recommendations: recommendations,
		Metadata: recommendMetadata{
			ProcessingTime: time.Since(start).Milliseconds(),
			Count:          len(recommendations),
		},
	})
}

func (s *Server) handleOutfit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.admit(w, r) {
		return
	}

	logger := s.logger.With(zap.String("request_id", uuid.NewString()))

	var req outfitRequest
	r.Body = http.MaxBytesReader(w, r.Body, textBodyLimit)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "No wardrobe items provided")
		return
	}

	suggestion, err := s.service.SuggestOutfit(r.Context(), core.OutfitRequest{
		Items:    req.Items,
		Occasion: req.Occasion,
		Weather:  req.Weather,
	})
	if err != nil {
		if errors.Is(err, core.ErrNoItems) {
			writeError(w, http.StatusBadRequest, "No wardrobe items provided")
			return
		}
		logger.Error("Outfit suggestion failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Outfit suggestion failed. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, outfitResponse{
		Success:    true,
		Suggestion: suggestion,
		Metadata: outfitMetadata{
			ProcessingTime: time.Since(start).Milliseconds(),
		},
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
