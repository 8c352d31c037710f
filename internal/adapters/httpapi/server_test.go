package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
	"github.com/armadio/wardrobe-ai-gateway/internal/utils"
	"github.com/armadio/wardrobe-ai-gateway/internal/whitelist"
)

type visionStub struct {
	analyzeFn func(ctx context.Context, image core.ImagePayload) (string, error)
	shopsFn   func(ctx context.Context, description string) (string, error)
	outfitFn  func(ctx context.Context, req core.OutfitRequest) (string, error)
}

func (s *visionStub) AnalyzeImage(ctx context.Context, image core.ImagePayload) (string, error) {
	if s.analyzeFn != nil {
		return s.analyzeFn(ctx, image)
	}
	return `{"category":"jacket","color":"navy","season":"winter","brand":"Acme","material":"wool"}`, nil
}

func (s *visionStub) FindShops(ctx context.Context, description string) (string, error) {
	if s.shopsFn != nil {
		return s.shopsFn(ctx, description)
	}
	return `[{"title":"Navy jacket","url":"https://shop.example/a"}]`, nil
}

func (s *visionStub) SuggestOutfit(ctx context.Context, req core.OutfitRequest) (string, error) {
	if s.outfitFn != nil {
		return s.outfitFn(ctx, req)
	}
	return "wear the jacket", nil
}

type limiterStub struct {
	checkFn func(ctx context.Context, clientAddr string) (core.RateLimitDecision, error)
}

func (s *limiterStub) Check(ctx context.Context, clientAddr string) (core.RateLimitDecision, error) {
	if s.checkFn != nil {
		return s.checkFn(ctx, clientAddr)
	}
	return core.RateLimitDecision{}, nil
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (*core.GarmentAnalysis, bool, error) {
	return nil, false, nil
}

func (nopCache) Set(context.Context, string, *core.GarmentAnalysis, time.Duration) error {
	return nil
}

func newTestServer(vision core.VisionClient, limiter core.RateLimiter, trustedAddrs []string) *Server {
	logger := zap.NewNop()
	service := core.NewWardrobeService(vision, nopCache{}, utils.NewModelTextProcessor(logger),
		logger, false, 0, 10*1024*1024)
	return NewServer(service, limiter, whitelist.NewChecker(trustedAddrs, logger), logger, "127.0.0.1:0")
}

func postJSON(handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func validImageBody() map[string]string {
	return map[string]string{
		"imageBase64": base64.StdEncoding.EncodeToString([]byte("fake image bytes")),
		"mimeType":    "image/jpeg",
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(&visionStub{}, &limiterStub{}, nil)

	rec := postJSON(srv.handleAnalyze, "/analyze", validImageBody())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp struct {
		Success  bool                 `json:"success"`
		Data     core.GarmentAnalysis `json:"data"`
		Metadata struct {
			Cached    bool   `json:"cached"`
			ImageSize string `json:"imageSize"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "jacket", resp.Data.Category)
	require.False(t, resp.Metadata.Cached)
	require.NotEmpty(t, resp.Metadata.ImageSize)
}

func TestAnalyzeRejectsMissingImage(t *testing.T) {
	srv := newTestServer(&visionStub{}, &limiterStub{}, nil)

	rec := postJSON(srv.handleAnalyze, "/analyze", map[string]string{"mimeType": "image/png"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Missing image data")
}

func TestAnalyzeRejectsInvalidJSON(t *testing.T) {
	srv := newTestServer(&visionStub{}, &limiterStub{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("{not json"))
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	srv.handleAnalyze(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeRejectsNonPost(t *testing.T) {
	srv := newTestServer(&visionStub{}, &limiterStub{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/analyze", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	srv.handleAnalyze(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPreflightShortCircuits(t *testing.T) {
	limiterCalled := false
	limiter := &limiterStub{checkFn: func(context.Context, string) (core.RateLimitDecision, error) {
		limiterCalled = true
		return core.RateLimitDecision{}, nil
	}}
	srv := newTestServer(&visionStub{}, limiter, nil)

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	srv.handleAnalyze(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.False(t, limiterCalled, "preflight must not consume rate limit budget")
}

func TestRateLimitedRequestGets429(t *testing.T) {
	limiter := &limiterStub{checkFn: func(context.Context, string) (core.RateLimitDecision, error) {
		return core.RateLimitDecision{Limited: true, RetryAfter: 37 * time.Second}, nil
	}}
	srv := newTestServer(&visionStub{}, limiter, nil)

	rec := postJSON(srv.handleAnalyze, "/analyze", validImageBody())
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "37", rec.Header().Get("Retry-After"))

	var resp struct {
		Success    bool `json:"success"`
		RetryAfter int  `json:"retryAfter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, 37, resp.RetryAfter)
}

func TestRateLimitStoreFailureAdmitsRequest(t *testing.T) {
	limiter := &limiterStub{checkFn: func(context.Context, string) (core.RateLimitDecision, error) {
		return core.RateLimitDecision{}, fmt.Errorf("rate limit store unavailable")
	}}
	srv := newTestServer(&visionStub{}, limiter, nil)

	rec := postJSON(srv.handleAnalyze, "/analyze", validImageBody())
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestOversizedBodyGets413(t *testing.T) {
	srv := newTestServer(&visionStub{}, &limiterStub{}, nil)

	// The recommendations body cap is 1 MiB; exceed it with padding.
	body := `{"itemDescription":"` + strings.Repeat("x", 1<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	srv.handleRecommendations(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Contains(t, rec.Body.String(), "Request body too large")
}

func TestTrustedAddressBypassesRateLimit(t *testing.T) {
	limiter := &limiterStub{checkFn: func(context.Context, string) (core.RateLimitDecision, error) {
		return core.RateLimitDecision{Limited: true, RetryAfter: time.Minute}, nil
	}}
	srv := newTestServer(&visionStub{}, limiter, []string{"1.2.3.4"})

	rec := postJSON(srv.handleAnalyze, "/analyze", validImageBody())
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitKeysOnForwardedFor(t *testing.T) {
	var seen string
	limiter := &limiterStub{checkFn: func(_ context.Context, addr string) (core.RateLimitDecision, error) {
		seen = addr
		return core.RateLimitDecision{}, nil
	}}
	srv := newTestServer(&visionStub{}, limiter, nil)

	raw, _ := json.Marshal(validImageBody())
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(raw))
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	srv.handleAnalyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "203.0.113.9", seen)
}

func TestAnalyzeTooLargeImageGets413(t *testing.T) {
	logger := zap.NewNop()
	service := core.NewWardrobeService(&visionStub{}, nopCache{}, utils.NewModelTextProcessor(logger),
		logger, false, 0, 8)
	srv := NewServer(service, &limiterStub{}, whitelist.NewChecker(nil, logger), logger, "127.0.0.1:0")

	rec := postJSON(srv.handleAnalyze, "/analyze", validImageBody())
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Contains(t, rec.Body.String(), "Image too large")
}

func TestAnalyzeMalformedModelOutputGets500WithRaw(t *testing.T) {
	vision := &visionStub{analyzeFn: func(context.Context, core.ImagePayload) (string, error) {
		return "sorry, I cannot help with that", nil
	}}
	srv := newTestServer(vision, &limiterStub{}, nil)

	rec := postJSON(srv.handleAnalyze, "/analyze", validImageBody())
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Success     bool   `json:"success"`
		RawResponse string `json:"rawResponse"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "sorry, I cannot help with that", resp.RawResponse)
}

func TestRecommendationsEndpoint(t *testing.T) {
	srv := newTestServer(&visionStub{}, &limiterStub{}, nil)

	rec := postJSON(srv.handleRecommendations, "/recommendations", map[string]string{
		"itemDescription": "navy wool jacket",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success         bool                  `json:"success"`
		Recommendations []core.Recommendation `json:"recommendations"`
		Metadata        struct {
			Count int `json:"count"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Recommendations, 1)
	require.Equal(t, 1, resp.Metadata.Count)
}

func TestRecommendationsFailureCarriesEmptyList(t *testing.T) {
	vision := &visionStub{shopsFn: func(context.Context, string) (string, error) {
		return "", fmt.Errorf("model unavailable")
	}}
	srv := newTestServer(vision, &limiterStub{}, nil)

	rec := postJSON(srv.handleRecommendations, "/recommendations", map[string]string{
		"itemDescription": "navy wool jacket",
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Success         bool                   `json:"success"`
		Recommendations *[]core.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Recommendations)
	require.Empty(t, *resp.Recommendations)
}

func TestRecommendationsRejectMissingDescription(t *testing.T) {
	srv := newTestServer(&visionStub{}, &limiterStub{}, nil)

	rec := postJSON(srv.handleRecommendations, "/recommendations", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOutfitEndpoint(t *testing.T) {
	srv := newTestServer(&visionStub{}, &limiterStub{}, nil)

	rec := postJSON(srv.handleOutfit, "/outfit", map[string]any{
		"items":    []string{"navy jacket", "white shirt"},
		"occasion": "dinner",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success    bool   `json:"success"`
		Suggestion string `json:"suggestion"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "wear the jacket", resp.Suggestion)
}

func TestOutfitRejectsEmptyItems(t *testing.T) {
	srv := newTestServer(&visionStub{}, &limiterStub{}, nil)

	rec := postJSON(srv.handleOutfit, "/outfit", map[string]any{"items": []string{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&visionStub{}, &limiterStub{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.handleHealthz(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}
