package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
)

func newFastClient(baseURL string) *Client {
	c := New(baseURL)
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c
}

func TestAnalyzeImageSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/analyze", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"category":"jacket","color":"navy","season":"winter","brand":"Acme","material":"wool"}}`))
	}))
	defer ts.Close()

	analysis, err := newFastClient(ts.URL).AnalyzeImage(context.Background(), "aW1hZ2U=", "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, "jacket", analysis.Category)
	require.Equal(t, "wool", analysis.Material)
}

func TestAnalyzeImageRetriesServerErrors(t *testing.T) {
	var attempts int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"category":"jacket"}}`))
	}))
	defer ts.Close()

	analysis, err := newFastClient(ts.URL).AnalyzeImage(context.Background(), "aW1hZ2U=", "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, "jacket", analysis.Category)
	require.EqualValues(t, 3, attempts)
}

func TestAnalyzeImageRetries429(t *testing.T) {
	var attempts int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"category":"jacket"}}`))
	}))
	defer ts.Close()

	_, err := newFastClient(ts.URL).AnalyzeImage(context.Background(), "aW1hZ2U=", "image/jpeg")
	require.NoError(t, err)
	require.EqualValues(t, 2, attempts)
}

func TestAnalyzeImageGivesUpAfterFiveAttempts(t *testing.T) {
	var attempts int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := newFastClient(ts.URL).AnalyzeImage(context.Background(), "aW1hZ2U=", "image/jpeg")
	require.Error(t, err)
	require.EqualValues(t, 5, attempts)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestAnalyzeImageDoesNotRetryClientErrors(t *testing.T) {
	var attempts int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"Missing image data"}`))
	}))
	defer ts.Close()

	_, err := newFastClient(ts.URL).AnalyzeImage(context.Background(), "", "image/jpeg")
	require.Error(t, err)
	require.EqualValues(t, 1, attempts)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, "Missing image data")
}

func TestAnalyzeImageDoesNotRetryFailureEnvelope(t *testing.T) {
	var attempts int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		_, _ = w.Write([]byte(`{"success":false,"error":"Failed to parse the AI response"}`))
	}))
	defer ts.Close()

	_, err := newFastClient(ts.URL).AnalyzeImage(context.Background(), "aW1hZ2U=", "image/jpeg")
	require.Error(t, err)
	require.EqualValues(t, 1, attempts)
}

func TestShopRecommendationsSoftFailsToEmptyList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	recs := newFastClient(ts.URL).ShopRecommendations(context.Background(), "navy jacket")
	require.NotNil(t, recs)
	require.Empty(t, recs)
}

func TestShopRecommendationsSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/recommendations", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"recommendations":[{"title":"Navy jacket","url":"https://shop.example/a"}]}`))
	}))
	defer ts.Close()

	recs := newFastClient(ts.URL).ShopRecommendations(context.Background(), "navy jacket")
	require.Equal(t, []Recommendation{{Title: "Navy jacket", URL: "https://shop.example/a"}}, recs)
}

func TestSuggestOutfitFallsBackOnFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	got := newFastClient(ts.URL).SuggestOutfit(context.Background(), []string{"jacket"}, "dinner", "cold")
	require.Equal(t, outfitFallback, got)
}

func TestSuggestOutfitSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/outfit", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"suggestion":"wear the jacket"}`))
	}))
	defer ts.Close()

	got := newFastClient(ts.URL).SuggestOutfit(context.Background(), []string{"jacket"}, "dinner", "cold")
	require.Equal(t, "wear the jacket", got)
}

func TestAttemptBackOffGrowsExponentially(t *testing.T) {
	bo := &attemptBackOff{}

	first := bo.NextBackOff()
	require.GreaterOrEqual(t, first, 2*time.Second)
	require.Less(t, first, 3*time.Second)

	second := bo.NextBackOff()
	require.GreaterOrEqual(t, second, 4*time.Second)
	require.Less(t, second, 5*time.Second)

	bo.Reset()
	reset := bo.NextBackOff()
	require.GreaterOrEqual(t, reset, 2*time.Second)
	require.Less(t, reset, 3*time.Second)
}
