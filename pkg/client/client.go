// Package client is a consumer-side client for the wardrobe AI gateway.
// It retries transient failures with exponential backoff and degrades
// gracefully on the endpoints where a partial answer beats an error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

const (
	// maxRetries is the number of retries after the first attempt, five
	// attempts in total.
	maxRetries = 4

	defaultTimeout = 30 * time.Second

	// outfitFallback is shown verbatim to the end user when the outfit
	// endpoint stays down across all attempts.
	outfitFallback = "Non sono riuscito a generare un suggerimento. Riprova più tardi."
)

// Analysis is the garment metadata extracted by the gateway.
type Analysis struct {
	Category string `json:"category"`
	Color    string `json:"color"`
	Season   string `json:"season"`
	Brand    string `json:"brand"`
	Material string `json:"material"`
}

// Recommendation is a single shop listing returned by the gateway.
type Recommendation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// APIError is a gateway response that was received but not a success.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway returned status %d", e.StatusCode)
}

// Client calls the wardrobe gateway over HTTP.
type Client struct {
	baseURL    string
	hc         *http.Client
	newBackOff func() backoff.BackOff
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// New creates a gateway client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		hc:         &http.Client{Timeout: defaultTimeout},
		newBackOff: func() backoff.BackOff { return &attemptBackOff{} },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AnalyzeImage submits a base64-encoded image for garment analysis. The call
// is retried on transient failures and the last error is returned once the
// attempts are exhausted.
func (c *Client) AnalyzeImage(ctx context.Context, imageBase64, mimeType string) (*Analysis, error) {
	req := struct {
		ImageBase64 string `json:"imageBase64"`
		MimeType    string `json:"mimeType"`
	}{ImageBase64: imageBase64, MimeType: mimeType}

	var resp struct {
		Data *Analysis `json:"data"`
	}
	if err := c.post(ctx, "/analyze", req, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("gateway returned no analysis data")
	}
	return resp.Data, nil
}

// ShopRecommendations looks up shop listings for a described item. It never
// fails hard: when the gateway stays unreachable or keeps erroring, an empty
// list is returned so the caller can render "no results".
func (c *Client) ShopRecommendations(ctx context.Context, itemDescription string) []Recommendation {
	req := struct {
		ItemDescription string `json:"itemDescription"`
	}{ItemDescription: itemDescription}

	var resp struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	if err := c.post(ctx, "/recommendations", req, &resp); err != nil {
		return []Recommendation{}
	}
	if resp.Recommendations == nil {
		return []Recommendation{}
	}
	return resp.Recommendations
}

// SuggestOutfit asks the gateway to compose an outfit from the given items.
// On persistent failure a user-facing fallback message is returned instead
// of an error.
func (c *Client) SuggestOutfit(ctx context.Context, items []string, occasion, weather string) string {
	req := struct {
		Items    []string `json:"items"`
		Occasion string   `json:"occasion"`
		Weather  string   `json:"weather"`
	}{Items: items, Occasion: occasion, Weather: weather}

	var resp struct {
		Suggestion string `json:"suggestion"`
	}
	if err := c.post(ctx, "/outfit", req, &resp); err != nil {
		return outfitFallback
	}
	return resp.Suggestion
}

// post sends the payload and decodes the success envelope into out. Transport
// errors, 5xx and 429 are retried; any other 4xx and a success=false body are
// terminal.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	op := func() error {
		// Recreate the request each attempt, the body reader is consumed.
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.hc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return apiErr
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return backoff.Permanent(apiErr)
		}

		var envelope struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return backoff.Permanent(fmt.Errorf("malformed gateway response: %w", err))
		}
		if !envelope.Success {
			apiErr.Message = envelope.Error
			return backoff.Permanent(apiErr)
		}

		if out != nil {
			if err := json.Unmarshal(raw, out); err != nil {
				return backoff.Permanent(fmt.Errorf("malformed gateway response: %w", err))
			}
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), maxRetries), ctx)
	return backoff.Retry(op, bo)
}

func errorMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.Error
}

// attemptBackOff waits 2^n seconds plus up to a second of jitter before the
// n-th retry.
type attemptBackOff struct {
	attempt int
}

func (b *attemptBackOff) NextBackOff() time.Duration {
	b.attempt++
	base := time.Duration(1<<uint(b.attempt)) * time.Second
	jitter := time.Duration(rand.Int63n(int64(time.Second)))
	return base + jitter
}

func (b *attemptBackOff) Reset() {
	b.attempt = 0
}
