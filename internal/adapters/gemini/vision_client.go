package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

// Client is an implementation of the VisionClient interface using Google Gemini
type Client struct {
	secrets     core.SecretSource
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	timeout     time.Duration
	logger      *zap.Logger

	mu     sync.Mutex
	client *genai.Client

	analysisPrompt string
	shopsPrompt    string
	outfitPrompt   string
}

// NewClient creates a new Gemini vision client. The underlying API client is
// constructed lazily on first use, once the API key is available from the
// secret source.
func NewClient(
	secrets core.SecretSource,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	timeout time.Duration,
	logger *zap.Logger,
) *Client {
	return &Client{
		secrets:     secrets,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		timeout:     timeout,
		logger:      logger,
		analysisPrompt: `You are a fashion assistant. Analyze the clothing item in this photo.
Respond with a JSON object containing exactly these fields:
- category: the garment type (e.g. "T-Shirt", "Jeans", "Sneakers")
- color: the dominant color
- season: the season the item suits best (Spring, Summer, Autumn, Winter or All seasons)
- brand: the brand if visible, otherwise an empty string
- material: the main material if recognizable, otherwise an empty string

Respond only with the JSON object and nothing else.`,
		shopsPrompt: `You are a shopping assistant. Find online shop listings matching this item description: %s

Respond with a JSON array of at most 3 objects, each containing:
- title: the listing title
- url: the listing URL

Respond only with the JSON array and nothing else.`,
		outfitPrompt: `You are a personal stylist. Compose one outfit using only these wardrobe items:
%s
Occasion: %s
Weather: %s

Answer in Italian with a short, friendly suggestion naming the items to wear together. Answer with plain text, no JSON.`,
	}
}

// ensureClient builds the genai client on first use. Holding the lock for
// the duration of the secret fetch keeps concurrent first calls from each
// opening their own connection.
func (c *Client) ensureClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	apiKey, err := c.secrets.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain Gemini API key: %w", err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c.client = client
	return client, nil
}

func (c *Client) generativeModel(client *genai.Client) *genai.GenerativeModel {
	model := client.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)
	model.SetTopP(c.topP)
	model.SetMaxOutputTokens(int32(c.maxTokens))
	return model
}

// AnalyzeImage submits a garment photo with the analysis prompt
func (c *Client) AnalyzeImage(ctx context.Context, image core.ImagePayload) (string, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(image.Base64)
	if err != nil {
		return "", core.ErrInvalidImage
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.generativeModel(client)
	resp, err := model.GenerateContent(ctx,
		genai.ImageData(imageSubtype(image.MimeType), raw),
		genai.Text(c.analysisPrompt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	return textFromResponse(resp)
}

// FindShops looks up shop listings with Google Search grounding enabled
func (c *Client) FindShops(ctx context.Context, description string) (string, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.generativeModel(client)
	model.Tools = []*genai.Tool{
		{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}},
	}

	prompt := fmt.Sprintf(c.shopsPrompt, description)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	return textFromResponse(resp)
}

// SuggestOutfit asks the model to compose an outfit from wardrobe items
func (c *Client) SuggestOutfit(ctx context.Context, req core.OutfitRequest) (string, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.generativeModel(client)
	prompt := fmt.Sprintf(c.outfitPrompt,
		"- "+strings.Join(req.Items, "\n- "),
		orAny(req.Occasion),
		orAny(req.Weather),
	)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	return textFromResponse(resp)
}

// Close closes the Gemini client
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// textFromResponse extracts the text of the first candidate
func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}

	return sb.String(), nil
}

// imageSubtype maps a MIME type to the format tag genai expects ("jpeg", "png").
func imageSubtype(mimeType string) string {
	subtype := strings.TrimPrefix(mimeType, "image/")
	if subtype == "" {
		return "jpeg"
	}
	return subtype
}

func orAny(s string) string {
	if strings.TrimSpace(s) == "" {
		return "any"
	}
	return s
}
