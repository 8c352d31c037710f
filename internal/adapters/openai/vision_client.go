package openai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

// Client is an implementation of the VisionClient interface using OpenAI
type Client struct {
	secrets     core.SecretSource
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	timeout     time.Duration
	logger      *zap.Logger

	mu     sync.Mutex
	client *openai.Client

	analysisPrompt string
	shopsPrompt    string
	outfitPrompt   string
}

// NewClient creates a new OpenAI vision client. The underlying API client is
// constructed lazily once the API key is available from the secret source.
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
		shopsPrompt: `You are a shopping assistant. Suggest online shop listings matching this item description: %s

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

func (c *Client) ensureClient(ctx context.Context) (*openai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	apiKey, err := c.secrets.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain OpenAI API key: %w", err)
	}

	c.client = openai.NewClient(apiKey)
	return c.client, nil
}

// AnalyzeImage submits a garment photo as an inline data URL
func (c *Client) AnalyzeImage(ctx context.Context, image core.ImagePayload) (string, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: c.analysisPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: fmt.Sprintf("data:%s;base64,%s", image.MimeType, image.Base64),
						},
					},
				},
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// FindShops looks up shop listings. OpenAI has no search grounding here, so
// the prompt alone drives the lookup.
func (c *Client) FindShops(ctx context.Context, description string) (string, error) {
	return c.complete(ctx, fmt.Sprintf(c.shopsPrompt, description))
}

// SuggestOutfit asks the model to compose an outfit from wardrobe items
func (c *Client) SuggestOutfit(ctx context.Context, req core.OutfitRequest) (string, error) {
	prompt := fmt.Sprintf(c.outfitPrompt,
		"- "+strings.Join(req.Items, "\n- "),
		orAny(req.Occasion),
		orAny(req.Weather),
	)
	return c.complete(ctx, prompt)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

func orAny(s string) string {
	if strings.TrimSpace(s) == "" {
		return "any"
	}
	return s
}
