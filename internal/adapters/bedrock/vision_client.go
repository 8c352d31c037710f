package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

// Client is an implementation of the VisionClient interface using Amazon
// Bedrock with an Anthropic Claude model. Authentication uses the AWS
// credential chain, so no secret source is involved.
type Client struct {
	client      *bedrockruntime.Client
	modelID     string
	maxTokens   int
	temperature float32
	topP        float32
	timeout     time.Duration
	logger      *zap.Logger

	analysisPrompt string
	shopsPrompt    string
	outfitPrompt   string
}

// anthropicResponse is the shape of the Claude messages API response body
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewClient creates a new Bedrock vision client
func NewClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	timeout time.Duration,
	logger *zap.Logger,
) *Client {
	return &Client{
		client:      client,
		modelID:     modelID,
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

// AnalyzeImage submits a garment photo as an inline base64 image block
func (c *Client) AnalyzeImage(ctx context.Context, image core.ImagePayload) (string, error) {
	content := []any{
		map[string]any{
			"type": "image",
			"source": map[string]any{
				"type":       "base64",
				"media_type": image.MimeType,
				"data":       image.Base64,
			},
		},
		map[string]any{
			"type": "text",
			"text": c.analysisPrompt,
		},
	}
	return c.invoke(ctx, content)
}

// FindShops looks up shop listings for a described item
func (c *Client) FindShops(ctx context.Context, description string) (string, error) {
	content := []any{
		map[string]any{
			"type": "text",
			"text": fmt.Sprintf(c.shopsPrompt, description),
		},
	}
	return c.invoke(ctx, content)
}

// SuggestOutfit asks the model to compose an outfit from wardrobe items
func (c *Client) SuggestOutfit(ctx context.Context, req core.OutfitRequest) (string, error) {
	prompt := fmt.Sprintf(c.outfitPrompt,
		"- "+strings.Join(req.Items, "\n- "),
		orAny(req.Occasion),
		orAny(req.Weather),
	)
	content := []any{
		map[string]any{
			"type": "text",
			"text": prompt,
		},
	}
	return c.invoke(ctx, content)
}

// invoke calls the Claude messages API with a single user turn
func (c *Client) invoke(ctx context.Context, content []any) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        c.maxTokens,
		"temperature":       c.temperature,
		"top_p":             c.topP,
		"messages": []any{
			map[string]any{
				"role":    "user",
				"content": content,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse Bedrock response: %w", err)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from Bedrock")
	}

	return sb.String(), nil
}

func orAny(s string) string {
	if strings.TrimSpace(s) == "" {
		return "any"
	}
	return s
}
