package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/adapters/bedrock"
	"github.com/armadio/wardrobe-ai-gateway/internal/adapters/gemini"
	"github.com/armadio/wardrobe-ai-gateway/internal/adapters/openai"
	"github.com/armadio/wardrobe-ai-gateway/internal/config"
	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

// LLMFactory creates vision model clients
type LLMFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	secrets core.SecretSource
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, secrets core.SecretSource) *LLMFactory {
	return &LLMFactory{
		cfg:     cfg,
		logger:  logger,
		secrets: secrets,
	}
}

// CreateVisionClient creates a vision client based on the configuration
func (f *LLMFactory) CreateVisionClient() (core.VisionClient, error) {
	timeout, err := f.cfg.GetDuration("llm.request_timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid llm request timeout: %w", err)
	}

	switch provider := f.cfg.GetLLM().Provider; provider {
	case "gemini":
		geminiCfg := f.cfg.GetGemini()
		return gemini.NewClient(
			f.secrets,
			geminiCfg.ModelName,
			geminiCfg.MaxTokens,
			geminiCfg.Temperature,
			geminiCfg.TopP,
			timeout,
			f.logger,
		), nil
	case "openai":
		openaiCfg := f.cfg.GetOpenAI()
		return openai.NewClient(
			f.secrets,
			openaiCfg.ModelName,
			openaiCfg.MaxTokens,
			openaiCfg.Temperature,
			openaiCfg.TopP,
			timeout,
			f.logger,
		), nil
	case "bedrock":
		bedrockCfg := f.cfg.GetBedrock()
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(bedrockCfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		return bedrock.NewClient(
			bedrockruntime.NewFromConfig(awsCfg),
			bedrockCfg.ModelID,
			bedrockCfg.MaxTokens,
			bedrockCfg.Temperature,
			bedrockCfg.TopP,
			timeout,
			f.logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
