package di

import (
	"flag"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/adapters/secrets"
	"github.com/armadio/wardrobe-ai-gateway/internal/config"
	"github.com/armadio/wardrobe-ai-gateway/internal/core"
	"github.com/armadio/wardrobe-ai-gateway/internal/factory"
	"github.com/armadio/wardrobe-ai-gateway/internal/logging"
	"github.com/armadio/wardrobe-ai-gateway/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider    string
	APIKey      string
	MaxTokens   int
	Temperature float64
	TopP        float64

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiModelName string

	// OpenAI flags
	OpenAIModelName string

	// Input flags
	InputFile  string
	MimeType   string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// LLM provider flags
	flag.StringVar(&flags.Provider, "provider", "gemini", "LLM provider (gemini, openai, bedrock)")
	flag.StringVar(&flags.APIKey, "api-key", "", "API key for the selected provider")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for LLM generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-3-sonnet-20240229-v1:0", "Bedrock model ID")

	// Gemini flags
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-1.5-flash", "Gemini model name")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4o", "OpenAI model name")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input image file")
	flag.StringVar(&flags.MimeType, "mime", "image/jpeg", "Image MIME type")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register secret source from the flag or config, memoized
	if err := container.Provide(func(flags *CLIFlags, cfg *config.Config, logger *zap.Logger) core.SecretSource {
		key := flags.APIKey
		if key == "" {
			key = cfg.GetString("secrets.api_key")
		}
		return secrets.NewCachedSource(secrets.NewStaticSource(key), logger)
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.ModelTextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register vision client
	if err := container.Provide(func(f *factory.LLMFactory) (core.VisionClient, error) {
		return f.CreateVisionClient()
	}); err != nil {
		return nil, err
	}

	// Register wardrobe service with no cache
	if err := container.Provide(func(
		visionClient core.VisionClient,
		text *utils.ModelTextProcessor,
		logger *zap.Logger,
		cfg *config.Config,
	) *core.WardrobeService {
		return core.NewWardrobeService(
			visionClient,
			nil, // No cache for CLI
			text,
			logger,
			false,            // Cache disabled
			time.Duration(0), // No TTL
			cfg.GetInt("analysis.max_image_bytes"),
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set LLM provider
	v.Set("llm.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "gemini":
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
	case "openai":
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
	}

	return config.NewFromViper(v)
}
