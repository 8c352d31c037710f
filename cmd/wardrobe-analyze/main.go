package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
	"github.com/armadio/wardrobe-ai-gateway/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the analysis
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	flags *di.CLIFlags,
	service *core.WardrobeService,
	visionClient core.VisionClient,
) error {
	defer logger.Sync()

	if flags.InputFile == "" {
		logger.Fatal("No input file specified, use -file")
	}

	// Read and encode the image
	raw, err := os.ReadFile(flags.InputFile)
	if err != nil {
		logger.Fatal("Failed to read image file", zap.Error(err), zap.String("file", flags.InputFile))
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	// Print analysis summary
	fmt.Printf("\n=== Analysis ===\n")
	fmt.Printf("Provider: %s\n", flags.Provider)
	fmt.Printf("Image: %s (%d bytes)\n", flags.InputFile, len(raw))

	startTime := time.Now()
	outcome, err := service.Analyze(context.Background(), core.ImagePayload{
		Base64:   encoded,
		MimeType: flags.MimeType,
	})
	if err != nil {
		logger.Fatal("Failed to analyze image", zap.Error(err))
	}
	duration := time.Since(startTime)

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Category: %s\n", outcome.Analysis.Category)
	fmt.Printf("Color: %s\n", outcome.Analysis.Color)
	fmt.Printf("Season: %s\n", outcome.Analysis.Season)
	fmt.Printf("Brand: %s\n", outcome.Analysis.Brand)
	fmt.Printf("Material: %s\n", outcome.Analysis.Material)
	fmt.Printf("Processing time: %v\n", duration)

	// Close any resources that need closing
	if closer, ok := visionClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close vision client", zap.Error(err))
		}
	}

	return nil
}
