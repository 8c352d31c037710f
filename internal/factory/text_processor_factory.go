package factory

import (
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/utils"
)

// TextProcessorFactory creates model text processors
type TextProcessorFactory struct {
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new text processor factory
func NewTextProcessorFactory(logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		logger: logger,
	}
}

// CreateTextProcessor creates a new ModelTextProcessor
func (f *TextProcessorFactory) CreateTextProcessor() *utils.ModelTextProcessor {
	return utils.NewModelTextProcessor(f.logger)
}
