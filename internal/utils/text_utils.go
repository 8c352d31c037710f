package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ModelTextProcessor provides utilities for normalizing model text output
type ModelTextProcessor struct {
	logger *zap.Logger
}

// NewModelTextProcessor creates a new ModelTextProcessor
func NewModelTextProcessor(logger *zap.Logger) *ModelTextProcessor {
	return &ModelTextProcessor{
		logger: logger,
	}
}

// StripCodeFences removes a markdown code-fence wrapper from model output.
// Models frequently wrap JSON in ```json ... ``` despite instructions not to.
func (tp *ModelTextProcessor) StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	// Drop the opening fence line, including any language tag after the backticks.
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	} else {
		trimmed = strings.TrimPrefix(trimmed, "```")
	}

	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")

	tp.logger.Debug("Stripped code fences from model output")

	return strings.TrimSpace(trimmed)
}

// Excerpt returns a bounded prefix of text, truncated to valid UTF-8.
// Used to keep diagnostics from carrying arbitrarily large model responses.
func (tp *ModelTextProcessor) Excerpt(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]

	// Ensure the truncated text ends with a valid UTF-8 sequence
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated for diagnostics",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *ModelTextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	// Replace invalid UTF-8 sequences with nothing
	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				// Skip invalid UTF-8 sequences
				continue
			}
		}
		result = append(result, r)
	}

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(string(result))))

	return string(result)
}
