package entities

import (
	"context"

	"github.com/rs/zerolog"
)

// FallbackExtractor tries the primary extractor and falls back to the
// secondary when the primary errors. The pipeline wires the LLM extractor
// first and the pattern extractor second, so entity extraction keeps
// producing output when the model is unreachable.
type FallbackExtractor struct {
	primary   Extractor
	secondary Extractor
	logger    *zerolog.Logger
}

func NewFallbackExtractor(primary, secondary Extractor, logger *zerolog.Logger) *FallbackExtractor {
	return &FallbackExtractor{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackExtractor) Extract(ctx context.Context, text string) ([]Entity, error) {
	result, err := f.primary.Extract(ctx, text)
	if err == nil {
		return result, nil
	}

	f.logger.Warn().Err(err).Msg("primary entity extractor failed, using pattern fallback")

	return f.secondary.Extract(ctx, text)
}
