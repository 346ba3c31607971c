package embeddings

import (
	"github.com/rs/zerolog"
)

// Config holds settings for building the process-wide encoder.
type Config struct {
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIDimensions int
	OpenAIRateLimit  int

	CohereAPIKey    string
	CohereModel     string
	CohereRateLimit int

	TargetDimensions int
	Breaker          BreakerConfig
}

// NewEncoder builds a registry with every configured provider. Without any
// API key it falls back to the deterministic mock so the pipeline stays
// usable in development and tests.
func NewEncoder(cfg Config, logger *zerolog.Logger) Encoder {
	if cfg.TargetDimensions <= 0 {
		cfg.TargetDimensions = DefaultDimensions
	}

	registry := NewRegistry(cfg.TargetDimensions, logger)

	if cfg.OpenAIAPIKey != "" {
		registry.Register(NewOpenAIProvider(OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			Dimensions: cfg.OpenAIDimensions,
			RateLimit:  cfg.OpenAIRateLimit,
		}), cfg.Breaker)
	}

	if cfg.CohereAPIKey != "" {
		registry.Register(NewCohereProvider(CohereConfig{
			APIKey:    cfg.CohereAPIKey,
			Model:     cfg.CohereModel,
			RateLimit: cfg.CohereRateLimit,
		}), cfg.Breaker)
	}

	if registry.ProviderCount() == 0 {
		logger.Warn().Msg("no embedding providers configured, using mock provider")
		registry.Register(NewMockProviderWithDimensions(cfg.TargetDimensions), cfg.Breaker)
	}

	return registry
}
