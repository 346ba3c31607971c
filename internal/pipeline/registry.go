package pipeline

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quotelens/quotelens/internal/core/embeddings"
	"github.com/quotelens/quotelens/internal/core/entities"
	"github.com/quotelens/quotelens/internal/core/llm"
	"github.com/quotelens/quotelens/internal/core/queries"
	"github.com/quotelens/quotelens/internal/core/translate"
	"github.com/quotelens/quotelens/internal/platform/config"
)

// Deps are the shared model handles one process holds. All of them are safe
// for concurrent use once built.
type Deps struct {
	LLM        llm.Client
	Extractor  entities.Extractor
	Encoder    embeddings.Encoder
	Translator translate.Translator
	Resolver   queries.NameResolver
}

// ModelRegistry builds the model handles lazily on first use, so commands
// that never analyze anything pay no startup cost.
type ModelRegistry struct {
	cfg    *config.Config
	logger *zerolog.Logger

	once sync.Once
	deps Deps
}

func NewModelRegistry(cfg *config.Config, logger *zerolog.Logger) *ModelRegistry {
	return &ModelRegistry{cfg: cfg, logger: logger}
}

// NewModelRegistryFromDeps wraps pre-built handles; tests inject stubs this
// way.
func NewModelRegistryFromDeps(deps Deps) *ModelRegistry {
	r := &ModelRegistry{deps: deps}
	r.once.Do(func() {})

	return r
}

// Deps returns the shared handles, building them on first call.
func (r *ModelRegistry) Deps() Deps {
	r.once.Do(r.build)

	return r.deps
}

func (r *ModelRegistry) build() {
	client := llm.NewOpenAI(llm.Config{
		APIKey:       r.cfg.LLMAPIKey,
		Model:        r.cfg.LLMModel,
		RateLimitRPS: r.cfg.LLMRateLimitRPS,
		Timeout:      r.cfg.LLMTimeout,
	}, r.logger)

	extractor := entities.NewFallbackExtractor(
		entities.NewLLMExtractor(client, r.logger),
		entities.NewPatternExtractor(),
		r.logger,
	)

	encoder := embeddings.NewEncoder(embeddings.Config{
		OpenAIAPIKey:     r.cfg.EmbeddingAPIKey,
		OpenAIModel:      r.cfg.EmbeddingModel,
		OpenAIDimensions: r.cfg.EmbeddingDimensions,
		OpenAIRateLimit:  r.cfg.EmbeddingRateLimit,
		CohereAPIKey:     r.cfg.CohereAPIKey,
		CohereModel:      r.cfg.CohereModel,
		TargetDimensions: r.cfg.EmbeddingDimensions,
		Breaker: embeddings.BreakerConfig{
			Threshold:  r.cfg.CircuitThreshold,
			ResetAfter: r.cfg.CircuitReset,
		},
	}, r.logger)

	translator := translate.NewLLMTranslator(client)

	var resolver queries.NameResolver = translatorResolver{translator}
	if r.cfg.WikidataEnabled {
		resolver = translate.NewNameResolver(translate.NameResolverConfig{
			RateLimitRPS: r.cfg.WikidataRateLimit,
		}, translator, r.logger)
	}

	r.deps = Deps{
		LLM:        client,
		Extractor:  extractor,
		Encoder:    encoder,
		Translator: translator,
		Resolver:   resolver,
	}
}

// translatorResolver satisfies the name-resolution capability with plain
// translation when Wikidata is disabled.
type translatorResolver struct {
	translator translate.Translator
}

func (t translatorResolver) ResolveEnglishName(ctx context.Context, name string) (string, error) {
	return t.translator.TranslateToEnglish(ctx, name)
}
