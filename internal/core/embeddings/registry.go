package embeddings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quotelens/quotelens/internal/core/errs"
)

// Registry errors.
var (
	ErrNoProviders        = errors.New("no embedding providers available")
	ErrAllProvidersFailed = errors.New("all embedding providers failed")
)

// Registry fans Encode calls out to the highest-priority healthy provider
// and pads every result to the target dimension.
type Registry struct {
	mu        sync.RWMutex
	providers map[ProviderName]Provider
	order     []ProviderName
	breakers  map[ProviderName]*breaker

	targetDims int
	logger     *zerolog.Logger
}

var _ Encoder = (*Registry)(nil)

// NewRegistry creates an empty registry targeting the given dimensions.
func NewRegistry(targetDims int, logger *zerolog.Logger) *Registry {
	if targetDims <= 0 {
		targetDims = DefaultDimensions
	}

	return &Registry{
		providers:  make(map[ProviderName]Provider),
		breakers:   make(map[ProviderName]*breaker),
		targetDims: targetDims,
		logger:     logger,
	}
}

// Register adds a provider. Providers are consulted in descending priority.
func (r *Registry) Register(p Provider, cfg BreakerConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	r.providers[name] = p
	r.order = append(r.order, name)
	r.breakers[name] = newBreaker(cfg, r.logger)

	sort.SliceStable(r.order, func(i, j int) bool {
		return r.providers[r.order[i]].Priority() > r.providers[r.order[j]].Priority()
	})

	r.logger.Info().
		Str("provider", string(name)).
		Int("priority", p.Priority()).
		Int("dimensions", p.Dimensions()).
		Msg("registered embedding provider")
}

// ProviderCount returns the number of registered providers.
func (r *Registry) ProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

// Encode tries providers in priority order, skipping open circuits and
// unavailable backends, and returns the first successful vector normalized
// and sized to the target dimensions.
func (r *Registry) Encode(ctx context.Context, text string) ([]float32, error) {
	r.mu.RLock()
	ordered := make([]Provider, 0, len(r.order))

	for _, name := range r.order {
		ordered = append(ordered, r.providers[name])
	}
	r.mu.RUnlock()

	if len(ordered) == 0 {
		return nil, ErrNoProviders
	}

	var lastErr error

	for _, p := range ordered {
		name := p.Name()

		if !p.IsAvailable() {
			continue
		}

		br := r.getBreaker(name)
		if !br.canAttempt() {
			r.logger.Debug().Str("provider", string(name)).Msg("skipping provider, circuit open")
			continue
		}

		start := time.Now()
		res, err := p.Embed(ctx, text)
		observeEncode(string(name), time.Since(start), err == nil)

		if err != nil {
			br.recordFailure(name)

			lastErr = err

			r.logger.Warn().Err(err).Str("provider", string(name)).Msg("embedding provider failed, trying fallback")

			continue
		}

		br.recordSuccess()

		return Normalize(fitDimensions(res.Vector, r.targetDims)), nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
	}

	return nil, fmt.Errorf("%w: %w", ErrAllProvidersFailed, errs.ErrCircuitOpen)
}

// EncodeBatch encodes texts sequentially, preserving order. Providers here
// are rate-limited individually, so batching at this level stays simple.
func (r *Registry) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	for i, text := range texts {
		vec, err := r.Encode(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("encode batch item %d: %w", i, err)
		}

		out[i] = vec
	}

	return out, nil
}

func (r *Registry) getBreaker(name ProviderName) *breaker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.breakers[name]
}
