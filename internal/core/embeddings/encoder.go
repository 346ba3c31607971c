// Package embeddings provides the sentence-encoder capability used by
// keyword ranking and snippet matching: text in, unit-length vector out.
//
// Multiple providers are supported with priority-ordered fallback:
//   - OpenAI text-embedding-3-small / -large
//   - Cohere embed-v3
//   - a deterministic mock for tests and keyless development
//
// Providers sit behind circuit breakers and per-provider rate limits, and
// every returned vector is padded or truncated to a single target dimension
// so cosine comparisons stay well-defined across fallbacks.
package embeddings

import (
	"context"
	"math"
	"time"
)

// ProviderName identifies an embedding provider.
type ProviderName string

const (
	ProviderOpenAI ProviderName = "openai"
	ProviderCohere ProviderName = "cohere"
	ProviderMock   ProviderName = "mock"
)

// Provider priorities; higher is preferred.
const (
	priorityPrimary  = 100
	priorityFallback = 50
	priorityMock     = 0
)

// DefaultDimensions is the target vector size when none is configured.
const DefaultDimensions = 1536

// Encoder is the interface the rest of the pipeline depends on.
type Encoder interface {
	// Encode returns a vector for the given text, normalized to unit length
	// and sized to the configured target dimensions.
	Encode(ctx context.Context, text string) ([]float32, error)

	// EncodeBatch encodes several texts, preserving input order.
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Result carries one provider response.
type Result struct {
	Vector   []float32
	Provider ProviderName
}

// Provider is one embedding backend.
type Provider interface {
	Name() ProviderName
	Priority() int
	Dimensions() int
	IsAvailable() bool
	Embed(ctx context.Context, text string) (Result, error)
}

// BreakerConfig defines circuit breaker settings shared by providers.
type BreakerConfig struct {
	Threshold  int
	ResetAfter time.Duration
}

// DefaultBreakerConfig returns the defaults used when config leaves the
// breaker settings at zero.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{Threshold: 5, ResetAfter: time.Minute}
}

// Cosine returns the cosine similarity of two vectors. Unit-length inputs
// make this a dot product, but the norm division keeps it correct for any
// pair with matching dimensions.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64

	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}

	if na == 0 || nb == 0 {
		return 0
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Normalize scales a vector to unit length in place and returns it.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	if sum == 0 {
		return vec
	}

	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}

	return vec
}
