package embeddings

import (
	"context"
	"hash/fnv"
)

// LCG constants for the deterministic pseudo-random stream behind the mock.
const (
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407
	seedShift     = 33
	floatScale    = 0x40000000
)

// MockProvider produces deterministic embeddings from a hash of the input
// text. Identical texts get identical (and therefore maximally similar)
// vectors, which is what the scorer tests rely on.
type MockProvider struct {
	dimensions int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{dimensions: DefaultDimensions}
}

func NewMockProviderWithDimensions(dims int) *MockProvider {
	return &MockProvider{dimensions: dims}
}

func (p *MockProvider) Name() ProviderName { return ProviderMock }

func (p *MockProvider) Priority() int { return priorityMock }

func (p *MockProvider) Dimensions() int { return p.dimensions }

func (p *MockProvider) IsAvailable() bool { return true }

func (p *MockProvider) Embed(_ context.Context, text string) (Result, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, p.dimensions)
	for i := range vec {
		seed = seed*lcgMultiplier + lcgIncrement
		vec[i] = float32(int64(seed>>seedShift)-floatScale) / float32(floatScale)
	}

	return Result{Vector: Normalize(vec), Provider: ProviderMock}, nil
}
