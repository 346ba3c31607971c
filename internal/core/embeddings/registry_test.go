package embeddings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type failingProvider struct {
	calls int
}

func (p *failingProvider) Name() ProviderName { return "failing" }
func (p *failingProvider) Priority() int      { return priorityPrimary }
func (p *failingProvider) Dimensions() int    { return 8 }
func (p *failingProvider) IsAvailable() bool  { return true }

func (p *failingProvider) Embed(context.Context, string) (Result, error) {
	p.calls++
	return Result{}, errBoom
}

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestRegistry_FallsBackToNextProvider(t *testing.T) {
	reg := NewRegistry(8, testLogger())

	failing := &failingProvider{}
	reg.Register(failing, BreakerConfig{Threshold: 3, ResetAfter: time.Minute})
	reg.Register(NewMockProviderWithDimensions(8), BreakerConfig{Threshold: 3, ResetAfter: time.Minute})

	vec, err := reg.Encode(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 8)
	assert.Equal(t, 1, failing.calls)
}

func TestRegistry_CircuitOpensAfterThreshold(t *testing.T) {
	reg := NewRegistry(8, testLogger())

	failing := &failingProvider{}
	reg.Register(failing, BreakerConfig{Threshold: 2, ResetAfter: time.Hour})

	for i := 0; i < 3; i++ {
		_, err := reg.Encode(context.Background(), "x")
		require.Error(t, err)
	}

	// Threshold 2: third call must have been blocked by the open circuit.
	assert.Equal(t, 2, failing.calls)
}

func TestRegistry_NoProviders(t *testing.T) {
	reg := NewRegistry(8, testLogger())

	_, err := reg.Encode(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoProviders)
}

func TestMockProvider_Deterministic(t *testing.T) {
	p := NewMockProviderWithDimensions(16)

	a, err := p.Embed(context.Background(), "same text")
	require.NoError(t, err)

	b, err := p.Embed(context.Background(), "same text")
	require.NoError(t, err)

	assert.Equal(t, a.Vector, b.Vector)
	assert.InDelta(t, 1.0, Cosine(a.Vector, b.Vector), 1e-6)

	c, err := p.Embed(context.Background(), "different text")
	require.NoError(t, err)
	assert.Less(t, Cosine(a.Vector, c.Vector), 0.99)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, Cosine(nil, []float32{1}))
	assert.Zero(t, Cosine([]float32{1, 2}, []float32{1}))
}

func TestFitDimensions(t *testing.T) {
	assert.Equal(t, []float32{1, 2, 0, 0}, fitDimensions([]float32{1, 2}, 4))
	assert.Equal(t, []float32{1, 2}, fitDimensions([]float32{1, 2, 3}, 2))
	assert.Equal(t, []float32{1, 2}, fitDimensions([]float32{1, 2}, 2))
}
