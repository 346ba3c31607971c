package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	openaiDefaultModel  = openai.SmallEmbedding3
	openaiLimiterBurst  = 5
	maxLargeDimensions  = 3072
	openaiLargeModel = "text-embedding-3-large"
)

// ErrOpenAIEmptyResponse indicates OpenAI answered with no embedding data.
var ErrOpenAIEmptyResponse = errors.New("empty embedding response from openai")

// OpenAIProvider calls the OpenAI embeddings API.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
	limiter    *rate.Limiter
	available  bool
}

// OpenAIConfig configures the OpenAI embedding provider.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	Dimensions int
	RateLimit  int // requests per second
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = string(openaiDefaultModel)
	}

	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}

	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}

	return &OpenAIProvider{
		client:     openai.NewClient(cfg.APIKey),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), openaiLimiterBurst),
		available:  cfg.APIKey != "",
	}
}

func (p *OpenAIProvider) Name() ProviderName { return ProviderOpenAI }

func (p *OpenAIProvider) Priority() int { return priorityPrimary }

func (p *OpenAIProvider) Dimensions() int { return p.dimensions }

func (p *OpenAIProvider) IsAvailable() bool { return p.available }

func (p *OpenAIProvider) Embed(ctx context.Context, text string) (Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limiter: %w", err)
	}

	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.model),
	}

	// The large model supports server-side dimension reduction.
	if p.model == openaiLargeModel && p.dimensions < maxLargeDimensions {
		req.Dimensions = p.dimensions
	}

	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("openai embeddings: %w", err)
	}

	if len(resp.Data) == 0 {
		return Result{}, ErrOpenAIEmptyResponse
	}

	return Result{Vector: resp.Data[0].Embedding, Provider: ProviderOpenAI}, nil
}
