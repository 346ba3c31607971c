package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	cohereEndpoint     = "https://api.cohere.ai/v1/embed"
	cohereDefaultModel = "embed-multilingual-v3.0"
	cohereTimeout      = 30 * time.Second
	cohereDimensions   = 1024
)

var (
	errCohereStatus        = errors.New("cohere unexpected status")
	ErrCohereEmptyResponse = errors.New("empty embedding response from cohere")
)

// CohereProvider calls the Cohere embed API over plain HTTP.
type CohereProvider struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// CohereConfig configures the Cohere embedding provider.
type CohereConfig struct {
	APIKey    string
	Model     string
	RateLimit int // requests per second
}

func NewCohereProvider(cfg CohereConfig) *CohereProvider {
	if cfg.Model == "" {
		cfg.Model = cohereDefaultModel
	}

	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}

	return &CohereProvider{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		endpoint:   cohereEndpoint,
		httpClient: &http.Client{Timeout: cohereTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
	}
}

func (p *CohereProvider) Name() ProviderName { return ProviderCohere }

func (p *CohereProvider) Priority() int { return priorityFallback }

func (p *CohereProvider) Dimensions() int { return cohereDimensions }

func (p *CohereProvider) IsAvailable() bool { return p.apiKey != "" }

type cohereRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type cohereResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *CohereProvider) Embed(ctx context.Context, text string) (Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limiter: %w", err)
	}

	payload, err := json.Marshal(cohereRequest{
		Texts:     []string{text},
		Model:     p.model,
		InputType: "search_document",
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal cohere request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("create cohere request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("cohere request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("%w: %d", errCohereStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read cohere response: %w", err)
	}

	var parsed cohereResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("parse cohere response: %w", err)
	}

	if len(parsed.Embeddings) == 0 {
		return Result{}, ErrCohereEmptyResponse
	}

	return Result{Vector: parsed.Embeddings[0], Provider: ProviderCohere}, nil
}
