package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/quotelens/quotelens/internal/core/errs"
)

const (
	defaultModel            = openai.GPT4oMini
	rateLimiterBurst        = 5
	circuitThreshold        = 5
	circuitResetAfter       = time.Minute
	translatePromptTemplate = "Translate the following text to %s. Return only the translated text with no explanation.\n\n%s"
)

// ErrEmptyCompletion indicates the model returned no choices.
var ErrEmptyCompletion = errors.New("empty completion response")

// Config configures the OpenAI-backed client.
type Config struct {
	APIKey       string
	Model        string
	RateLimitRPS int
	Timeout      time.Duration
}

type openaiClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zerolog.Logger

	mu        sync.Mutex
	failures  int
	openUntil time.Time
}

// NewOpenAI builds the production client. An empty API key is allowed; every
// call then fails with ErrModelUnavailable and stages degrade.
func NewOpenAI(cfg Config, logger *zerolog.Logger) Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 1
	}

	return &openaiClient{
		client:  openai.NewClient(cfg.APIKey),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), rateLimiterBurst),
		logger:  logger,
	}
}

func (c *openaiClient) TranslateText(ctx context.Context, text, targetLanguage string) (string, error) {
	prompt := fmt.Sprintf(translatePromptTemplate, targetLanguage, text)

	content, err := c.complete(ctx, prompt, nil)
	if err != nil {
		return "", fmt.Errorf("translate text: %w", err)
	}

	return strings.TrimSpace(content), nil
}

func (c *openaiClient) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}

	content, err := c.complete(ctx, prompt, format)
	if err != nil {
		return "", fmt.Errorf("complete json: %w", err)
	}

	return content, nil
}

func (c *openaiClient) complete(ctx context.Context, prompt string, format *openai.ChatCompletionResponseFormat) (string, error) {
	if err := c.checkCircuit(); err != nil {
		return "", err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)

		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: format,
	})
	if err != nil {
		c.recordFailure()

		return "", fmt.Errorf("%w: chat completion: %w", errs.ErrModelUnavailable, err)
	}

	c.recordSuccess()

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *openaiClient) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.openUntil) {
		return fmt.Errorf("%w until %v", errs.ErrCircuitOpen, c.openUntil)
	}

	return nil
}

func (c *openaiClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures = 0
}

func (c *openaiClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures++
	if c.failures >= circuitThreshold {
		c.openUntil = time.Now().Add(circuitResetAfter)
		c.logger.Warn().
			Int("consecutive_failures", c.failures).
			Time("open_until", c.openUntil).
			Msg("llm circuit breaker opened")
	}
}
