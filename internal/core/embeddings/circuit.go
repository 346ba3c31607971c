package embeddings

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quotelens/quotelens/internal/core/errs"
)

// breaker trips after a run of consecutive failures and blocks calls to its
// provider until the reset window passes.
type breaker struct {
	threshold  int
	resetAfter time.Duration
	logger     *zerolog.Logger

	mu        sync.Mutex
	failures  int
	openUntil time.Time
}

func newBreaker(cfg BreakerConfig, logger *zerolog.Logger) *breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultBreakerConfig().Threshold
	}

	if cfg.ResetAfter <= 0 {
		cfg.ResetAfter = DefaultBreakerConfig().ResetAfter
	}

	return &breaker{threshold: cfg.Threshold, resetAfter: cfg.ResetAfter, logger: logger}
}

func (b *breaker) canAttempt() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return time.Now().After(b.openUntil)
}

func (b *breaker) check() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if time.Now().Before(b.openUntil) {
		return fmt.Errorf("%w until %v", errs.ErrCircuitOpen, b.openUntil)
	}

	return nil
}

func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
}

func (b *breaker) recordFailure(name ProviderName) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++

	if b.failures >= b.threshold {
		b.openUntil = time.Now().Add(b.resetAfter)

		if b.logger != nil {
			b.logger.Warn().
				Str("provider", string(name)).
				Int("consecutive_failures", b.failures).
				Time("open_until", b.openUntil).
				Msg("embedding circuit breaker opened")
		}
	}
}
