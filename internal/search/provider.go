// Package search finds candidate source pages for a query. Providers sit
// behind a registry with per-provider circuit breakers; lookups walk
// providers in priority order and fall back on failure.
package search

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type ProviderName string

const (
	ProviderGoogleCSE ProviderName = "google_cse"
	ProviderRollcall  ProviderName = "rollcall"
)

// Priorities order fallback. The general web index outranks the transcript
// archive for default lookups; callers wanting the archive ask for it by
// name.
const (
	PriorityPrimary = 100
	PriorityArchive = 50
)

var (
	ErrNoProvidersAvailable = errors.New("no search providers available")
	ErrProviderNotFound     = errors.New("search provider not found")
)

// Candidate is one page a provider returned for a query. Sentences stays
// empty until the page fetcher fills it in.
type Candidate struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Sentences   []string  `json:"-"`
}

type Provider interface {
	Name() ProviderName
	Priority() int
	IsAvailable() bool
	Search(ctx context.Context, query string, maxResults int) ([]Candidate, error)
}

// BreakerConfig tunes the per-provider circuit breaker.
type BreakerConfig struct {
	Threshold  int
	ResetAfter time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{Threshold: 5, ResetAfter: time.Minute}
}

// Registry holds providers sorted by descending priority.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	breakers  map[ProviderName]*circuitBreaker
}

func NewRegistry() *Registry {
	return &Registry{breakers: make(map[ProviderName]*circuitBreaker)}
}

func (r *Registry) Register(p Provider, cfg BreakerConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = append(r.providers, p)
	sort.SliceStable(r.providers, func(i, j int) bool {
		return r.providers[i].Priority() > r.providers[j].Priority()
	})

	r.breakers[p.Name()] = newCircuitBreaker(cfg)
}

func (r *Registry) Get(name ProviderName) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.providers {
		if p.Name() == name {
			return p, nil
		}
	}

	return nil, ErrProviderNotFound
}

// SearchNamed queries one provider directly, still honoring its breaker.
func (r *Registry) SearchNamed(ctx context.Context, name ProviderName, query string, maxResults int) ([]Candidate, error) {
	p, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	if !p.IsAvailable() {
		return nil, ErrNoProvidersAvailable
	}

	cb := r.getBreaker(name)
	if !cb.canAttempt() {
		return nil, ErrNoProvidersAvailable
	}

	start := time.Now()

	results, err := p.Search(ctx, query, maxResults)
	observeSearch(string(name), time.Since(start), err == nil)

	if err != nil {
		cb.recordFailure()
		return nil, err
	}

	cb.recordSuccess()

	return results, nil
}

// SearchWithFallback walks providers in priority order and returns the
// first successful non-empty result set along with the provider that
// produced it.
func (r *Registry) SearchWithFallback(ctx context.Context, query string, maxResults int) ([]Candidate, ProviderName, error) {
	r.mu.RLock()
	providers := make([]Provider, len(r.providers))
	copy(providers, r.providers)
	r.mu.RUnlock()

	var lastErr error

	for _, p := range providers {
		if !p.IsAvailable() {
			continue
		}

		cb := r.getBreaker(p.Name())
		if !cb.canAttempt() {
			continue
		}

		start := time.Now()

		results, err := p.Search(ctx, query, maxResults)
		observeSearch(string(p.Name()), time.Since(start), err == nil)

		if err != nil {
			cb.recordFailure()

			lastErr = err

			continue
		}

		cb.recordSuccess()

		if len(results) == 0 {
			continue
		}

		return results, p.Name(), nil
	}

	if lastErr != nil {
		return nil, "", lastErr
	}

	return nil, "", ErrNoProvidersAvailable
}

func (r *Registry) AvailableProviders() []ProviderName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	available := make([]ProviderName, 0, len(r.providers))

	for _, p := range r.providers {
		if p.IsAvailable() && r.breakers[p.Name()].canAttempt() {
			available = append(available, p.Name())
		}
	}

	return available
}

func (r *Registry) getBreaker(name ProviderName) *circuitBreaker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.breakers[name]
}

type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

// halfOpenSuccesses closes a half-open breaker.
const halfOpenSuccesses = 2

type circuitBreaker struct {
	mu           sync.Mutex
	cfg          BreakerConfig
	failures     int
	lastFailure  time.Time
	state        circuitState
	successCount int
}

func newCircuitBreaker(cfg BreakerConfig) *circuitBreaker {
	if cfg.Threshold <= 0 {
		cfg = DefaultBreakerConfig()
	}

	return &circuitBreaker{cfg: cfg, state: circuitClosed}
}

func (cb *circuitBreaker) canAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case circuitClosed:
		return true
	case circuitOpen:
		if time.Since(cb.lastFailure) > cb.cfg.ResetAfter {
			cb.state = circuitHalfOpen
			cb.successCount = 0

			return true
		}

		return false
	case circuitHalfOpen:
		return true
	default:
		return false
	}
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0

	if cb.state == circuitHalfOpen {
		cb.successCount++
		if cb.successCount >= halfOpenSuccesses {
			cb.state = circuitClosed
		}
	}
}

func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = time.Now()

	if cb.failures >= cb.cfg.Threshold {
		cb.state = circuitOpen
	}
}
