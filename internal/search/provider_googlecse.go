package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/quotelens/quotelens/internal/core/textnorm"
)

const (
	googleCSEEndpoint       = "https://www.googleapis.com/customsearch/v1"
	googleCSEDefaultTimeout = 12 * time.Second
	googleCSEMaxPerRequest  = 10
	googleCSEMaxStart       = 91
	googleCSEBackoffBase    = 1.4
	googleCSEMaxJitter      = 250 * time.Millisecond
)

var errGoogleCSEStatus = errors.New("google cse unexpected status")

// defaultSourceDomains restricts CSE lookups to sites that publish primary
// transcripts and full remarks.
var defaultSourceDomains = []string{
	"whitehouse.gov",
	"congress.gov",
	"rollcall.com",
	"millercenter.org",
	"un.org",
	"factba.se",
	"foxnews.com",
	"c-span.org",
	"abcnews.go.com",
	"nbcnews.com",
	"cnn.com",
}

// GoogleCSEProvider implements Provider on the Custom Search JSON API.
// Queries fan out across the whitelisted domains with site: filters; locale
// parameters follow the query's script.
type GoogleCSEProvider struct {
	endpoint   string
	apiKey     string
	cx         string
	domains    []string
	retries    int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// GoogleCSEConfig holds configuration for the CSE provider.
type GoogleCSEConfig struct {
	APIKey       string
	CX           string
	Domains      []string
	Retries      int
	RateLimitRPS float64
	Timeout      time.Duration
}

func NewGoogleCSEProvider(cfg GoogleCSEConfig) *GoogleCSEProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = googleCSEDefaultTimeout
	}

	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}

	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 5
	}

	domains := cfg.Domains
	if len(domains) == 0 {
		domains = defaultSourceDomains
	}

	return &GoogleCSEProvider{
		endpoint:   googleCSEEndpoint,
		apiKey:     cfg.APIKey,
		cx:         cfg.CX,
		domains:    domains,
		retries:    cfg.Retries,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1),
	}
}

func (p *GoogleCSEProvider) Name() ProviderName { return ProviderGoogleCSE }

func (p *GoogleCSEProvider) Priority() int { return PriorityPrimary }

func (p *GoogleCSEProvider) IsAvailable() bool { return p.apiKey != "" && p.cx != "" }

// Search collects up to maxResults candidates per whitelisted domain,
// paginating within the API's start limit. Duplicate URLs across domains
// are dropped.
func (p *GoogleCSEProvider) Search(ctx context.Context, query string, maxResults int) ([]Candidate, error) {
	if maxResults <= 0 {
		maxResults = googleCSEMaxPerRequest
	}

	locale := localeFor(query)

	candidates := make([]Candidate, 0, maxResults*len(p.domains))
	seen := make(map[string]struct{})

	for _, domain := range p.domains {
		subQuery := query + " site:" + domain
		remaining := maxResults
		start := 1

		for remaining > 0 && start <= googleCSEMaxStart {
			perReq := remaining
			if perReq > googleCSEMaxPerRequest {
				perReq = googleCSEMaxPerRequest
			}

			items, err := p.request(ctx, subQuery, perReq, start, locale)
			if err != nil {
				return nil, err
			}

			if len(items) == 0 {
				break
			}

			added := 0

			for _, it := range items {
				link := it.Link
				if link == "" {
					link = it.FormattedURL
				}

				if link == "" {
					continue
				}

				if _, dup := seen[link]; dup {
					continue
				}

				seen[link] = struct{}{}

				candidates = append(candidates, Candidate{
					URL:     link,
					Title:   it.Title,
					Snippet: it.Snippet,
					Source:  domain,
				})

				added++

				remaining--
				if remaining == 0 {
					break
				}
			}

			// A page of nothing but duplicates means the index is repeating
			// itself; stop paginating this domain.
			if added == 0 {
				break
			}

			start += perReq
		}
	}

	return candidates, nil
}

type googleCSEItem struct {
	Link         string `json:"link"`
	Title        string `json:"title"`
	Snippet      string `json:"snippet"`
	FormattedURL string `json:"formattedUrl"` //nolint:tagliatelle // CSE API uses camelCase
}

type googleCSEResponse struct {
	Items []googleCSEItem `json:"items"`
}

// request performs one CSE call with retries on throttling and server
// errors, exponential backoff with jitter between attempts.
func (p *GoogleCSEProvider) request(ctx context.Context, query string, num, start int, loc locale) ([]googleCSEItem, error) {
	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("cx", p.cx)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(clamp(num, 1, googleCSEMaxPerRequest)))
	params.Set("start", strconv.Itoa(clamp(start, 1, googleCSEMaxStart)))
	params.Set("hl", loc.hl)
	params.Set("gl", loc.gl)

	if loc.lr != "" {
		params.Set("lr", loc.lr)
	}

	reqURL := p.endpoint + "?" + params.Encode()

	var lastErr error

	for attempt := 0; attempt < p.retries; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		items, retryable, err := p.attempt(ctx, reqURL)
		if err == nil {
			return items, nil
		}

		lastErr = err

		if !retryable {
			return nil, err
		}
	}

	return nil, lastErr
}

func (p *GoogleCSEProvider) attempt(ctx context.Context, reqURL string) (items []googleCSEItem, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create cse request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("cse request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, retryableStatus(resp.StatusCode), fmt.Errorf("%w: %d", errGoogleCSEStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read cse response: %w", err)
	}

	var parsed googleCSEResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, false, fmt.Errorf("parse cse response: %w", err)
	}

	return parsed.Items, false, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func sleepBackoff(ctx context.Context, attempt int) error {
	delay := time.Duration(float64(time.Second) * pow(googleCSEBackoffBase, attempt-1))
	delay += time.Duration(rand.Int63n(int64(googleCSEMaxJitter)))

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func pow(base float64, exp int) float64 {
	out := 1.0
	for i := 0; i < exp; i++ {
		out *= base
	}

	return out
}

type locale struct {
	hl string
	gl string
	lr string
}

// localeFor picks interface language, geolocation, and language restriction
// from the query's script.
func localeFor(query string) locale {
	if textnorm.ContainsKorean(query) {
		return locale{hl: "ko", gl: "kr", lr: "lang_ko"}
	}

	return locale{hl: "en", gl: "us"}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
