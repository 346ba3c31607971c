package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	wikidataEndpoint = "https://www.wikidata.org/w/api.php"
	wikidataTimeout  = 10 * time.Second
)

var (
	errWikidataStatus = errors.New("wikidata unexpected status")
	// ErrNameNotFound indicates the name has no Wikidata entry.
	ErrNameNotFound = errors.New("name not found in wikidata")
)

// NameResolver resolves a person name written in Korean to its canonical
// English label. Wikidata beats machine translation for proper nouns:
// "트럼프" resolves to "Donald Trump" rather than a transliteration.
type NameResolver struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	fallback   Translator
	logger     *zerolog.Logger
}

// NameResolverConfig configures the Wikidata resolver.
type NameResolverConfig struct {
	RateLimitRPS float64
}

// NewNameResolver builds a resolver that falls back to the given translator
// when Wikidata has no match or is unreachable.
func NewNameResolver(cfg NameResolverConfig, fallback Translator, logger *zerolog.Logger) *NameResolver {
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 1
	}

	return &NameResolver{
		endpoint:   wikidataEndpoint,
		httpClient: &http.Client{Timeout: wikidataTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1),
		fallback:   fallback,
		logger:     logger,
	}
}

type wikidataSearchResponse struct {
	Search []struct {
		Label string `json:"label"`
		Match struct {
			Language string `json:"language"`
		} `json:"match"`
	} `json:"search"`
}

// ResolveEnglishName looks the Korean name up on Wikidata and returns the
// entity's English label. On any failure it defers to the fallback
// translator so query building always gets some English form.
func (r *NameResolver) ResolveEnglishName(ctx context.Context, koreanName string) (string, error) {
	label, err := r.search(ctx, koreanName)
	if err == nil {
		return label, nil
	}

	r.logger.Debug().Err(err).Str("name", koreanName).Msg("wikidata lookup failed, falling back to translation")

	if r.fallback == nil {
		return "", err
	}

	return r.fallback.TranslateToEnglish(ctx, koreanName)
}

func (r *NameResolver) search(ctx context.Context, name string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", name)
	params.Set("language", "ko")
	params.Set("uselang", "en")
	params.Set("type", "item")
	params.Set("limit", "1")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create wikidata request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("wikidata request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", errWikidataStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read wikidata response: %w", err)
	}

	var parsed wikidataSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse wikidata response: %w", err)
	}

	if len(parsed.Search) == 0 || parsed.Search[0].Label == "" {
		return "", fmt.Errorf("%w: %s", ErrNameNotFound, name)
	}

	return parsed.Search[0].Label, nil
}
