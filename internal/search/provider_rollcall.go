package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	rollcallDefaultBaseURL = "https://rollcall.com"
	rollcallSearchPath     = "/wp-json/factbase/v1/search"
	rollcallDefaultTimeout = 10 * time.Second
)

var errRollcallStatus = errors.New("rollcall unexpected status")

// RollcallProvider searches the Rollcall/Factba.se transcript archive
// through its public JSON endpoint. Only transcript pages are returned,
// newest first.
type RollcallProvider struct {
	baseURL    string
	enabled    bool
	httpClient *http.Client
	limiter    *rate.Limiter
}

// RollcallConfig holds configuration for the transcript archive provider.
type RollcallConfig struct {
	Enabled      bool
	BaseURL      string
	RateLimitRPS float64
	Timeout      time.Duration
}

func NewRollcallProvider(cfg RollcallConfig) *RollcallProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = rollcallDefaultBaseURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = rollcallDefaultTimeout
	}

	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 1
	}

	return &RollcallProvider{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1),
	}
}

func (p *RollcallProvider) Name() ProviderName { return ProviderRollcall }

func (p *RollcallProvider) Priority() int { return PriorityArchive }

func (p *RollcallProvider) IsAvailable() bool { return p.enabled }

func (p *RollcallProvider) Search(ctx context.Context, query string, maxResults int) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if maxResults <= 0 {
		maxResults = 5
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	// The archive expects plus-joined terms in q.
	params.Set("q", strings.ReplaceAll(query, " ", "+"))
	params.Set("media", "")
	params.Set("type", "")
	params.Set("sort", "date")
	params.Set("location", "all")
	params.Set("place", "all")
	params.Set("page", "1")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+rollcallSearchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create rollcall request: %w", err)
	}

	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rollcall request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", errRollcallStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rollcall response: %w", err)
	}

	return parseRollcallResponse(body, maxResults)
}

type rollcallItem struct {
	Permalink   string `json:"permalink"`
	Link        string `json:"link"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	PostDate    string `json:"post_date"`
	PostDateGMT string `json:"post_date_gmt"`
}

// parseRollcallResponse tolerates both a bare item array and an object
// wrapping the array under results or items.
func parseRollcallResponse(body []byte, maxResults int) ([]Candidate, error) {
	items, err := decodeRollcallItems(body)
	if err != nil {
		return nil, err
	}

	type dated struct {
		item rollcallItem
		url  string
		at   time.Time
	}

	ranked := make([]dated, 0, len(items))

	for _, it := range items {
		u := firstNonEmpty(it.Permalink, it.Link, it.URL)
		if u == "" {
			continue
		}

		// Non-transcript archive pages are not usable as quote sources.
		if !strings.Contains(u, "transcript") {
			continue
		}

		ranked = append(ranked, dated{item: it, url: u, at: parseRollcallDate(it)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].at.After(ranked[j].at)
	})

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	candidates := make([]Candidate, len(ranked))
	for i, d := range ranked {
		candidates[i] = Candidate{
			URL:         d.url,
			Title:       d.item.Title,
			Source:      "rollcall.com",
			PublishedAt: d.at,
		}
	}

	return candidates, nil
}

func decodeRollcallItems(body []byte) ([]rollcallItem, error) {
	var asList []rollcallItem
	if err := json.Unmarshal(body, &asList); err == nil {
		return asList, nil
	}

	var wrapped struct {
		Results []rollcallItem `json:"results"`
		Items   []rollcallItem `json:"items"`
	}

	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("parse rollcall response: %w", err)
	}

	if len(wrapped.Results) > 0 {
		return wrapped.Results, nil
	}

	return wrapped.Items, nil
}

// parseRollcallDate handles 'YYYY-MM-DD HH:MM:SS' and ISO variants; items
// without a parseable date sort last.
func parseRollcallDate(it rollcallItem) time.Time {
	raw := firstNonEmpty(it.Date, it.PostDate, it.PostDateGMT)
	if raw == "" {
		return time.Time{}
	}

	raw = strings.ReplaceAll(strings.TrimSpace(raw), "T", " ")
	if len(raw) > 19 {
		raw = raw[:19]
	}

	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}

	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}

	return ""
}
