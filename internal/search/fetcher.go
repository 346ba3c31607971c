package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog"

	"github.com/quotelens/quotelens/internal/core/textnorm"
)

const (
	fetcherDefaultTimeout = 12 * time.Second
	fetcherMinHTMLSize    = 500
	fetcherMaxBodySize    = 5 << 20

	fetcherUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	// ErrPageInvalid marks pages that fail validation: bad status, non-HTML
	// content, or a body too small to contain a transcript.
	ErrPageInvalid = errors.New("page failed validation")

	errPageEmpty = errors.New("no readable text extracted")
)

// Page is a fetched candidate page reduced to readable text and the
// sentences the matcher scores.
type Page struct {
	URL       string
	Title     string
	Text      string
	Sentences []string
}

// Fetcher downloads candidate pages and extracts their readable content.
type Fetcher struct {
	httpClient  *http.Client
	minHTMLSize int
	logger      *zerolog.Logger
}

// FetcherConfig holds page download limits.
type FetcherConfig struct {
	Timeout     time.Duration
	MinHTMLSize int
}

func NewFetcher(cfg FetcherConfig, logger *zerolog.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = fetcherDefaultTimeout
	}

	if cfg.MinHTMLSize <= 0 {
		cfg.MinHTMLSize = fetcherMinHTMLSize
	}

	return &Fetcher{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		minHTMLSize: cfg.MinHTMLSize,
		logger:      logger,
	}
}

// Fetch validates and downloads one page. Validation failures return
// ErrPageInvalid so callers can skip the candidate without treating it as a
// provider outage.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: bad url %q", ErrPageInvalid, pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create page request: %w", err)
	}

	req.Header.Set("User-Agent", fetcherUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrPageInvalid, resp.StatusCode)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml+xml") {
		return nil, fmt.Errorf("%w: content type %q", ErrPageInvalid, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetcherMaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read page body: %w", err)
	}

	if len(bytes.TrimSpace(body)) <= f.minHTMLSize {
		return nil, fmt.Errorf("%w: body too small (%d bytes)", ErrPageInvalid, len(body))
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return nil, fmt.Errorf("extract readable content: %w", err)
	}

	text := textnorm.Normalize(article.TextContent)
	if text == "" {
		return nil, fmt.Errorf("%w: %s", errPageEmpty, pageURL)
	}

	return &Page{
		URL:       pageURL,
		Title:     article.Title,
		Text:      text,
		Sentences: textnorm.SplitSnippetSentences(text, textnorm.ContainsKorean(text)),
	}, nil
}

// FetchAll hydrates candidates with page sentences, dropping candidates
// whose pages fail validation or extraction.
func (f *Fetcher) FetchAll(ctx context.Context, candidates []Candidate) []Candidate {
	hydrated := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}

		page, err := f.Fetch(ctx, c.URL)
		if err != nil {
			f.logger.Debug().Err(err).Str("url", c.URL).Msg("dropping candidate page")
			continue
		}

		c.Sentences = page.Sentences
		if c.Title == "" {
			c.Title = page.Title
		}

		hydrated = append(hydrated, c)
	}

	return hydrated
}
