// Package pipeline runs the quote-to-source flow: extract quotes, rank
// keywords, build queries, search candidate pages, and score spans against
// the quote. Stages degrade independently; a failed model or provider marks
// its stage and leaves the rest of the result usable.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quotelens/quotelens/internal/core/entities"
	"github.com/quotelens/quotelens/internal/core/errs"
	"github.com/quotelens/quotelens/internal/core/keywords"
	"github.com/quotelens/quotelens/internal/core/match"
	"github.com/quotelens/quotelens/internal/core/quotes"
	"github.com/quotelens/quotelens/internal/core/queries"
	"github.com/quotelens/quotelens/internal/core/textnorm"
	"github.com/quotelens/quotelens/internal/platform/config"
	"github.com/quotelens/quotelens/internal/search"
)

// Stage names as they appear in results and metrics.
const (
	StageQuoteExtraction = "quote_extraction"
	StageKeywordRanking  = "keyword_ranking"
	StageQueryBuilding   = "query_building"
	StageSearch          = "search"
	StageMatch           = "match"
)

// Stage statuses.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
)

// StageOutcome records how one stage of a quote analysis went.
type StageOutcome struct {
	Stage  string `json:"stage"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Request is one analysis invocation. When Quote is set only that quote is
// analyzed; otherwise quotes are extracted from the text.
type Request struct {
	Headline string
	Text     string
	Quote    string
	Date     string

	TopN       int
	TopK       int
	Rollcall   bool
	Search     bool
	MaxResults int
}

// QuoteResult is the full analysis of a single quote.
type QuoteResult struct {
	Quote          quotes.Quote               `json:"quote"`
	Entities       []entities.Entity          `json:"entities"`
	EntitiesByType map[entities.Type][]string `json:"entities_by_type"`
	Keywords       []keywords.Candidate       `json:"keywords"`
	Queries        queries.Output             `json:"queries"`
	RollcallQuery  *queries.Output            `json:"rollcall_query,omitempty"`
	IsTrumpContext bool                       `json:"is_trump_context"`
	SearchItems    []search.Candidate         `json:"search_items,omitempty"`
	BestMatch      *match.BestMatch           `json:"best_match,omitempty"`
	MatchQuote     string                     `json:"-"`
	Stages         []StageOutcome             `json:"stages"`
}

// Result is the analysis of a whole article.
type Result struct {
	Quotes   []quotes.Quote `json:"quotes"`
	Analyses []QuoteResult  `json:"analyses"`
}

// Orchestrator wires the core stages together. It is stateless across
// invocations; all shared state lives in the model registry and the search
// registry.
type Orchestrator struct {
	cfg      *config.Config
	models   *ModelRegistry
	searches *search.Registry
	fetcher  *search.Fetcher
	logger   *zerolog.Logger
}

func NewOrchestrator(cfg *config.Config, models *ModelRegistry, searches *search.Registry, fetcher *search.Fetcher, logger *zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		models:   models,
		searches: searches,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// Analyze runs the pipeline over an article. The only terminal error is
// input with no analyzable text.
func (o *Orchestrator) Analyze(ctx context.Context, req Request) (*Result, error) {
	text := textnorm.Normalize(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty article text", errs.ErrInvalidInput)
	}

	req.Text = text

	extracted := o.extractQuotes(req)
	if len(extracted) == 0 {
		// Nothing quotable; still a valid, empty result.
		return &Result{Quotes: []quotes.Quote{}, Analyses: []QuoteResult{}}, nil
	}

	res := &Result{Quotes: extracted, Analyses: make([]QuoteResult, 0, len(extracted))}

	for _, q := range extracted {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		analysis := o.analyzeQuote(ctx, req, q)
		res.Analyses = append(res.Analyses, analysis)
	}

	analyzesTotal.Inc()

	return res, nil
}

func (o *Orchestrator) extractQuotes(req Request) []quotes.Quote {
	if req.Quote != "" {
		return []quotes.Quote{{ID: 1, Text: textnorm.Normalize(req.Quote), Section: quotes.SectionBody}}
	}

	return quotes.Extract(req.Headline, req.Text, o.cfg.QuoteMinLength)
}

func (o *Orchestrator) analyzeQuote(ctx context.Context, req Request, q quotes.Quote) QuoteResult {
	deps := o.models.Deps()

	out := QuoteResult{Quote: q}
	out.record(StageQuoteExtraction, StatusOK, "")

	// Keyword and entity ranking.
	ranker := keywords.NewRanker(deps.Extractor, deps.Encoder, keywords.Config{
		Alpha: o.cfg.KeywordAlpha,
		Beta:  o.cfg.KeywordBeta,
	}, o.logger)

	topN := req.TopN
	if topN <= 0 {
		topN = o.cfg.KeywordTopN
	}

	rank, err := ranker.Rank(ctx, req.Text, q.Text, topN)
	if err != nil {
		out.record(StageKeywordRanking, StatusFailed, err.Error())
		return out
	}

	out.Entities = rank.Entities
	out.EntitiesByType = rank.EntitiesByType
	out.Keywords = rank.Candidates
	out.record(StageKeywordRanking, rankStatus(rank), joinWarnings(rank.Warnings))

	out.IsTrumpContext = detectTrumpContext(req.Text, q.Text, rank.EntitiesByType)

	// Query building.
	builder := queries.NewBuilder(deps.Translator, deps.Resolver, o.logger)

	in := queries.Input{
		EntitiesByType: rank.EntitiesByType,
		Keywords:       keywordTerms(rank.Candidates),
		Quote:          q.Text,
		Date:           req.Date,
		TopK:           req.TopK,
		MaxLength:      o.cfg.QueryMaxLength,
	}

	if in.TopK <= 0 {
		in.TopK = o.cfg.QueryTopK
	}

	out.Queries = builder.Build(ctx, in)

	if (req.Rollcall || out.IsTrumpContext) && req.Date != "" {
		rc := builder.BuildRollcall(ctx, in)
		out.RollcallQuery = &rc
	}

	status := StatusOK
	if len(out.Queries.Warnings) > 0 {
		status = StatusDegraded
	}

	out.record(StageQueryBuilding, status, joinWarnings(out.Queries.Warnings))

	if !req.Search {
		out.record(StageSearch, StatusSkipped, "search not requested")
		out.record(StageMatch, StatusSkipped, "search not requested")

		return out
	}

	o.runSearchAndMatch(ctx, req, q, &out, deps)

	return out
}

func (o *Orchestrator) runSearchAndMatch(ctx context.Context, req Request, q quotes.Quote, out *QuoteResult, deps Deps) {
	query := out.Queries.English
	if out.RollcallQuery != nil && out.RollcallQuery.English != "" {
		query = out.RollcallQuery.English
	}

	if query == "" {
		query = out.Queries.Korean
	}

	if query == "" {
		out.record(StageSearch, StatusFailed, "no usable query")
		out.record(StageMatch, StatusSkipped, "no search results")

		return
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = o.cfg.SearchMaxResults
	}

	searchCtx, cancel := context.WithTimeout(ctx, o.cfg.SearchTimeout)
	defer cancel()

	items, err := o.search(searchCtx, query, maxResults, out.IsTrumpContext && (req.Rollcall || out.RollcallQuery != nil))
	if err != nil {
		if errors.Is(err, errs.ErrNoResults) {
			out.record(StageSearch, StatusDegraded, "no candidates found")
		} else {
			out.record(StageSearch, StatusFailed, err.Error())
		}

		out.record(StageMatch, StatusSkipped, "no search results")

		return
	}

	hydrated := items
	if o.cfg.PageFetchEnabled {
		hydrated = o.fetcher.FetchAll(searchCtx, items)
	} else {
		for i := range hydrated {
			snippet := hydrated[i].Snippet
			hydrated[i].Sentences = textnorm.SplitSnippetSentences(snippet, textnorm.ContainsKorean(snippet))
		}
	}

	if len(hydrated) > o.cfg.MatchMaxSnippets {
		hydrated = hydrated[:o.cfg.MatchMaxSnippets]
	}

	out.SearchItems = hydrated
	out.record(StageSearch, StatusOK, "")

	if len(hydrated) == 0 {
		out.record(StageMatch, StatusSkipped, "no fetchable pages")
		return
	}

	// Candidate pages are mostly English; match against a translated quote,
	// falling back to the English query, then the raw quote.
	matchQuote := q.Text
	if en, terr := deps.Translator.TranslateToEnglish(ctx, q.Text); terr == nil && en != "" {
		matchQuote = en
	} else if out.Queries.English != "" {
		matchQuote = out.Queries.English
	}

	out.MatchQuote = matchQuote

	scorer := match.NewScorer(deps.Encoder, match.Config{
		MinScore:   o.cfg.MatchMinScore,
		SpanBefore: o.cfg.MatchSpanBefore,
		SpanAfter:  o.cfg.MatchSpanAfter,
	}, o.logger)

	best, err := scorer.Best(ctx, matchQuote, matchSources(hydrated))
	if err != nil {
		out.record(StageMatch, StatusFailed, err.Error())
		return
	}

	if best == nil {
		out.record(StageMatch, StatusDegraded, "no span above threshold")
		return
	}

	out.BestMatch = best
	out.record(StageMatch, StatusOK, "")
}

// search routes to the transcript archive first in Trump context, falling
// back to the general providers when the archive has nothing.
func (o *Orchestrator) search(ctx context.Context, query string, maxResults int, archiveFirst bool) ([]search.Candidate, error) {
	if archiveFirst {
		items, err := o.searches.SearchNamed(ctx, search.ProviderRollcall, query, maxResults)
		if err == nil && len(items) > 0 {
			return items, nil
		}

		if err != nil {
			o.logger.Warn().Err(err).Msg("transcript archive search failed, falling back")
		}
	}

	items, provider, err := o.searches.SearchWithFallback(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrSearchUnavailable, err)
	}

	o.logger.Debug().Str("provider", string(provider)).Int("count", len(items)).Msg("search complete")

	if len(items) == 0 {
		return nil, errs.ErrNoResults
	}

	return items, nil
}

func (r *QuoteResult) record(stage, status, reason string) {
	r.Stages = append(r.Stages, StageOutcome{Stage: stage, Status: status, Reason: reason})
	stageOutcomesTotal.WithLabelValues(stage, status).Inc()
}

func rankStatus(rank keywords.Result) string {
	if len(rank.Warnings) > 0 {
		return StatusDegraded
	}

	return StatusOK
}

func joinWarnings(warnings []string) string {
	switch len(warnings) {
	case 0:
		return ""
	case 1:
		return warnings[0]
	default:
		out := warnings[0]
		for _, w := range warnings[1:] {
			out += "; " + w
		}

		return out
	}
}

func keywordTerms(candidates []keywords.Candidate) []string {
	terms := make([]string, len(candidates))
	for i, c := range candidates {
		terms[i] = c.Term
	}

	return terms
}

func matchSources(items []search.Candidate) []match.Source {
	sources := make([]match.Source, 0, len(items))

	for _, it := range items {
		if len(it.Sentences) == 0 {
			continue
		}

		sources = append(sources, match.Source{URL: it.URL, Sentences: it.Sentences})
	}

	return sources
}
