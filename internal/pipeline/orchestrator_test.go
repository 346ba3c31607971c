package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotelens/quotelens/internal/core/entities"
	"github.com/quotelens/quotelens/internal/core/errs"
	"github.com/quotelens/quotelens/internal/core/translate"
	"github.com/quotelens/quotelens/internal/platform/config"
	"github.com/quotelens/quotelens/internal/search"
)

const (
	articleText = `트럼프 대통령은 백악관에서 "베네수엘라 상공을 전면 폐쇄하겠다"고 발표했다.`
	quoteEn     = "we will close the airspace over venezuela completely"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func testConfig() *config.Config {
	return &config.Config{
		QuoteMinLength:       6,
		KeywordTopN:          15,
		KeywordAlpha:         0.7,
		KeywordBeta:          0.3,
		QueryTopK:            3,
		QueryMaxLength:       150,
		MatchMinScore:        0.55,
		MatchSpanBefore:      1,
		MatchSpanAfter:       1,
		MatchMaxSnippets:     20,
		SearchTimeout:        5 * time.Second,
		SearchMaxResults:     5,
		PageFetchEnabled:     true,
		PageFetchMinHTMLSize: 100,
	}
}

type stubExtractor struct {
	ents []entities.Entity
	err  error
}

func (s *stubExtractor) Extract(context.Context, string) ([]entities.Entity, error) {
	return s.ents, s.err
}

// markerEncoder puts texts carrying the marker phrase on one axis and
// everything else on another, so quote/span similarity is predictable.
type markerEncoder struct {
	marker string
	err    error
}

func (e *markerEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}

	if strings.Contains(strings.ToLower(text), e.marker) {
		return []float32{1, 0}, nil
	}

	return []float32{0, 1}, nil
}

func (e *markerEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	for i, t := range texts {
		v, err := e.Encode(ctx, t)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

type stubResolver struct {
	table map[string]string
}

func (s *stubResolver) ResolveEnglishName(_ context.Context, name string) (string, error) {
	if out, ok := s.table[name]; ok {
		return out, nil
	}

	return "", translate.ErrNameNotFound
}

func testDeps(encErr error) Deps {
	return Deps{
		Extractor: &stubExtractor{ents: []entities.Entity{
			{Text: "트럼프", Type: entities.TypePerson},
			{Text: "베네수엘라", Type: entities.TypeLocation},
		}},
		Encoder: &markerEncoder{marker: "close the airspace", err: encErr},
		Translator: &translate.MockTranslator{Table: map[string]string{
			`베네수엘라 상공을 전면 폐쇄하겠다`: quoteEn,
			"베네수엘라":              "Venezuela",
		}},
		Resolver: &stubResolver{table: map[string]string{"트럼프": "Donald Trump"}},
	}
}

type stubProvider struct {
	name    search.ProviderName
	results []search.Candidate
	err     error
}

func (p *stubProvider) Name() search.ProviderName { return p.name }
func (p *stubProvider) Priority() int             { return search.PriorityPrimary }
func (p *stubProvider) IsAvailable() bool         { return true }

func (p *stubProvider) Search(context.Context, string, int) ([]search.Candidate, error) {
	return p.results, p.err
}

func newOrchestrator(deps Deps, provider search.Provider, cfg *config.Config) *Orchestrator {
	registry := search.NewRegistry()
	if provider != nil {
		registry.Register(provider, search.DefaultBreakerConfig())
	}

	fetcher := search.NewFetcher(search.FetcherConfig{MinHTMLSize: cfg.PageFetchMinHTMLSize}, testLogger())

	return NewOrchestrator(cfg, NewModelRegistryFromDeps(deps), registry, fetcher, testLogger())
}

func stageStatus(stages []StageOutcome, name string) string {
	for _, s := range stages {
		if s.Stage == name {
			return s.Status
		}
	}

	return ""
}

func TestAnalyze_EmptyTextIsTerminal(t *testing.T) {
	o := newOrchestrator(testDeps(nil), nil, testConfig())

	_, err := o.Analyze(context.Background(), Request{Text: "   "})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestAnalyze_NoQuotesYieldsEmptyResult(t *testing.T) {
	o := newOrchestrator(testDeps(nil), nil, testConfig())

	res, err := o.Analyze(context.Background(), Request{Text: "인용문이 전혀 없는 평범한 기사 본문이다."})
	require.NoError(t, err)

	assert.Empty(t, res.Quotes)
	assert.Empty(t, res.Analyses)
}

func TestAnalyze_WithoutSearchSkipsSearchStages(t *testing.T) {
	o := newOrchestrator(testDeps(nil), nil, testConfig())

	res, err := o.Analyze(context.Background(), Request{Text: articleText})
	require.NoError(t, err)
	require.Len(t, res.Analyses, 1)

	analysis := res.Analyses[0]

	assert.Equal(t, `베네수엘라 상공을 전면 폐쇄하겠다`, analysis.Quote.Text)
	assert.True(t, analysis.IsTrumpContext)
	assert.NotEmpty(t, analysis.Keywords)
	assert.NotEmpty(t, analysis.Queries.Korean)
	assert.Contains(t, analysis.Queries.English, "Donald Trump")

	assert.Equal(t, StatusSkipped, stageStatus(analysis.Stages, StageSearch))
	assert.Equal(t, StatusSkipped, stageStatus(analysis.Stages, StageMatch))
	assert.Nil(t, analysis.BestMatch)
}

func TestAnalyze_SearchFailureDegradesNotFails(t *testing.T) {
	provider := &stubProvider{name: "primary", err: errors.New("provider down")}

	o := newOrchestrator(testDeps(nil), provider, testConfig())

	res, err := o.Analyze(context.Background(), Request{Text: articleText, Search: true})
	require.NoError(t, err)
	require.Len(t, res.Analyses, 1)

	analysis := res.Analyses[0]

	// Queries survive a dead search provider.
	assert.NotEmpty(t, analysis.Queries.Korean)
	assert.Equal(t, StatusFailed, stageStatus(analysis.Stages, StageSearch))
	assert.Equal(t, StatusSkipped, stageStatus(analysis.Stages, StageMatch))
	assert.Nil(t, analysis.BestMatch)
}

func TestAnalyze_FullFlowFindsBestMatch(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>Remarks</title></head><body><article>` +
		`<p>We will close the airspace over Venezuela completely, effective immediately today.</p>` +
		strings.Repeat("<p>We are going to keep monitoring the situation together with our allies.</p>", 3) +
		strings.Repeat("<p>Thank you everybody for being here on this wonderful day in Washington.</p>", 3) +
		`</article></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	provider := &stubProvider{
		name:    search.ProviderGoogleCSE,
		results: []search.Candidate{{URL: srv.URL + "/remarks", Source: "whitehouse.gov"}},
	}

	o := newOrchestrator(testDeps(nil), provider, testConfig())

	res, err := o.Analyze(context.Background(), Request{Text: articleText, Search: true})
	require.NoError(t, err)
	require.Len(t, res.Analyses, 1)

	analysis := res.Analyses[0]

	require.NotNil(t, analysis.BestMatch, "stages: %+v", analysis.Stages)
	assert.Equal(t, srv.URL+"/remarks", analysis.BestMatch.URL)
	assert.Contains(t, strings.ToLower(analysis.BestMatch.BestSentence), "close the airspace")
	assert.Greater(t, analysis.BestMatch.BestScore, 0.55)

	assert.Equal(t, StatusOK, stageStatus(analysis.Stages, StageSearch))
	assert.Equal(t, StatusOK, stageStatus(analysis.Stages, StageMatch))
}

func TestAnalyze_ExplicitQuoteSkipsExtraction(t *testing.T) {
	o := newOrchestrator(testDeps(nil), nil, testConfig())

	res, err := o.Analyze(context.Background(), Request{
		Text:  articleText,
		Quote: "베네수엘라 상공을 전면 폐쇄하겠다",
	})
	require.NoError(t, err)
	require.Len(t, res.Analyses, 1)

	assert.Equal(t, 1, res.Analyses[0].Quote.ID)
}

func TestAnalyze_ExplicitQuoteIsNormalized(t *testing.T) {
	o := newOrchestrator(testDeps(nil), nil, testConfig())

	res, err := o.Analyze(context.Background(), Request{
		Text:  articleText,
		Quote: "  베네수엘라   상공을\n전면 폐쇄하겠다 ",
	})
	require.NoError(t, err)
	require.Len(t, res.Analyses, 1)

	assert.Equal(t, "베네수엘라 상공을 전면 폐쇄하겠다", res.Analyses[0].Quote.Text)
}

func TestAnalyze_RollcallQueryBuiltForTrumpContextWithDate(t *testing.T) {
	o := newOrchestrator(testDeps(nil), nil, testConfig())

	res, err := o.Analyze(context.Background(), Request{Text: articleText, Date: "2025-08-14"})
	require.NoError(t, err)
	require.Len(t, res.Analyses, 1)

	rc := res.Analyses[0].RollcallQuery
	require.NotNil(t, rc)

	assert.Contains(t, rc.English, "Donald Trump")
	assert.Contains(t, rc.English, "August 14 2025")
}

func TestDetectTrumpContext(t *testing.T) {
	assert.True(t, detectTrumpContext("트럼프 대통령 발표", "", nil))
	assert.True(t, detectTrumpContext("", "President Trump said so", nil))
	assert.True(t, detectTrumpContext("백악관 브리핑에서 나온 말이다", "", nil))
	assert.True(t, detectTrumpContext("", "", map[entities.Type][]string{
		entities.TypePerson: {"도널드 트럼프"},
	}))
	assert.False(t, detectTrumpContext("대통령이 국회에서 연설했다", "아무 관련 없는 인용", map[entities.Type][]string{
		entities.TypePerson: {"김철수"},
	}))
}
