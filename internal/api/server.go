// Package api exposes the analysis pipeline over HTTP for the browser
// extension and other clients.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/quotelens/quotelens/internal/core/entities"
	"github.com/quotelens/quotelens/internal/core/errs"
	"github.com/quotelens/quotelens/internal/core/keywords"
	"github.com/quotelens/quotelens/internal/core/queries"
	"github.com/quotelens/quotelens/internal/pipeline"
	"github.com/quotelens/quotelens/internal/platform/config"
	"github.com/quotelens/quotelens/internal/search"
)

const shutdownTimeout = 10 * time.Second

// Server hosts the analyze API.
type Server struct {
	echo         *echo.Echo
	orchestrator *pipeline.Orchestrator
	cfg          *config.Config
	logger       *zerolog.Logger
}

func NewServer(cfg *config.Config, orchestrator *pipeline.Orchestrator, logger *zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:         e,
		orchestrator: orchestrator,
		cfg:          cfg,
		logger:       logger,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(s.requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))

	e.GET("/api/health", s.handleHealth)
	e.POST("/api/analyze", s.handleAnalyze)

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		addr := fmt.Sprintf(":%d", s.cfg.HTTPPort)
		s.logger.Info().Str("addr", addr).Msg("api server listening")

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info().
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")

			return nil
		},
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ArticlePayload mirrors what the extension scrapes from a news page.
type ArticlePayload struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Reporter   string   `json:"reporter"`
	Paragraphs []string `json:"paragraphs"`
	Text       string   `json:"text"`
}

// QuotePayload is a client-supplied quote to verify.
type QuotePayload struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	Speaker string `json:"speaker"`
}

// OptionsPayload tunes one analyze call.
type OptionsPayload struct {
	TopN     int  `json:"top_n"`
	TopK     int  `json:"top_k"`
	Rollcall bool `json:"rollcall"`
	Search   bool `json:"search"`
}

// AnalyzeRequest is the POST /api/analyze body.
type AnalyzeRequest struct {
	Article ArticlePayload `json:"article"`
	Quotes  []QuotePayload `json:"quotes"`
	Date    string         `json:"date"`
	Options OptionsPayload `json:"options"`
}

// QueryPairPayload is one query pair in the response.
type QueryPairPayload struct {
	Ko      string `json:"ko"`
	En      string `json:"en"`
	Speaker string `json:"speaker,omitempty"`
}

// BestSpanPayload reports the accepted match. SpanText carries the quote
// text that was verified; BestSentence is the matched source sentence.
type BestSpanPayload struct {
	URL          string  `json:"url"`
	BestScore    float64 `json:"best_score"`
	BestSentence string  `json:"best_sentence"`
	SpanText     string  `json:"span_text"`
}

// QuoteAnalysis is one analyzed quote in the response.
type QuoteAnalysis struct {
	ID             int                        `json:"id"`
	Text           string                     `json:"text"`
	Speaker        string                     `json:"speaker,omitempty"`
	Entities       []entities.Entity          `json:"entities"`
	EntitiesByType map[entities.Type][]string `json:"entities_by_type"`
	Keywords       []keywords.Candidate       `json:"keywords"`
	Queries        QueryPairPayload           `json:"queries"`
	RollcallQuery  *QueryPairPayload          `json:"rollcall_query,omitempty"`
	IsTrumpContext bool                       `json:"is_trump_context"`
	SearchItems    []search.Candidate         `json:"search_items,omitempty"`
	BestSpan       *BestSpanPayload           `json:"best_span,omitempty"`
	Stages         []pipeline.StageOutcome    `json:"stages"`
}

// AnalyzeResponse wraps every analyzed quote.
type AnalyzeResponse struct {
	Quotes []QuoteAnalysis `json:"quotes"`
}

func queryPayload(q queries.Output) QueryPairPayload {
	return QueryPairPayload{Ko: q.Korean, En: q.English, Speaker: q.Speaker}
}

// newQuoteAnalysis maps a pipeline result onto the response contract.
func newQuoteAnalysis(id int, text, speaker string, a pipeline.QuoteResult) QuoteAnalysis {
	out := QuoteAnalysis{
		ID:             id,
		Text:           text,
		Speaker:        speaker,
		Entities:       a.Entities,
		EntitiesByType: a.EntitiesByType,
		Keywords:       a.Keywords,
		Queries:        queryPayload(a.Queries),
		IsTrumpContext: a.IsTrumpContext,
		SearchItems:    a.SearchItems,
		Stages:         a.Stages,
	}

	if a.RollcallQuery != nil {
		rq := queryPayload(*a.RollcallQuery)
		out.RollcallQuery = &rq
	}

	if a.BestMatch != nil {
		spanText := a.MatchQuote
		if spanText == "" {
			spanText = a.Quote.Text
		}

		out.BestSpan = &BestSpanPayload{
			URL:          a.BestMatch.URL,
			BestScore:    a.BestMatch.BestScore,
			BestSentence: a.BestMatch.BestSentence,
			SpanText:     spanText,
		}
	}

	return out
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	text := req.Article.Text
	if text == "" {
		text = strings.Join(req.Article.Paragraphs, "\n")
	}

	if strings.TrimSpace(text) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "article text must not be empty"})
	}

	ctx := c.Request().Context()

	baseReq := pipeline.Request{
		Headline: req.Article.Title,
		Text:     text,
		Date:     req.Date,
		TopN:     req.Options.TopN,
		TopK:     req.Options.TopK,
		Rollcall: req.Options.Rollcall,
		Search:   req.Options.Search,
	}

	analyses, err := s.analyze(ctx, baseReq, req.Quotes)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		s.logger.Error().Err(err).Msg("analyze failed")

		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "analysis failed"})
	}

	return c.JSON(http.StatusOK, AnalyzeResponse{Quotes: analyses})
}

// analyze runs the pipeline once per client quote, or over extracted quotes
// when the client supplied none.
func (s *Server) analyze(ctx context.Context, baseReq pipeline.Request, clientQuotes []QuotePayload) ([]QuoteAnalysis, error) {
	quotes := make([]QuotePayload, 0, len(clientQuotes))

	for _, q := range clientQuotes {
		if strings.TrimSpace(q.Text) != "" {
			quotes = append(quotes, q)
		}
	}

	if len(quotes) == 0 {
		res, err := s.orchestrator.Analyze(ctx, baseReq)
		if err != nil {
			return nil, err
		}

		out := make([]QuoteAnalysis, 0, len(res.Analyses))
		for _, a := range res.Analyses {
			out = append(out, newQuoteAnalysis(a.Quote.ID, a.Quote.Text, a.Queries.Speaker, a))
		}

		return out, nil
	}

	out := make([]QuoteAnalysis, 0, len(quotes))

	for i, q := range quotes {
		quoteReq := baseReq
		quoteReq.Quote = q.Text

		res, err := s.orchestrator.Analyze(ctx, quoteReq)
		if err != nil {
			return nil, err
		}

		if len(res.Analyses) == 0 {
			continue
		}

		id := q.ID
		if id == 0 {
			id = i + 1
		}

		speaker := q.Speaker
		if speaker == "" {
			speaker = res.Analyses[0].Queries.Speaker
		}

		out = append(out, newQuoteAnalysis(id, q.Text, speaker, res.Analyses[0]))
	}

	return out, nil
}
