// Package match scores candidate pages against a quote and picks the best
// supporting span. Each sentence of a candidate anchors a span of its
// neighbors; spans are embedded and compared to the quote by cosine
// similarity mapped onto [0,1].
package match

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quotelens/quotelens/internal/core/embeddings"
	"github.com/quotelens/quotelens/internal/core/errs"
	"github.com/quotelens/quotelens/internal/core/textnorm"
)

// Defaults for span construction and acceptance.
const (
	DefaultMinScore   = 0.55
	DefaultSpanBefore = 1
	DefaultSpanAfter  = 1
)

// Source is one candidate page reduced to its usable sentences.
type Source struct {
	URL       string
	Sentences []string
}

// BestMatch reports the winning span. BestSentence is the anchor sentence
// at the span's center; SpanText includes its neighbors.
type BestMatch struct {
	URL          string  `json:"url"`
	BestScore    float64 `json:"best_score"`
	BestSentence string  `json:"best_sentence"`
	SpanText     string  `json:"span_text"`
}

// Config tunes span width and the acceptance threshold. The zero Config
// selects all defaults; a partially filled one is taken as given, so
// SpanBefore/SpanAfter of 0 mean single-sentence spans. Negative widths are
// clamped to zero.
type Config struct {
	MinScore   float64
	SpanBefore int
	SpanAfter  int
}

func (c Config) withDefaults() Config {
	if c == (Config{}) {
		return Config{
			MinScore:   DefaultMinScore,
			SpanBefore: DefaultSpanBefore,
			SpanAfter:  DefaultSpanAfter,
		}
	}

	if c.MinScore <= 0 {
		c.MinScore = DefaultMinScore
	}

	if c.SpanBefore < 0 {
		c.SpanBefore = 0
	}

	if c.SpanAfter < 0 {
		c.SpanAfter = 0
	}

	return c
}

// Scorer holds the encoder used for quote and span embeddings.
type Scorer struct {
	encoder embeddings.Encoder
	cfg     Config
	logger  *zerolog.Logger
}

func NewScorer(encoder embeddings.Encoder, cfg Config, logger *zerolog.Logger) *Scorer {
	return &Scorer{encoder: encoder, cfg: cfg.withDefaults(), logger: logger}
}

// Best returns the highest-scoring span across all sources, or nil when no
// span clears the threshold. Ties keep the earlier source, then the earlier
// sentence within it. A source whose spans fail to embed is skipped; the
// call errors only when the quote cannot be embedded or every source failed.
func (s *Scorer) Best(ctx context.Context, quote string, sources []Source) (*BestMatch, error) {
	quote = textnorm.Normalize(quote)
	if quote == "" || len(sources) == 0 {
		return nil, nil
	}

	quoteVec, err := s.encoder.Encode(ctx, s.quoteSpan(quote))
	if err != nil {
		return nil, fmt.Errorf("embed quote: %w", err)
	}

	var (
		best    *BestMatch
		scored  int
		skipped int
	)

	for _, src := range sources {
		spans := buildSpans(src.Sentences, s.cfg.SpanBefore, s.cfg.SpanAfter)
		if len(spans) == 0 {
			continue
		}

		texts := make([]string, len(spans))
		for i, sp := range spans {
			texts[i] = sp.text
		}

		vectors, err := s.encoder.EncodeBatch(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			s.logger.Warn().Err(err).Str("url", src.URL).Msg("skipping source, span embedding failed")
			skipped++

			continue
		}

		scored++

		for i, sp := range spans {
			score := normalizeScore(embeddings.Cosine(quoteVec, vectors[i]))

			// Strict comparison keeps the earliest source and sentence on ties.
			if best == nil || score > best.BestScore {
				best = &BestMatch{
					URL:          src.URL,
					BestScore:    score,
					BestSentence: sp.anchor,
					SpanText:     sp.text,
				}
			}
		}
	}

	if scored == 0 && skipped > 0 {
		return nil, fmt.Errorf("%w: embedding failed for all %d sources", errs.ErrModelUnavailable, skipped)
	}

	if best == nil || best.BestScore < s.cfg.MinScore {
		if best != nil {
			s.logger.Debug().
				Float64("best_score", best.BestScore).
				Float64("threshold", s.cfg.MinScore).
				Str("url", best.URL).
				Msg("best span below acceptance threshold")
		}

		return nil, nil
	}

	return best, nil
}

// quoteSpan reduces a multi-sentence quote to the span centered on its
// middle sentence, mirroring how candidate spans are built. Single-sentence
// quotes pass through unchanged.
func (s *Scorer) quoteSpan(quote string) string {
	parts := textnorm.SplitSentences(quote)
	if len(parts) <= 1 {
		return quote
	}

	mid := len(parts) / 2
	lo := mid - s.cfg.SpanBefore
	hi := mid + s.cfg.SpanAfter

	if lo < 0 {
		lo = 0
	}

	if hi > len(parts)-1 {
		hi = len(parts) - 1
	}

	return strings.Join(parts[lo:hi+1], " ")
}

type span struct {
	anchor string
	text   string
}

// buildSpans produces one span per sentence, widened by its neighbors.
func buildSpans(sentences []string, before, after int) []span {
	spans := make([]span, 0, len(sentences))

	for i, anchor := range sentences {
		lo := i - before
		if lo < 0 {
			lo = 0
		}

		hi := i + after + 1
		if hi > len(sentences) {
			hi = len(sentences)
		}

		spans = append(spans, span{
			anchor: anchor,
			text:   strings.Join(sentences[lo:hi], " "),
		})
	}

	return spans
}

// normalizeScore maps cosine similarity from [-1,1] onto [0,1].
func normalizeScore(cos float64) float64 {
	return (cos + 1) / 2
}
