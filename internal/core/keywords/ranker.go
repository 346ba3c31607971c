// Package keywords extracts and ranks salient terms from article text.
// Candidate phrases are scored by embedding similarity to the document (or
// to a specific quote when one is being verified) and re-ranked with a
// named-entity boost before truncation to the top N.
package keywords

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/quotelens/quotelens/internal/core/embeddings"
	"github.com/quotelens/quotelens/internal/core/entities"
	"github.com/quotelens/quotelens/internal/core/textnorm"
)

// Kind distinguishes entity-sourced candidates from phrase candidates.
type Kind string

const (
	KindEntity  Kind = "entity"
	KindKeyword Kind = "keyword"
)

// Defaults mirroring the original ranking parameters.
const (
	DefaultTopN      = 15
	defaultAlpha     = 0.7
	defaultBeta      = 0.3
	bonusBoth        = 1.0
	bonusEither      = 0.6
	maxPhraseTokens  = 3
	minTermRunes     = 2
	rerankPoolFactor = 3
	maxCandidatePool = 150
)

// Candidate is one scored term. Scores are comparable within a single
// ranking run only.
type Candidate struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
	Kind  Kind    `json:"kind"`
}

// Result carries the ranked candidates plus the raw entity view the query
// builder and API layer need.
type Result struct {
	Candidates     []Candidate                `json:"keywords"`
	Entities       []entities.Entity          `json:"entities"`
	EntitiesByType map[entities.Type][]string `json:"entities_by_type"`
	Warnings       []string                   `json:"-"`
}

// Ranker merges entity extraction with embedding-scored phrase candidates.
type Ranker struct {
	extractor entities.Extractor
	encoder   embeddings.Encoder
	alpha     float64
	beta      float64
	logger    *zerolog.Logger
}

// Config tunes the rank blend: final = alpha*similarity + beta*bonus.
type Config struct {
	Alpha float64
	Beta  float64
}

func NewRanker(extractor entities.Extractor, encoder embeddings.Encoder, cfg Config, logger *zerolog.Logger) *Ranker {
	if cfg.Alpha <= 0 {
		cfg.Alpha = defaultAlpha
	}

	if cfg.Beta <= 0 {
		cfg.Beta = defaultBeta
	}

	return &Ranker{
		extractor: extractor,
		encoder:   encoder,
		alpha:     cfg.Alpha,
		beta:      cfg.Beta,
		logger:    logger,
	}
}

// Rank extracts entities and keyword phrases from text and returns at most
// topN candidates sorted by descending score, ties broken by first
// occurrence in the text and then lexically. Model failures degrade to
// partial (possibly empty) output with a warning instead of an error; the
// only errors surfaced are context cancellations.
func (r *Ranker) Rank(ctx context.Context, text, quote string, topN int) (Result, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	res := Result{EntitiesByType: map[entities.Type][]string{}}

	text = textnorm.Normalize(text)
	if text == "" {
		return res, nil
	}

	ents, err := r.extractor.Extract(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		r.logger.Warn().Err(err).Msg("entity extraction degraded to empty")
		res.Warnings = append(res.Warnings, "entity extraction unavailable: "+err.Error())
	}

	res.Entities = ents
	res.EntitiesByType = groupByType(ents)

	scored, err := r.scoreCandidates(ctx, text, quote, ents, topN)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		r.logger.Warn().Err(err).Msg("keyword scoring degraded to empty")
		res.Warnings = append(res.Warnings, "keyword model unavailable: "+err.Error())

		return res, nil
	}

	res.Candidates = scored

	return res, nil
}

type scoredTerm struct {
	term     string
	score    float64
	kind     Kind
	firstIdx int
}

func (r *Ranker) scoreCandidates(ctx context.Context, text, quote string, ents []entities.Entity, topN int) ([]Candidate, error) {
	phrases := collectPhrases(text)

	// Reference embedding: the quote when verifying one, else the document.
	reference := text
	if quote != "" {
		reference = quote
	}

	entityTerms := make([]string, 0, len(ents))
	for _, e := range ents {
		entityTerms = append(entityTerms, e.Text)
	}

	toEncode := make([]string, 0, len(phrases)+len(entityTerms)+1)
	toEncode = append(toEncode, reference)
	toEncode = append(toEncode, phrases...)
	toEncode = append(toEncode, entityTerms...)

	vectors, err := r.encoder.EncodeBatch(ctx, toEncode)
	if err != nil {
		return nil, err
	}

	refVec := vectors[0]
	entityNorms := normalizedSet(entityTerms)

	// Rank phrases by raw similarity and keep topN*3 before the boost
	// rerank, so the boost reorders a short list instead of the whole pool.
	ranked := make([]scoredTerm, 0, len(phrases))
	for i, phrase := range phrases {
		ranked = append(ranked, scoredTerm{
			term:     phrase,
			score:    embeddings.Cosine(refVec, vectors[1+i]),
			kind:     KindKeyword,
			firstIdx: strings.Index(text, phrase),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if pool := topN * rerankPoolFactor; len(ranked) > pool {
		ranked = ranked[:pool]
	}

	scored := make([]scoredTerm, 0, len(ranked)+len(entityTerms))
	for _, st := range ranked {
		st.score = r.blend(st.score, r.bonus(st.term, entityNorms))
		scored = append(scored, st)
	}

	for i, term := range entityTerms {
		sim := embeddings.Cosine(refVec, vectors[1+len(phrases)+i])
		scored = append(scored, scoredTerm{
			term:     term,
			score:    r.blend(sim, bonusBoth),
			kind:     KindEntity,
			firstIdx: strings.Index(text, term),
		})
	}

	return finalize(scored, topN), nil
}

func (r *Ranker) blend(similarity, bonus float64) float64 {
	return r.alpha*similarity + r.beta*bonus
}

// bonus implements the entity/relation boost: a phrase containing both an
// entity and a relation term gets the full bonus, either one alone a
// partial bonus.
func (r *Ranker) bonus(phrase string, entityNorms map[string]struct{}) float64 {
	norm := textnorm.NormalizeKoreanPhrase(phrase)

	hasEntity := false

	for en := range entityNorms {
		if en != "" && strings.Contains(norm, en) {
			hasEntity = true
			break
		}
	}

	hasRelation := false

	for _, rel := range relationTerms {
		if strings.Contains(norm, textnorm.NormalizeKoreanPhrase(rel)) {
			hasRelation = true
			break
		}
	}

	switch {
	case hasEntity && hasRelation:
		return bonusBoth
	case hasEntity || hasRelation:
		return bonusEither
	default:
		return 0
	}
}

// finalize dedups by normalized term (keeping the higher score, entity kind
// winning ties), sorts, and truncates.
func finalize(scored []scoredTerm, topN int) []Candidate {
	best := make(map[string]scoredTerm, len(scored))

	for _, st := range scored {
		key := textnorm.NormalizeKoreanPhrase(st.term)
		if key == "" {
			continue
		}

		prev, ok := best[key]
		if !ok || st.score > prev.score || (st.score == prev.score && st.kind == KindEntity && prev.kind != KindEntity) {
			best[key] = st
		}
	}

	out := make([]scoredTerm, 0, len(best))
	for _, st := range best {
		out = append(out, st)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}

		if out[i].firstIdx != out[j].firstIdx {
			return out[i].firstIdx < out[j].firstIdx
		}

		return out[i].term < out[j].term
	})

	if len(out) > topN {
		out = out[:topN]
	}

	candidates := make([]Candidate, len(out))
	for i, st := range out {
		candidates[i] = Candidate{Term: st.term, Score: st.score, Kind: st.kind}
	}

	return candidates
}

// collectPhrases builds 1..3-gram candidate phrases from stopword-filtered
// tokens, unique by normalized form, capped to keep embedding calls bounded.
func collectPhrases(text string) []string {
	tokens := tokenize(text)

	seen := make(map[string]struct{})
	phrases := make([]string, 0, 32)

	for n := 1; n <= maxPhraseTokens; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := tokens[i : i+n]
			if containsStopword(gram) {
				continue
			}

			phrase := strings.Join(gram, " ")
			if len([]rune(phrase)) < minTermRunes {
				continue
			}

			key := textnorm.NormalizeKoreanPhrase(phrase)
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}

			phrases = append(phrases, phrase)

			if len(phrases) >= maxCandidatePool {
				return phrases
			}
		}
	}

	return phrases
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsStopword(gram []string) bool {
	for _, tok := range gram {
		if isStopword(strings.ToLower(tok)) {
			return true
		}
	}

	return false
}

func normalizedSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))

	for _, t := range terms {
		set[textnorm.NormalizeKoreanPhrase(t)] = struct{}{}
	}

	return set
}

// groupByType builds the entities_by_type view with subsumption dedup: when
// one surface form contains another (after normalization), the longer form
// wins regardless of which arrived first.
func groupByType(ents []entities.Entity) map[entities.Type][]string {
	type keptEntry struct {
		text string
		norm string
	}

	perType := make(map[entities.Type][]keptEntry)

	for _, e := range ents {
		norm := textnorm.NormalizeKoreanPhrase(e.Text)
		if norm == "" {
			continue
		}

		kept := perType[e.Type]
		subsumed := false

		for i := 0; i < len(kept); i++ {
			switch {
			case strings.Contains(kept[i].norm, norm):
				// Existing longer (or equal) form covers this one.
				subsumed = true
			case strings.Contains(norm, kept[i].norm):
				// New form is longer; drop the shorter existing one.
				kept = append(kept[:i], kept[i+1:]...)
				i--
			}

			if subsumed {
				break
			}
		}

		if !subsumed {
			kept = append(kept, keptEntry{text: e.Text, norm: norm})
		}

		perType[e.Type] = kept
	}

	grouped := make(map[entities.Type][]string, len(perType))

	for typ, kept := range perType {
		names := make([]string, len(kept))
		for i, k := range kept {
			names[i] = k.text
		}

		grouped[typ] = names
	}

	return grouped
}
