// Package queries assembles search queries from ranked keywords and
// extracted entities. Each build produces a Korean query for domestic
// sources and an English query for international ones; Rollcall queries
// target transcript archives and follow a different recipe built around the
// speaker and the article date.
package queries

import (
	"context"
	"strings"
	"unicode"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	"github.com/quotelens/quotelens/internal/core/entities"
	"github.com/quotelens/quotelens/internal/core/translate"
)

const (
	// DefaultTopK keyword terms carried into each query.
	DefaultTopK = 3

	// DefaultMaxLength caps query length in runes; truncation happens at a
	// word boundary.
	DefaultMaxLength = 150

	maxLocations            = 2
	maxKeywordWords         = 3
	maxLocationWords        = 2
	minRollcallKeywordRunes = 2

	rollcallDateLayout = "January 02 2006"
)

// NameResolver resolves a Korean person name to its English form.
type NameResolver interface {
	ResolveEnglishName(ctx context.Context, koreanName string) (string, error)
}

// Input carries everything a build needs. Keywords arrive already ranked,
// best first.
type Input struct {
	EntitiesByType map[entities.Type][]string
	Keywords       []string
	Quote          string
	Date           string
	TopK           int
	MaxLength      int
}

// Output is one built query pair. English may be empty when every term
// failed to translate; Warnings explains such gaps.
type Output struct {
	Korean   string   `json:"korean"`
	English  string   `json:"english"`
	Speaker  string   `json:"speaker,omitempty"`
	Warnings []string `json:"-"`
}

// Builder owns the translation handles query assembly depends on.
type Builder struct {
	translator translate.Translator
	resolver   NameResolver
	logger     *zerolog.Logger
}

func NewBuilder(translator translate.Translator, resolver NameResolver, logger *zerolog.Logger) *Builder {
	return &Builder{translator: translator, resolver: resolver, logger: logger}
}

// Build assembles the standard query: speaker, up to two locations, the top
// K keywords, and the quote when one is being verified. Terms that fail to
// translate are dropped from the English query rather than failing the
// build.
func (b *Builder) Build(ctx context.Context, in Input) Output {
	in = in.withDefaults()

	var out Output

	speaker := firstOf(in.EntitiesByType[entities.TypePerson])
	out.Speaker = speaker

	koTerms := make([]string, 0, 2+in.TopK+2)
	enTerms := make([]string, 0, 2+in.TopK+2)

	if speaker != "" {
		koTerms = append(koTerms, speaker)

		if en, ok := b.resolveSpeaker(ctx, speaker, &out); ok {
			enTerms = append(enTerms, en)
		}
	}

	for _, loc := range headOf(in.EntitiesByType[entities.TypeLocation], maxLocations) {
		koTerms = append(koTerms, loc)

		if en, ok := b.translateTerm(ctx, loc, &out); ok {
			enTerms = append(enTerms, firstWords(firstCommaSegment(en), maxLocationWords))
		}
	}

	for _, kw := range headOf(in.Keywords, in.TopK) {
		koTerms = append(koTerms, firstWords(kw, maxKeywordWords))

		if en, ok := b.translateTerm(ctx, kw, &out); ok {
			enTerms = append(enTerms, firstWords(en, maxKeywordWords))
		}
	}

	if in.Quote != "" {
		koTerms = append(koTerms, `"`+in.Quote+`"`)

		if en, ok := b.translateTerm(ctx, in.Quote, &out); ok {
			enTerms = append(enTerms, `"`+en+`"`)
		}
	}

	out.Korean = capLength(strings.Join(dedupTerms(koTerms), " "), in.MaxLength)
	out.English = capLength(strings.Join(dedupTerms(enTerms), " "), in.MaxLength)

	if out.English == "" && out.Korean != "" {
		out.Warnings = append(out.Warnings, "english query empty: all terms failed to translate")
	}

	return out
}

// BuildRollcall assembles a transcript-archive query pair: the speaker, the
// article date, one other person mentioned alongside, and one proper-noun
// context term (a location, else an organization, else the best ranked
// keyword not naming the speaker).
func (b *Builder) BuildRollcall(ctx context.Context, in Input) Output {
	in = in.withDefaults()

	var out Output

	speaker := firstOf(in.EntitiesByType[entities.TypePerson])
	out.Speaker = speaker

	koTerms := make([]string, 0, 4)
	enTerms := make([]string, 0, 4)

	if speaker != "" {
		koTerms = append(koTerms, speaker)

		if en, ok := b.resolveSpeaker(ctx, speaker, &out); ok {
			enTerms = append(enTerms, en)
		}
	}

	if date := strings.TrimSpace(in.Date); date != "" {
		koTerms = append(koTerms, date)

		if formatted, ok := formatRollcallDate(date); ok {
			enTerms = append(enTerms, formatted)
		} else {
			// The archive tolerates loose date strings; carry the raw value.
			out.Warnings = append(out.Warnings, "unparseable article date: "+date)
			enTerms = append(enTerms, date)
		}
	}

	if per := firstNonSpeakerPerson(in.EntitiesByType[entities.TypePerson], speaker); per != "" {
		koTerms = append(koTerms, per)

		if en, ok := b.translateTerm(ctx, per, &out); ok {
			enTerms = append(enTerms, firstWords(en, maxKeywordWords))
		}
	}

	if kw := rollcallContextTerm(in, speaker); kw != "" {
		koTerms = append(koTerms, kw)

		if en, ok := b.translateTerm(ctx, kw, &out); ok {
			enTerms = append(enTerms, firstWords(firstCommaSegment(en), maxKeywordWords))
		}
	}

	out.Korean = capLength(strings.Join(dedupTerms(koTerms), " "), in.MaxLength)
	out.English = capLength(strings.Join(dedupTerms(enTerms), " "), in.MaxLength)

	return out
}

func firstNonSpeakerPerson(persons []string, speaker string) string {
	for _, per := range persons {
		if per != speaker {
			return per
		}
	}

	return ""
}

// rollcallContextTerm picks the single proper-noun term anchoring the
// query: locations win over organizations, and without either the best
// ranked keyword that does not name the speaker stands in.
func rollcallContextTerm(in Input, speaker string) string {
	if loc := firstOf(in.EntitiesByType[entities.TypeLocation]); loc != "" {
		return loc
	}

	if org := firstOf(in.EntitiesByType[entities.TypeOrganization]); org != "" {
		return org
	}

	for _, kw := range in.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || len([]rune(kw)) < minRollcallKeywordRunes {
			continue
		}

		if speaker != "" && strings.Contains(kw, speaker) {
			continue
		}

		return kw
	}

	return ""
}

func (in Input) withDefaults() Input {
	if in.TopK <= 0 {
		in.TopK = DefaultTopK
	}

	if in.MaxLength <= 0 {
		in.MaxLength = DefaultMaxLength
	}

	return in
}

func (b *Builder) resolveSpeaker(ctx context.Context, speaker string, out *Output) (string, bool) {
	en, err := b.resolver.ResolveEnglishName(ctx, speaker)
	if err != nil || en == "" {
		b.logger.Debug().Err(err).Str("speaker", speaker).Msg("speaker name resolution failed")
		out.Warnings = append(out.Warnings, "speaker name unresolved: "+speaker)

		return "", false
	}

	return en, true
}

func (b *Builder) translateTerm(ctx context.Context, term string, out *Output) (string, bool) {
	en, err := b.translator.TranslateToEnglish(ctx, term)
	if err != nil || strings.TrimSpace(en) == "" {
		b.logger.Debug().Err(err).Str("term", term).Msg("term translation failed, dropping")
		out.Warnings = append(out.Warnings, "term dropped from english query: "+term)

		return "", false
	}

	return strings.TrimSpace(en), true
}

// formatRollcallDate accepts loose date strings ("2025-08-14", "Aug 14,
// 2025") and normalizes to the archive's expected form.
func formatRollcallDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return "", false
	}

	return t.Format(rollcallDateLayout), true
}

func firstOf(terms []string) string {
	if len(terms) == 0 {
		return ""
	}

	return terms[0]
}

func headOf(terms []string, n int) []string {
	if len(terms) > n {
		return terms[:n]
	}

	return terms
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}

	return strings.Join(fields, " ")
}

func firstCommaSegment(s string) string {
	if i := strings.IndexRune(s, ','); i >= 0 {
		return strings.TrimSpace(s[:i])
	}

	return s
}

// dedupTerms removes duplicates case- and punctuation-insensitively while
// preserving first-seen order.
func dedupTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))

	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		key := dedupKey(term)
		if key == "" {
			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		out = append(out, term)
	}

	return out
}

func dedupKey(term string) string {
	var b strings.Builder

	for _, r := range term {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}

// capLength truncates at the last word boundary within max runes.
func capLength(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}

	truncated := string(runes[:maxRunes])
	if i := strings.LastIndexFunc(truncated, unicode.IsSpace); i > 0 {
		truncated = truncated[:i]
	}

	return strings.TrimRightFunc(truncated, unicode.IsSpace)
}
