// Package quotes scans article text for quoted spans. Extraction is a pure
// function: no I/O, deterministic output, stable ordinal IDs.
package quotes

import (
	"regexp"

	"github.com/quotelens/quotelens/internal/core/textnorm"
)

// Section identifies where in the article a quote was found.
type Section string

const (
	SectionHeadline Section = "headline"
	SectionBody     Section = "body"
)

// DefaultMinLength is the minimum normalized quote length kept by Extract.
const DefaultMinLength = 6

// Quote is a single extracted quoted span. IDs are 1-based and assigned in
// document order, headline before body, on a single counter.
type Quote struct {
	ID      int     `json:"id"`
	Text    string  `json:"text"`
	Section Section `json:"section"`
}

// Patterns are tried in priority order per section. Non-greedy and
// mark-paired: an opening mark without its closing mark never matches.
var quotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`“([^”]+)”`),
	regexp.MustCompile(`"([^"]+)"`),
	regexp.MustCompile(`'([^']+)'`),
	regexp.MustCompile(`‘([^’]+)’`),
}

// Extract returns the quoted spans found in headline then body. Duplicate
// normalized texts are dropped case-sensitively across the whole call, so a
// quote repeated across sections or quote-mark styles appears exactly once.
// minLength <= 0 falls back to DefaultMinLength.
func Extract(headline, body string, minLength int) []Quote {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}

	seen := make(map[string]struct{})
	out := make([]Quote, 0, 4)
	nextID := 1

	for _, section := range []struct {
		text string
		tag  Section
	}{
		{headline, SectionHeadline},
		{body, SectionBody},
	} {
		for _, text := range scanSection(section.text) {
			cleaned := textnorm.Normalize(text)
			if len([]rune(cleaned)) < minLength {
				continue
			}

			if _, dup := seen[cleaned]; dup {
				continue
			}

			seen[cleaned] = struct{}{}

			out = append(out, Quote{ID: nextID, Text: cleaned, Section: section.tag})
			nextID++
		}
	}

	return out
}

// scanSection applies every pattern against one section and returns the raw
// inner captures, ordered by pattern priority then left-to-right position.
func scanSection(text string) []string {
	if text == "" {
		return nil
	}

	captures := make([]string, 0, 4)

	for _, pattern := range quotePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			if len(m) > 1 {
				captures = append(captures, m[1])
			}
		}
	}

	return captures
}
