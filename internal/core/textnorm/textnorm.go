// Package textnorm canonicalizes article text and segments it into
// sentences. Everything downstream (quote extraction, keyword ranking,
// snippet matching) operates on its output.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFC normalization, collapses whitespace runs (including
// newlines) to single spaces, and trims. Total function: empty in, empty out.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFC.String(text)

	var b strings.Builder
	b.Grow(len(text))

	inSpace := false

	for _, r := range text {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}

		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}

		inSpace = false

		b.WriteRune(r)
	}

	return b.String()
}

// NormalizeKoreanPhrase strips separator characters and whitespace and
// lowercases, producing a key for duplicate detection across variant
// spellings of the same Korean phrase.
func NormalizeKoreanPhrase(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
		case r == '·' || r == '‧' || r == 'ㆍ' || r == '-' || r == '_' || r == '/':
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}

// ContainsKorean reports whether text contains at least one Hangul syllable.
func ContainsKorean(text string) bool {
	for _, r := range text {
		if isHangul(r) {
			return true
		}
	}

	return false
}

func isHangul(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}

// quotePairs maps opening quote marks to their closing counterparts for the
// quote-aware sentence splitter.
var quotePairs = map[rune]rune{
	'“': '”',
	'‘': '’',
	'"': '"',
	'\'': '\'',
}

// SplitSentences segments normalized text on sentence-final punctuation
// followed by whitespace and a Hangul or Latin letter. Splits never happen
// inside an open quotation span.
func SplitSentences(text string) []string {
	text = Normalize(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	sentences := make([]string, 0, 4)
	start := 0

	var closing rune // zero when not inside a quote

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if closing != 0 {
			if r == closing && !isApostrophe(runes, i) {
				closing = 0
			}

			continue
		}

		if c, ok := quotePairs[r]; ok {
			// Straight single quotes double as apostrophes in English
			// contractions and possessives; those never open a span.
			if isApostrophe(runes, i) {
				continue
			}

			// Straight marks open and close with the same rune; only treat
			// as opening when a closing mark exists later.
			if hasRune(runes[i+1:], c) {
				closing = c
			}

			continue
		}

		if !isSentenceFinal(r) {
			continue
		}

		// Boundary: punctuation, whitespace, then a letter starting the
		// next sentence.
		j := i + 1
		if j >= len(runes) || !unicode.IsSpace(runes[j]) {
			continue
		}

		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}

		if j >= len(runes) || !isSentenceStart(runes[j]) {
			continue
		}

		sentences = append(sentences, strings.TrimSpace(string(runes[start:i+1])))
		start = j
		i = j - 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}

// SplitSnippetSentences segments snippet text for similarity scoring,
// dropping fragments below a language-dependent minimum length (Korean
// sentences run shorter than English ones).
func SplitSnippetSentences(text string, isKorean bool) []string {
	minLen := 20
	if isKorean {
		minLen = 10
	}

	parts := SplitSentences(text)
	out := make([]string, 0, len(parts))

	for _, s := range parts {
		if len([]rune(s)) < minLen {
			continue
		}

		out = append(out, s)
	}

	return out
}

// isApostrophe reports whether the straight single quote at i sits inside a
// word, as in English contractions and possessives. Such marks are not
// quotation marks and must not suppress sentence boundaries.
func isApostrophe(runes []rune, i int) bool {
	if runes[i] != '\'' {
		return false
	}

	return i > 0 && i+1 < len(runes) &&
		unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1])
}

func hasRune(runes []rune, want rune) bool {
	for _, r := range runes {
		if r == want {
			return true
		}
	}

	return false
}

func isSentenceFinal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSentenceStart(r rune) bool {
	return isHangul(r) || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}
