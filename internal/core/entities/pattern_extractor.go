package entities

import (
	"context"
	"regexp"
)

// Pattern-based extraction for when no LLM is reachable. The Latin patterns
// cover capitalized person/organization shapes; the Korean patterns lean on
// title suffixes and a small gazetteer, which covers the political-news
// domain this system targets.
var (
	latinPersonPattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
	latinOrgPattern    = regexp.MustCompile(`\b[A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)*\s+(?:Inc|Corp|Ltd|Company|Group|Organization|Foundation|Ministry|Agency|Department|Bank|University|Committee|Council)\b`)
	latinDatePattern   = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:,?\s+\d{4})?\b|\b\d{4}-\d{2}-\d{2}\b`)

	koreanTitledPerson = regexp.MustCompile(`([가-힣]{2,4})\s*(?:대통령|총리|장관|의원|대표|위원장|총장|대사)`)
	koreanDatePattern  = regexp.MustCompile(`\d{1,4}년\s*\d{1,2}월(?:\s*\d{1,2}일)?|\d{1,2}월\s*\d{1,2}일`)
)

var gazetteer = []struct {
	pattern *regexp.Regexp
	typ     Type
}{
	{regexp.MustCompile(`(?i)\b(United States|Russia|China|Ukraine|Germany|France|Venezuela|North Korea|South Korea|Washington|Moscow|Beijing|Seoul|Pyongyang)\b`), TypeLocation},
	{regexp.MustCompile(`미국|중국|러시아|북한|일본|한국|우크라이나|베네수엘라|워싱턴|모스크바|베이징|서울|평양`), TypeLocation},
	{regexp.MustCompile(`(?i)\bWhite House\b|백악관|국무부|국방부|유엔|의회`), TypeOrganization},
	{regexp.MustCompile(`트럼프|바이든|푸틴|시진핑|김정은`), TypePerson},
}

// PatternExtractor recognizes entities with regular expressions only. It is
// the degraded-mode fallback: cheap, offline, and deliberately conservative.
type PatternExtractor struct{}

func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

func (e *PatternExtractor) Extract(_ context.Context, text string) ([]Entity, error) {
	if text == "" {
		return nil, nil
	}

	raw := make([]Entity, 0, 8)

	for _, g := range gazetteer {
		for _, m := range g.pattern.FindAllString(text, -1) {
			raw = append(raw, Entity{Text: m, Type: g.typ})
		}
	}

	for _, m := range koreanTitledPerson.FindAllStringSubmatch(text, -1) {
		if len(m) > 1 {
			raw = append(raw, Entity{Text: m[1], Type: TypePerson})
		}
	}

	for _, m := range latinPersonPattern.FindAllString(text, -1) {
		raw = append(raw, Entity{Text: m, Type: TypePerson})
	}

	for _, m := range latinOrgPattern.FindAllString(text, -1) {
		raw = append(raw, Entity{Text: m, Type: TypeOrganization})
	}

	for _, m := range latinDatePattern.FindAllString(text, -1) {
		raw = append(raw, Entity{Text: m, Type: TypeDate})
	}

	for _, m := range koreanDatePattern.FindAllString(text, -1) {
		raw = append(raw, Entity{Text: m, Type: TypeDate})
	}

	return clean(raw), nil
}
