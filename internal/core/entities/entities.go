// Package entities provides named-entity extraction over article text.
// The primary extractor asks the LLM for typed spans; a regex-based
// fallback keeps the pipeline producing entities when no model is
// reachable.
package entities

import (
	"context"
	"strings"

	"github.com/quotelens/quotelens/internal/core/textnorm"
)

// Type is a named-entity label. The set mirrors the Korean NER tagset the
// system was tuned against.
type Type string

const (
	TypePerson       Type = "PER"
	TypeOrganization Type = "ORG"
	TypeLocation     Type = "LOC"
	TypeDate         Type = "DAT"
	TypeArtifact     Type = "AFW"
)

// KnownTypes lists every label extractors may emit.
var KnownTypes = map[Type]struct{}{
	TypePerson:       {},
	TypeOrganization: {},
	TypeLocation:     {},
	TypeDate:         {},
	TypeArtifact:     {},
}

// Entity is one typed span recognized in text.
type Entity struct {
	Text string `json:"text"`
	Type Type   `json:"type"`
}

// Extractor recognizes typed entities in text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
}

// clean filters junk spans the models occasionally emit: sub-2-rune
// fragments, bare punctuation, and separator-only strings. Duplicate
// normalized surface forms keep only their first occurrence.
func clean(raw []Entity) []Entity {
	seen := make(map[string]struct{})
	out := make([]Entity, 0, len(raw))

	for _, e := range raw {
		text := strings.TrimSpace(e.Text)
		if len([]rune(text)) < 2 {
			continue
		}

		if _, ok := KnownTypes[e.Type]; !ok {
			continue
		}

		norm := textnorm.NormalizeKoreanPhrase(text)
		if norm == "" {
			continue
		}

		key := string(e.Type) + "\x00" + norm
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		out = append(out, Entity{Text: text, Type: e.Type})
	}

	return out
}
