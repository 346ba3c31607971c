package pipeline

import (
	"strings"

	"github.com/quotelens/quotelens/internal/core/entities"
)

// trumpNameVariants are the surface forms that mark a person entity or text
// as referring to the transcript archive's subject.
var trumpNameVariants = []string{
	"트럼프",
	"도널드 트럼프",
	"도널드 j 트럼프",
	"donald trump",
	"donald j. trump",
	"president trump",
	"trump",
}

var whiteHouseCues = []string{
	"백악관",
	"white house",
}

// detectTrumpContext combines entity labels and literal cues to decide
// whether the transcript archive should be searched first.
func detectTrumpContext(articleText, quoteText string, entitiesByType map[entities.Type][]string) bool {
	for _, person := range entitiesByType[entities.TypePerson] {
		if matchesTrumpVariant(person) {
			return true
		}
	}

	if matchesTrumpVariant(articleText) || matchesTrumpVariant(quoteText) {
		return true
	}

	return containsWhiteHouseCue(articleText) || containsWhiteHouseCue(quoteText)
}

func matchesTrumpVariant(text string) bool {
	if text == "" {
		return false
	}

	lower := strings.ToLower(text)

	for _, variant := range trumpNameVariants {
		if strings.Contains(lower, variant) {
			return true
		}
	}

	return false
}

func containsWhiteHouseCue(text string) bool {
	if text == "" {
		return false
	}

	lower := strings.ToLower(text)

	for _, cue := range whiteHouseCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}

	return false
}
