// Package llm wraps the chat-completion backend that powers translation and
// named-entity extraction. The pipeline never talks to a vendor SDK
// directly; it depends on Client and degrades when the client errors.
package llm

import (
	"context"
)

// Client is the capability surface the pipeline consumes.
type Client interface {
	// TranslateText translates text to the target language, returning only
	// the translated string.
	TranslateText(ctx context.Context, text, targetLanguage string) (string, error)

	// CompleteJSON sends a prompt with JSON response formatting enabled and
	// returns the raw JSON content of the first choice.
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// Target languages used by the pipeline.
const (
	LanguageEnglish = "English"
)
