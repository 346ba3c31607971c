// Package translate provides Korean-to-English term translation for query
// building, plus Wikidata-backed resolution of person names to their
// canonical English labels.
package translate

import (
	"context"
	"fmt"

	"github.com/quotelens/quotelens/internal/core/llm"
)

// Translator turns a Korean term into its English equivalent. A failure for
// one term never aborts query building; callers drop the term instead.
type Translator interface {
	TranslateToEnglish(ctx context.Context, text string) (string, error)
}

type llmAdapter struct {
	client llm.Client
}

// NewLLMTranslator adapts the chat-completion client to the Translator
// capability.
func NewLLMTranslator(client llm.Client) Translator {
	return &llmAdapter{client: client}
}

func (a *llmAdapter) TranslateToEnglish(ctx context.Context, text string) (string, error) {
	res, err := a.client.TranslateText(ctx, text, llm.LanguageEnglish)
	if err != nil {
		return "", fmt.Errorf("translate to english: %w", err)
	}

	return res, nil
}

// MockTranslator is a table-driven Translator for tests. Terms missing from
// the table are echoed back.
type MockTranslator struct {
	Table map[string]string
	Err   error
}

var _ Translator = (*MockTranslator)(nil)

func (m *MockTranslator) TranslateToEnglish(_ context.Context, text string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}

	if out, ok := m.Table[text]; ok {
		return out, nil
	}

	return text, nil
}
