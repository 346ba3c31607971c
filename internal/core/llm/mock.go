package llm

import (
	"context"
)

// MockClient is a programmable Client for tests. Zero value translates by
// echoing input and completes with an empty JSON object.
type MockClient struct {
	TranslateFunc    func(ctx context.Context, text, targetLanguage string) (string, error)
	CompleteJSONFunc func(ctx context.Context, prompt string) (string, error)
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) TranslateText(ctx context.Context, text, targetLanguage string) (string, error) {
	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, targetLanguage)
	}

	return text, nil
}

func (m *MockClient) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	if m.CompleteJSONFunc != nil {
		return m.CompleteJSONFunc(ctx, prompt)
	}

	return "{}", nil
}
