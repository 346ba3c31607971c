package entities

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quotelens/quotelens/internal/core/llm"
)

const extractPrompt = `Extract named entities from the text below. Respond with JSON only, in the form {"entities":[{"text":"...","type":"..."}]}.
Allowed types: PER (person), ORG (organization), LOC (location), DAT (date expression), AFW (artifact, work, or product).
The text may be Korean, English, or mixed. Keep each entity's original surface form. Do not invent entities.

Text:
%s`

// LLMExtractor asks the chat model for typed entity spans.
type LLMExtractor struct {
	client llm.Client
	logger *zerolog.Logger
}

func NewLLMExtractor(client llm.Client, logger *zerolog.Logger) *LLMExtractor {
	return &LLMExtractor{client: client, logger: logger}
}

type entityResponse struct {
	Entities []Entity `json:"entities"`
}

func (e *LLMExtractor) Extract(ctx context.Context, text string) ([]Entity, error) {
	if text == "" {
		return nil, nil
	}

	content, err := e.client.CompleteJSON(ctx, fmt.Sprintf(extractPrompt, text))
	if err != nil {
		return nil, fmt.Errorf("entity extraction: %w", err)
	}

	var parsed entityResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		// Some models wrap the object in an array; try that before giving up.
		var alt []Entity
		if errAlt := json.Unmarshal([]byte(content), &alt); errAlt == nil {
			return clean(alt), nil
		}

		return nil, fmt.Errorf("parse entity response: %w", err)
	}

	result := clean(parsed.Entities)

	e.logger.Debug().Int("entities", len(result)).Msg("llm entity extraction complete")

	return result, nil
}
