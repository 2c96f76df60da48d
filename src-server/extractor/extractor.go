// Package extractor turns a free-form scheduling request into a
// model.ParsedEvent with the help of a language-understanding oracle.
//
// The oracle is a capability, not a client: anything that maps an
// instruction turn plus a user turn to one text answer will do.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"nlcal/src-server/model"
)

var ErrEmptyRequest = errors.New("request text is empty")

// Oracle answers one two-turn exchange: a fixed system instruction, then
// the user's text.
type Oracle interface {
	Complete(ctx context.Context, systemPrompt string, userText string) (string, error)
}

// OracleFunc adapts a plain function to Oracle.
type OracleFunc func(ctx context.Context, systemPrompt string, userText string) (string, error)

func (f OracleFunc) Complete(ctx context.Context, systemPrompt string, userText string) (string, error) {
	return f(ctx, systemPrompt, userText)
}

// Extract asks the oracle once (no retries) and strictly parses its answer.
//
// Errors from the oracle are returned wrapped but otherwise untouched. A
// response that isn't the expected JSON yields a
// *model.SchemaViolationError holding the raw text.
func Extract(ctx context.Context, oracle Oracle, text string, referenceDate time.Time) (model.ParsedEvent, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ParsedEvent{}, fmt.Errorf("Extract: %w", ErrEmptyRequest)
	}
	if oracle == nil {
		return model.ParsedEvent{}, fmt.Errorf("Extract: oracle is nil")
	}

	prompt := SystemPrompt(referenceDate)
	slog.Debug("Extract", "reference_date", referenceDate.Format(ReferenceDateLayout), "text", text)

	raw, err := oracle.Complete(ctx, prompt, text)
	if err != nil {
		return model.ParsedEvent{}, fmt.Errorf("Extract: %w", err)
	}
	slog.Debug("Extract", "raw", raw)

	event, err := model.ParseEvent(raw)
	if err != nil {
		return model.ParsedEvent{}, fmt.Errorf("Extract: %w", err)
	}
	event.ApplyDefaults()

	return event, nil
}
