// Package ai builds contract-bound prompts and enforces that model output
// conforms to a fixed JSON shape before it is trusted.
package ai

import (
	"context"
	"strings"

	"github.com/goccy/go-json"

	"mailpilot/core/domain"
	"mailpilot/core/port/out"
	"mailpilot/pkg/apperr"
	"mailpilot/pkg/logger"
)

// Orchestrator drives all model calls. It is constructed with an explicit
// completer; a nil completer puts every operation into a typed unavailable
// state instead of a module-level nullable.
type Orchestrator struct {
	completer out.Completer
}

// New creates an orchestrator. completer may be nil when no model is
// configured; operations then fail fast with AIUnavailable.
func New(completer out.Completer) *Orchestrator {
	return &Orchestrator{completer: completer}
}

func (o *Orchestrator) available() error {
	if o == nil || o.completer == nil {
		return apperr.AIUnavailable()
	}
	return nil
}

const singleSummarySystem = `You are an email summarization assistant.
Summarize the email content you are given.

Respond with exactly this JSON object and nothing else:
{
  "summary": "one concise paragraph",
  "action_items": ["..."],
  "key_dates": ["..."]
}

Use empty lists, never null, when there are no action items or dates.
Do not wrap the JSON in markdown fences.`

const threadSummarySystem = `You are an email thread summarization assistant.
You are given an entire conversation as a chronological narrative. Produce a
consolidated summary of the whole discussion, deduplicating action items and
dates repeated across messages.

Respond with exactly this JSON object and nothing else:
{
  "summary": "consolidated narrative of the conversation",
  "action_items": ["deduplicated action items"],
  "key_dates": ["deduplicated dates and deadlines"],
  "participants": ["names of everyone in the conversation"]
}

Use empty lists, never null, when a field has no entries.
Do not wrap the JSON in markdown fences.`

// Summarize produces a structured summary of a single message or a thread
// narrative. Blank input is rejected before any network call. A model
// response that violates the JSON contract degrades to a fixed error
// payload, never a partial structure.
func (o *Orchestrator) Summarize(ctx context.Context, text string, mode domain.SummaryMode) (domain.Summary, error) {
	if err := o.available(); err != nil {
		return domain.Summary{}, err
	}
	if strings.TrimSpace(text) == "" {
		return domain.Summary{}, apperr.ValidationFailed("no text was provided to summarize")
	}

	system := singleSummarySystem
	if mode == domain.SummaryThread {
		system = threadSummarySystem
	}

	raw, err := o.completer.CompleteWithSystem(ctx, system, text)
	if err != nil {
		logger.WithError(err).Error("summarization model call failed")
		return errorSummary("could not generate summary: model request failed"), nil
	}

	return parseSummary(raw), nil
}

// parseSummary enforces the summary contract. Anything unparsable is
// replaced wholesale with the error payload.
func parseSummary(raw string) domain.Summary {
	var s domain.Summary
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &s); err != nil {
		return errorSummary("model output was not valid JSON")
	}
	if s.Summary == "" {
		return errorSummary("model output was missing the summary field")
	}
	if s.ActionItems == nil {
		s.ActionItems = []string{}
	}
	if s.KeyDates == nil {
		s.KeyDates = []string{}
	}
	return s
}

func errorSummary(msg string) domain.Summary {
	return domain.Summary{
		ActionItems: []string{},
		KeyDates:    []string{},
		Error:       msg,
	}
}

// StripCodeFence removes surrounding markdown code-fence markers so that a
// fenced JSON response parses identically to a bare one.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
