package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"mailpilot/pkg/apperr"
)

const datetimeSystem = `You resolve natural-language date and time phrases into absolute UTC
instants. Rules:
- The event lasts exactly one hour.
- If the phrase names no time of day, the event starts at 09:00 UTC.
- Resolve relative phrases ("next Tuesday", "tomorrow afternoon") against
  the reference date you are given.

Respond with exactly this JSON object and nothing else:
{"start": "ISO-8601 UTC timestamp", "end": "ISO-8601 UTC timestamp"}

Do not wrap the JSON in markdown fences.`

// ParseDateTime resolves a natural-language date phrase into a one-hour
// interval. Unlike summarization there is no degraded fallback: a silently
// wrong calendar event is worse than no event, so any contract violation is
// a hard error.
func (o *Orchestrator) ParseDateTime(ctx context.Context, ref time.Time, phrase, emailContext string) (start, end time.Time, err error) {
	if err := o.available(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if strings.TrimSpace(phrase) == "" {
		return time.Time{}, time.Time{}, apperr.ValidationFailed("no date phrase was provided")
	}

	user := fmt.Sprintf("Reference date (today): %s\nPhrase: %s", ref.UTC().Format("2006-01-02"), phrase)
	if strings.TrimSpace(emailContext) != "" {
		user += fmt.Sprintf("\n\nSurrounding email context for disambiguation:\n%s", emailContext)
	}

	raw, err := o.completer.CompleteWithSystem(ctx, datetimeSystem, user)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.UpstreamFailed("model", err)
	}

	var window struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &window); err != nil {
		return time.Time{}, time.Time{}, apperr.AIContract("date parse output was not valid JSON", err)
	}

	start, err = time.Parse(time.RFC3339, window.Start)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.AIContract("date parse output had an invalid start timestamp", err)
	}
	end, err = time.Parse(time.RFC3339, window.End)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.AIContract("date parse output had an invalid end timestamp", err)
	}

	return start.UTC(), end.UTC(), nil
}
