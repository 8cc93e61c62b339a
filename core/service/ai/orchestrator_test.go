package ai

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"mailpilot/core/domain"
	"mailpilot/pkg/apperr"
)

// fakeCompleter records calls and plays back a canned response.
type fakeCompleter struct {
	response string
	err      error
	calls    int

	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.lastUser = prompt
	return f.response, f.err
}

func (f *fakeCompleter) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	return f.response, f.err
}

func TestSummarizeUnavailable(t *testing.T) {
	o := New(nil)
	_, err := o.Summarize(context.Background(), "some text", domain.SummarySingle)
	if !apperr.IsCode(err, apperr.CodeAIUnavailable) {
		t.Errorf("err = %v, want AI_UNAVAILABLE", err)
	}
}

func TestSummarizeBlankInputSkipsModel(t *testing.T) {
	fake := &fakeCompleter{}
	o := New(fake)

	_, err := o.Summarize(context.Background(), "   \n\t  ", domain.SummarySingle)
	if !apperr.IsCode(err, apperr.CodeValidationFailed) {
		t.Errorf("err = %v, want VALIDATION_FAILED", err)
	}
	if fake.calls != 0 {
		t.Errorf("model was called %d times for blank input, want 0", fake.calls)
	}
}

func TestSummarizeParsesFencedAndBareJSON(t *testing.T) {
	payload := `{"summary":"team sync moved","action_items":["update invite"],"key_dates":["2025-09-05"]}`

	tests := []struct {
		name     string
		response string
	}{
		{"bare JSON", payload},
		{"fenced JSON", "```json\n" + payload + "\n```"},
		{"fenced without language", "```\n" + payload + "\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(&fakeCompleter{response: tt.response})
			summary, err := o.Summarize(context.Background(), "meeting email", domain.SummarySingle)
			if err != nil {
				t.Fatalf("Summarize() error = %v", err)
			}
			if summary.Error != "" {
				t.Fatalf("summary.Error = %q, want clean parse", summary.Error)
			}
			if summary.Summary != "team sync moved" {
				t.Errorf("Summary = %q", summary.Summary)
			}
			if len(summary.ActionItems) != 1 || len(summary.KeyDates) != 1 {
				t.Errorf("lists = %v / %v", summary.ActionItems, summary.KeyDates)
			}
		})
	}
}

func TestSummarizeDegradesOnBadOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"invalid JSON", "I cannot do that", nil},
		{"missing summary field", `{"action_items":[]}`, nil},
		{"model error", "", fmt.Errorf("rate limited")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(&fakeCompleter{response: tt.response, err: tt.err})
			summary, err := o.Summarize(context.Background(), "email body", domain.SummarySingle)
			if err != nil {
				t.Fatalf("Summarize() error = %v, degraded output must not raise", err)
			}
			if summary.Error == "" {
				t.Fatal("summary.Error is empty, want diagnostic")
			}
			if summary.ActionItems == nil || summary.KeyDates == nil {
				t.Error("degraded payload has nil lists, want empty slices")
			}
		})
	}
}

func TestSummarizeNilListsBecomeEmpty(t *testing.T) {
	o := New(&fakeCompleter{response: `{"summary":"short note"}`})
	summary, err := o.Summarize(context.Background(), "note", domain.SummarySingle)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.ActionItems == nil || summary.KeyDates == nil {
		t.Errorf("lists = %v / %v, want non-nil", summary.ActionItems, summary.KeyDates)
	}
}

func TestSummarizeModeSelectsPrompt(t *testing.T) {
	fake := &fakeCompleter{response: `{"summary":"s"}`}
	o := New(fake)

	if _, err := o.Summarize(context.Background(), "text", domain.SummaryThread); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !strings.Contains(fake.lastSystem, "participants") {
		t.Error("thread mode did not use the thread prompt")
	}

	if _, err := o.Summarize(context.Background(), "text", domain.SummarySingle); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if strings.Contains(fake.lastSystem, "participants") {
		t.Error("single mode used the thread prompt")
	}
}

func TestDraftReply(t *testing.T) {
	fake := &fakeCompleter{response: "  Sure, Friday works for me.  \n"}
	o := New(fake)

	reply, err := o.DraftReply(context.Background(), "accept the meeting", "a cheerful manager", domain.ReplyFresh)
	if err != nil {
		t.Fatalf("DraftReply() error = %v", err)
	}
	if reply != "Sure, Friday works for me." {
		t.Errorf("reply = %q, want trimmed output", reply)
	}
	if !strings.Contains(fake.lastSystem, "a cheerful manager") {
		t.Error("persona was not interpolated into the system prompt")
	}
}

func TestDraftReplyModes(t *testing.T) {
	fake := &fakeCompleter{response: "draft"}
	o := New(fake)

	if _, err := o.DraftReply(context.Background(), "p", "a writer", domain.ReplyRegenerate); err != nil {
		t.Fatalf("DraftReply() error = %v", err)
	}
	regenerateSystem := fake.lastSystem

	if _, err := o.DraftReply(context.Background(), "p", "a writer", domain.ReplyFresh); err != nil {
		t.Fatalf("DraftReply() error = %v", err)
	}
	if fake.lastSystem == regenerateSystem {
		t.Error("fresh and regenerate modes used the same system prompt")
	}
	if !strings.Contains(regenerateSystem, "different") {
		t.Error("regenerate prompt does not ask for a different version")
	}
}

func TestDraftReplyBlankPrompt(t *testing.T) {
	fake := &fakeCompleter{}
	o := New(fake)
	_, err := o.DraftReply(context.Background(), "  ", "a writer", domain.ReplyFresh)
	if !apperr.IsCode(err, apperr.CodeValidationFailed) {
		t.Errorf("err = %v, want VALIDATION_FAILED", err)
	}
	if fake.calls != 0 {
		t.Errorf("model calls = %d, want 0", fake.calls)
	}
}

func TestDraftReplyUpstreamFailure(t *testing.T) {
	o := New(&fakeCompleter{err: fmt.Errorf("connection reset")})
	_, err := o.DraftReply(context.Background(), "p", "a writer", domain.ReplyFresh)
	if !apperr.IsCode(err, apperr.CodeUpstreamFailed) {
		t.Errorf("err = %v, want UPSTREAM_FAILED", err)
	}
}

func TestParseDateTime(t *testing.T) {
	fake := &fakeCompleter{response: `{"start":"2025-11-18T09:00:00Z","end":"2025-11-18T10:00:00Z"}`}
	o := New(fake)

	ref := time.Date(2025, 11, 14, 15, 30, 0, 0, time.UTC)
	start, end, err := o.ParseDateTime(context.Background(), ref, "next Tuesday", "")
	if err != nil {
		t.Fatalf("ParseDateTime() error = %v", err)
	}
	if !start.Equal(time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if end.Sub(start) != time.Hour {
		t.Errorf("duration = %v, want 1h", end.Sub(start))
	}
	if !strings.Contains(fake.lastUser, "2025-11-14") {
		t.Error("reference date was not passed to the model")
	}
}

func TestParseDateTimeIncludesContext(t *testing.T) {
	fake := &fakeCompleter{response: `{"start":"2025-11-18T09:00:00Z","end":"2025-11-18T10:00:00Z"}`}
	o := New(fake)

	_, _, err := o.ParseDateTime(context.Background(), time.Now(), "the Friday we discussed", "see you on the 21st")
	if err != nil {
		t.Fatalf("ParseDateTime() error = %v", err)
	}
	if !strings.Contains(fake.lastUser, "see you on the 21st") {
		t.Error("email context was not passed to the model")
	}
}

func TestParseDateTimeContractViolations(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not JSON", "next Tuesday at nine"},
		{"invalid start", `{"start":"soon","end":"2025-11-18T10:00:00Z"}`},
		{"invalid end", `{"start":"2025-11-18T09:00:00Z","end":"later"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(&fakeCompleter{response: tt.response})
			_, _, err := o.ParseDateTime(context.Background(), time.Now(), "tomorrow", "")
			if !apperr.IsCode(err, apperr.CodeAIContract) {
				t.Errorf("err = %v, want AI_CONTRACT_VIOLATION", err)
			}
		})
	}
}

func TestParseDateTimeBlankPhrase(t *testing.T) {
	fake := &fakeCompleter{}
	o := New(fake)
	_, _, err := o.ParseDateTime(context.Background(), time.Now(), "", "")
	if !apperr.IsCode(err, apperr.CodeValidationFailed) {
		t.Errorf("err = %v, want VALIDATION_FAILED", err)
	}
	if fake.calls != 0 {
		t.Errorf("model calls = %d, want 0", fake.calls)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tt := range tests {
		if got := StripCodeFence(tt.input); got != tt.want {
			t.Errorf("StripCodeFence(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
