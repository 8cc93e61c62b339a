package ai

import (
	"context"
	"fmt"
	"strings"

	"mailpilot/core/domain"
	"mailpilot/pkg/apperr"
)

// DraftReply generates the body of an email reply. The persona string is
// interpolated verbatim into the system instruction so the model's voice
// matches the user's configured style. Output is raw text by design: reply
// bodies are unstructured, so no JSON contract applies.
func (o *Orchestrator) DraftReply(ctx context.Context, prompt, persona string, mode domain.ReplyMode) (string, error) {
	if err := o.available(); err != nil {
		return "", err
	}
	if strings.TrimSpace(prompt) == "" {
		return "", apperr.ValidationFailed("no prompt was provided for reply generation")
	}

	var system string
	switch mode {
	case domain.ReplyRegenerate:
		system = fmt.Sprintf(`You are %s. The user was shown a previous draft and asked for a
different version. Write a reply that takes a noticeably different angle or
tone from a typical first draft while covering the same request.
Only output the reply body, no subject line or headers.`, persona)
	default:
		system = fmt.Sprintf(`You are %s. Draft the full body of an email reply for the user's
request. Write naturally and stay contextually appropriate.
Only output the reply body, no subject line or headers.`, persona)
	}

	reply, err := o.completer.CompleteWithSystem(ctx, system, prompt)
	if err != nil {
		return "", apperr.UpstreamFailed("model", err)
	}
	return strings.TrimSpace(reply), nil
}
