package mail

import (
	"fmt"
	"strings"

	"mailpilot/core/domain"
)

// ThreadText concatenates a thread's messages, in provider order, into the
// linear narrative consumed by the thread-summarization prompt. Each
// message contributes a header line naming sender and date, followed by its
// plain text (stripped HTML when no plain part exists).
func ThreadText(messages []domain.ThreadMessage) string {
	var b strings.Builder
	for _, msg := range messages {
		text := strings.TrimSpace(msg.Plain)
		if text == "" {
			text = StripHTML(msg.HTML)
		}
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "From %s on %s:\n%s\n\n", msg.Sender, msg.Date, text)
	}
	return strings.TrimSpace(b.String())
}
