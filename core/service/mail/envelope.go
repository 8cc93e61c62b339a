package mail

import "mailpilot/core/domain"

// BuildEnvelope converts a provider message tree into the flat envelope.
// Subject and sender come from first-match-wins header lookup over the
// breadth-first part order; the body prefers the HTML representation.
func BuildEnvelope(id, threadID, snippet string, root *Part) domain.Envelope {
	flat := Flatten(root)

	env := domain.Envelope{
		ID:       id,
		ThreadID: threadID,
		Subject:  HeaderValue(flat, "Subject", "No Subject"),
		Sender:   HeaderValue(flat, "From", "Unknown Sender"),
		Snippet:  snippet,
	}

	html, plain := ExtractBody(root)
	if html != "" {
		env.Body = html
	} else if plain != "" {
		env.Body = plain
	} else {
		env.Body = "No text content found."
	}

	for _, ref := range Attachments(flat) {
		env.Attachments = append(env.Attachments, domain.Attachment{
			ID:       ref.ID,
			Filename: ref.Filename,
			MimeType: ref.MimeType,
		})
	}

	return env
}
