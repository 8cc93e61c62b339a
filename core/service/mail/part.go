// Package mail normalizes provider message payloads: it flattens the MIME
// part tree, resolves body content, and recovers text from attachments.
package mail

import "strings"

// Header is a single MIME header of a part.
type Header struct {
	Name  string
	Value string
}

// Part is one node of a message's MIME tree. A leaf carries decoded body
// data or an attachment reference; a branch carries child parts. Both at
// once is possible and handled.
type Part struct {
	MimeType     string
	Filename     string
	Headers      []Header
	BodyData     []byte
	AttachmentID string
	Children     []*Part
}

// Flatten returns the part tree in breadth-first order: parents before
// children, siblings before the next level. Callers rely on this order for
// first-match-wins header lookup.
func Flatten(root *Part) []*Part {
	if root == nil {
		return nil
	}
	queue := []*Part{root}
	var flat []*Part
	for len(queue) > 0 {
		part := queue[0]
		queue = queue[1:]
		flat = append(flat, part)
		queue = append(queue, part.Children...)
	}
	return flat
}

// HeaderValue returns the first header with the given name (case
// insensitive) across the flattened parts, or the fallback.
func HeaderValue(parts []*Part, name, fallback string) string {
	for _, part := range parts {
		for _, h := range part.Headers {
			if strings.EqualFold(h.Name, name) {
				return h.Value
			}
		}
	}
	return fallback
}

// ExtractBody walks the tree depth-first and records inline body data under
// its MIME type bucket. A later part with the same MIME type overwrites an
// earlier one, so the last-seen value per bucket wins.
func ExtractBody(root *Part) (html, plain string) {
	var walk func(p *Part)
	walk = func(p *Part) {
		if p == nil {
			return
		}
		if len(p.BodyData) > 0 {
			switch p.MimeType {
			case "text/html":
				html = string(p.BodyData)
			case "text/plain":
				plain = string(p.BodyData)
			}
		}
		for _, child := range p.Children {
			walk(child)
		}
	}
	walk(root)
	return html, plain
}

// Attachments enumerates attachment descriptors in flattened order. A part
// is an attachment when it carries an attachment reference; a missing
// filename falls back to the Content-Disposition header.
func Attachments(parts []*Part) []AttachmentRef {
	var refs []AttachmentRef
	for _, part := range parts {
		if part.AttachmentID == "" {
			continue
		}
		filename := part.Filename
		if filename == "" {
			filename = dispositionFilename(part.Headers)
		}
		refs = append(refs, AttachmentRef{
			ID:       part.AttachmentID,
			Filename: filename,
			MimeType: part.MimeType,
		})
	}
	return refs
}

// AttachmentRef identifies one attachment within a message.
type AttachmentRef struct {
	ID       string
	Filename string
	MimeType string
}

// dispositionFilename pulls filename= out of a Content-Disposition header.
func dispositionFilename(headers []Header) string {
	for _, h := range headers {
		if !strings.EqualFold(h.Name, "Content-Disposition") {
			continue
		}
		for _, segment := range strings.Split(h.Value, ";") {
			segment = strings.TrimSpace(segment)
			if strings.HasPrefix(strings.ToLower(segment), "filename=") {
				name := segment[len("filename="):]
				return strings.Trim(name, `"`)
			}
		}
	}
	return ""
}
