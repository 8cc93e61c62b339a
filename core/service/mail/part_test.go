package mail

import (
	"testing"
)

func TestFlattenBreadthFirst(t *testing.T) {
	// A
	// ├── B
	// └── C
	//     └── D
	root := &Part{
		MimeType: "multipart/mixed",
		Headers:  []Header{{Name: "Subject", Value: "A"}},
		Children: []*Part{
			{MimeType: "text/plain", Headers: []Header{{Name: "Subject", Value: "B"}}},
			{
				MimeType: "multipart/alternative",
				Headers:  []Header{{Name: "Subject", Value: "C"}},
				Children: []*Part{
					{MimeType: "text/html", Headers: []Header{{Name: "Subject", Value: "D"}}},
				},
			},
		},
	}

	flat := Flatten(root)
	if len(flat) != 4 {
		t.Fatalf("Flatten returned %d parts, want 4", len(flat))
	}

	want := []string{"A", "B", "C", "D"}
	for i, p := range flat {
		if p.Headers[0].Value != want[i] {
			t.Errorf("position %d = %q, want %q", i, p.Headers[0].Value, want[i])
		}
	}
}

func TestFlattenNil(t *testing.T) {
	if got := Flatten(nil); got != nil {
		t.Errorf("Flatten(nil) = %v, want nil", got)
	}
}

func TestHeaderValue(t *testing.T) {
	parts := []*Part{
		{Headers: []Header{{Name: "From", Value: "alice@example.com"}}},
		{Headers: []Header{{Name: "From", Value: "bob@example.com"}}},
	}

	tests := []struct {
		name     string
		header   string
		fallback string
		want     string
	}{
		{"first match wins", "From", "none", "alice@example.com"},
		{"case insensitive", "fRoM", "none", "alice@example.com"},
		{"missing uses fallback", "Subject", "No Subject", "No Subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeaderValue(parts, tt.header, tt.fallback); got != tt.want {
				t.Errorf("HeaderValue(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestExtractBodyLastWins(t *testing.T) {
	root := &Part{
		MimeType: "multipart/alternative",
		Children: []*Part{
			{MimeType: "text/plain", BodyData: []byte("first plain")},
			{MimeType: "text/html", BodyData: []byte("<p>first html</p>")},
			{
				MimeType: "multipart/related",
				Children: []*Part{
					{MimeType: "text/html", BodyData: []byte("<p>second html</p>")},
				},
			},
		},
	}

	html, plain := ExtractBody(root)
	if html != "<p>second html</p>" {
		t.Errorf("html = %q, want the later part to win", html)
	}
	if plain != "first plain" {
		t.Errorf("plain = %q, want %q", plain, "first plain")
	}
}

func TestExtractBodyIgnoresEmptyData(t *testing.T) {
	root := &Part{
		MimeType: "multipart/alternative",
		Children: []*Part{
			{MimeType: "text/plain", BodyData: []byte("content")},
			{MimeType: "text/plain"},
		},
	}
	_, plain := ExtractBody(root)
	if plain != "content" {
		t.Errorf("plain = %q, an empty part must not overwrite content", plain)
	}
}

func TestAttachments(t *testing.T) {
	parts := []*Part{
		{MimeType: "text/plain", BodyData: []byte("body")},
		{MimeType: "application/pdf", Filename: "report.pdf", AttachmentID: "att-1"},
		{
			MimeType:     "application/octet-stream",
			AttachmentID: "att-2",
			Headers: []Header{
				{Name: "Content-Disposition", Value: `attachment; filename="invoice.pdf"`},
			},
		},
	}

	refs := Attachments(parts)
	if len(refs) != 2 {
		t.Fatalf("got %d attachments, want 2", len(refs))
	}
	if refs[0].ID != "att-1" || refs[0].Filename != "report.pdf" {
		t.Errorf("first ref = %+v", refs[0])
	}
	if refs[1].Filename != "invoice.pdf" {
		t.Errorf("second ref filename = %q, want Content-Disposition fallback", refs[1].Filename)
	}
}

func TestDispositionFilename(t *testing.T) {
	tests := []struct {
		name    string
		headers []Header
		want    string
	}{
		{
			"quoted filename",
			[]Header{{Name: "Content-Disposition", Value: `attachment; filename="a b.pdf"`}},
			"a b.pdf",
		},
		{
			"unquoted filename",
			[]Header{{Name: "content-disposition", Value: "attachment; filename=plain.pdf"}},
			"plain.pdf",
		},
		{
			"no disposition",
			[]Header{{Name: "Content-Type", Value: "application/pdf"}},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dispositionFilename(tt.headers); got != tt.want {
				t.Errorf("dispositionFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}
