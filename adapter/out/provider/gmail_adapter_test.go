package provider

import (
	"encoding/base64"
	"strings"
	"testing"

	"google.golang.org/api/gmail/v1"
)

func TestBuildRawMessage(t *testing.T) {
	raw := buildRawMessage("bob@example.com", "Lunch", "See you at noon.")

	wantLines := []string{
		"To: bob@example.com",
		"Subject: Lunch",
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
	}
	for _, line := range wantLines {
		if !strings.Contains(raw, line+"\r\n") {
			t.Errorf("raw message missing header line %q", line)
		}
	}
	if !strings.HasSuffix(raw, "\r\n\r\nSee you at noon.") {
		t.Errorf("raw message does not end with blank line and body: %q", raw)
	}
}

func TestDecodeBase64URL(t *testing.T) {
	plain := []byte("hello attachment")
	padded := base64.URLEncoding.EncodeToString(plain)
	unpadded := base64.RawURLEncoding.EncodeToString(plain)

	for _, encoded := range []string{padded, unpadded} {
		got, err := decodeBase64URL(encoded)
		if err != nil {
			t.Fatalf("decodeBase64URL(%q) error = %v", encoded, err)
		}
		if string(got) != string(plain) {
			t.Errorf("decodeBase64URL(%q) = %q", encoded, got)
		}
	}

	if _, err := decodeBase64URL("%%%not base64%%%"); err == nil {
		t.Error("decodeBase64URL accepted invalid input")
	}
}

func TestConvertPart(t *testing.T) {
	body := base64.URLEncoding.EncodeToString([]byte("<p>hi</p>"))
	src := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Headers: []*gmail.MessagePartHeader{
			{Name: "Subject", Value: "Hello"},
		},
		Parts: []*gmail.MessagePart{
			{
				MimeType: "text/html",
				Body:     &gmail.MessagePartBody{Data: body},
			},
			{
				MimeType: "application/pdf",
				Filename: "doc.pdf",
				Body:     &gmail.MessagePartBody{AttachmentId: "att-1"},
			},
		},
	}

	part := convertPart(src)
	if part == nil {
		t.Fatal("convertPart returned nil")
	}
	if len(part.Headers) != 1 || part.Headers[0].Value != "Hello" {
		t.Errorf("headers = %+v", part.Headers)
	}
	if len(part.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(part.Children))
	}
	if string(part.Children[0].BodyData) != "<p>hi</p>" {
		t.Errorf("body data = %q, want decoded", part.Children[0].BodyData)
	}
	if part.Children[1].AttachmentID != "att-1" || part.Children[1].Filename != "doc.pdf" {
		t.Errorf("attachment child = %+v", part.Children[1])
	}
}

func TestConvertPartNil(t *testing.T) {
	if convertPart(nil) != nil {
		t.Error("convertPart(nil) != nil")
	}
}

func TestNewOAuthConfigScopes(t *testing.T) {
	cfg := NewOAuthConfig("id", "secret", "https://api.example.com/auth/callback")

	want := []string{
		"openid",
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
		gmail.GmailModifyScope,
		"https://www.googleapis.com/auth/calendar.events",
	}
	if len(cfg.Scopes) != len(want) {
		t.Fatalf("scopes = %v", cfg.Scopes)
	}
	for i, scope := range want {
		if cfg.Scopes[i] != scope {
			t.Errorf("scope %d = %q, want %q", i, cfg.Scopes[i], scope)
		}
	}
}
