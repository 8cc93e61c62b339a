package mail

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		filename string
		want     bool
	}{
		{"mime type alone", "application/pdf", "data.bin", true},
		{"filename suffix alone", "application/octet-stream", "report.PDF", true},
		{"neither", "image/png", "photo.png", false},
		{"mime with pdf substring", "application/x-pdf", "file", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPDF(tt.mimeType, tt.filename); got != tt.want {
				t.Errorf("IsPDF(%q, %q) = %v, want %v", tt.mimeType, tt.filename, got, tt.want)
			}
		})
	}
}

func TestExtractTextRejectsNonPDF(t *testing.T) {
	e := NewExtractor(100)
	_, err := e.ExtractText("image/png", []byte("bytes"), "photo.png")

	var notPDF *NotPDFError
	if !errors.As(err, &notPDF) {
		t.Fatalf("err = %v, want NotPDFError", err)
	}
	if notPDF.Filename != "photo.png" {
		t.Errorf("Filename = %q", notPDF.Filename)
	}
}

// Garbage bytes with a .pdf name produce an empty text layer, which drives
// every test below through the OCR fallback.
func TestExtractTextOCRFallback(t *testing.T) {
	tests := []struct {
		name    string
		ocrText string
		ocrErr  error
		want    string
		wantErr bool
	}{
		{"ocr recovers text", "scanned page content", nil, "scanned page content", false},
		{"ocr fails and nothing remains", "", fmt.Errorf("binary missing"), "", true},
		{"ocr returns nothing", "", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Extractor{
				MinTextLen: 100,
				ocr: func(data []byte) (string, error) {
					return tt.ocrText, tt.ocrErr
				},
			}

			got, err := e.ExtractText("application/pdf", []byte("not a real pdf"), "scan.pdf")
			if tt.wantErr {
				var unreadable *UnreadableError
				if !errors.As(err, &unreadable) {
					t.Fatalf("err = %v, want UnreadableError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractTextKeepsLongerCandidate(t *testing.T) {
	// The OCR result is shorter than what it would replace; the original
	// candidate must survive.
	calls := 0
	e := &Extractor{
		MinTextLen: 100,
		ocr: func(data []byte) (string, error) {
			calls++
			return "", nil
		},
	}

	_, err := e.ExtractText("application/pdf", []byte("junk"), "x.pdf")
	if calls != 1 {
		t.Errorf("ocr calls = %d, want 1 (text layer below threshold)", calls)
	}
	var unreadable *UnreadableError
	if !errors.As(err, &unreadable) {
		t.Fatalf("err = %v, want UnreadableError when both candidates are empty", err)
	}
}

func TestExtractTextSkipsOCRWhenNil(t *testing.T) {
	e := &Extractor{MinTextLen: 100, ocr: nil}
	_, err := e.ExtractText("application/pdf", []byte("junk"), "x.pdf")
	var unreadable *UnreadableError
	if !errors.As(err, &unreadable) {
		t.Fatalf("err = %v, want UnreadableError without an OCR hook", err)
	}
}
