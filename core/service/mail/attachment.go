package mail

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"mailpilot/pkg/logger"
)

// maxPDFPages bounds text-layer extraction on pathological documents.
const maxPDFPages = 50

// NotPDFError reports an attachment that could not be classified as a PDF
// by either its MIME type or its filename suffix.
type NotPDFError struct {
	Filename string
	MimeType string
}

func (e *NotPDFError) Error() string {
	return fmt.Sprintf("file %q was not identified as a PDF (MIME type %q)", e.Filename, e.MimeType)
}

// UnreadableError reports a PDF from which no readable text could be
// recovered by either the text layer or OCR.
type UnreadableError struct {
	Filename string
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("could not extract readable text from %q; the PDF may be an image or encrypted", e.Filename)
}

// Extractor recovers text from attachment bytes. When the text layer of a
// PDF is shorter than MinTextLen the document is treated as probably
// scanned and the OCR fallback runs; the longer candidate wins.
type Extractor struct {
	MinTextLen int

	// ocr rasterizes the PDF and runs character recognition. Swappable in
	// tests.
	ocr func(data []byte) (string, error)
}

// NewExtractor creates an attachment text extractor.
func NewExtractor(minTextLen int) *Extractor {
	return &Extractor{
		MinTextLen: minTextLen,
		ocr:        ocrPDF,
	}
}

// IsPDF classifies an attachment as a PDF. Either the MIME type or the
// filename suffix alone is sufficient.
func IsPDF(mimeType, filename string) bool {
	return strings.Contains(strings.ToLower(mimeType), "pdf") ||
		strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// ExtractText recovers text from attachment bytes. Non-PDF attachments
// return a NotPDFError; callers surface its message as a diagnostic rather
// than failing the whole response.
func (e *Extractor) ExtractText(mimeType string, data []byte, filename string) (string, error) {
	if !IsPDF(mimeType, filename) {
		return "", &NotPDFError{Filename: filename, MimeType: mimeType}
	}

	text := extractTextLayer(data)

	if len(strings.TrimSpace(text)) < e.MinTextLen && e.ocr != nil {
		ocrText, err := e.ocr(data)
		if err != nil {
			logger.WithError(err).Warn("OCR fallback failed for %q, keeping text layer", filename)
		} else if len(strings.TrimSpace(ocrText)) > len(strings.TrimSpace(text)) {
			text = ocrText
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &UnreadableError{Filename: filename}
	}
	return text, nil
}

// extractTextLayer reads the PDF text layer page by page. Pages that fail
// to parse are skipped; a document with no parsable pages yields "".
func extractTextLayer(data []byte) string {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	var b strings.Builder
	pages := reader.NumPage()
	if pages > maxPDFPages {
		pages = maxPDFPages
	}
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(map[string]*pdf.Font{})
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}

// ocrPDF rasterizes each page with pdftoppm and runs tesseract over the
// images. All temporary artifacts live in one directory removed on every
// exit path.
func ocrPDF(data []byte) (_ string, err error) {
	dir, err := os.MkdirTemp("", "mailpilot-ocr-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	pdfPath := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return "", fmt.Errorf("write temp pdf: %w", err)
	}

	// 300 DPI matches what scanned-document OCR expects.
	cmd := exec.Command("pdftoppm", "-r", "300", "-png", pdfPath, filepath.Join(dir, "page"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	images, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil || len(images) == 0 {
		return "", fmt.Errorf("no rasterized pages produced")
	}
	sort.Strings(images)

	var b strings.Builder
	for _, img := range images {
		out, err := exec.Command("tesseract", img, "stdout", "-l", "eng").Output()
		if err != nil {
			return "", fmt.Errorf("tesseract: %w", err)
		}
		b.Write(out)
		b.WriteString("\n")
	}
	return b.String(), nil
}
