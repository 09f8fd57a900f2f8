package pdf

import (
	"bytes"
	"strings"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/goquery"
)

// magic starts every PDF file.
var magic = []byte("%PDF-")

// IsData reports whether data is a PDF file, judged by its magic bytes,
// its declared content type, or its location's extension.
func IsData(data []byte, location, contentType string) bool {
	if bytes.HasPrefix(data, magic) {
		return true
	}
	mt, _, _ := strings.Cut(contentType, ";")
	if strings.EqualFold(strings.TrimSpace(mt), goquery.PDFContentType) {
		return true
	}
	loc, _, _ := strings.Cut(strings.ToLower(location), "?")
	return strings.HasSuffix(loc, ".pdf")
}

// Load returns a PDF document for PDF data and an HTML document otherwise.
func Load(data []byte, location, contentType string) (excerpt.Document, error) {
	if IsData(data, location, contentType) {
		return NewDocument(data, location)
	}
	if contentType == "" {
		contentType = "text/html"
	}
	return goquery.NewDocument(string(data), location, contentType)
}
