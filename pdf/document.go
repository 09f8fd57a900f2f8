// Package pdf turns raw PDF files into documents shaped like a browser PDF
// viewer: one text layer per page under a body marked as a viewer.
package pdf

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/goquery"
	"github.com/ledongthuc/pdf"
)

// Page is the plain text of one PDF page.
type Page struct {
	Number int
	Text   string
}

// NewDocument parses a PDF and returns it as a document with a text layer
// per page. A PDF with no extractable text yields a document without text
// layers, which extraction reports as unavailable.
func NewDocument(data []byte, location string) (*goquery.Document, error) {
	title, pages, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = titleFromLocation(location)
	}
	return Render(title, pages, location)
}

// Parse reads the title and per-page text of a PDF.
func Parse(data []byte) (title string, pages []Page, err error) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = excerpt.Errorf(excerpt.EINVALID, "pdf library panicked: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, excerpt.Errorf(excerpt.EINVALID, "open pdf: %v", err)
	}

	title = strings.TrimSpace(r.Trailer().Key("Info").Key("Title").Text())

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", nil, excerpt.Errorf(excerpt.EINVALID, "extract page %d: %v", i, err)
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return title, pages, nil
}

// Render lays pages out as viewer markup. Blank lines separate paragraphs
// within a page; pages without text get no text layer.
func Render(title string, pages []Page, location string) (*goquery.Document, error) {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString(`</title></head><body class="`)
	b.WriteString(goquery.PDFViewerClass)
	b.WriteString(`">`)

	for _, page := range pages {
		paragraphs := splitParagraphs(page.Text)
		fmt.Fprintf(&b, `<div class="page" data-page-number="%d">`, page.Number)
		if len(paragraphs) > 0 {
			b.WriteString(`<div class="textLayer">`)
			for _, p := range paragraphs {
				b.WriteString("<p>")
				b.WriteString(html.EscapeString(p))
				b.WriteString("</p>")
			}
			b.WriteString("</div>")
		}
		b.WriteString("</div>")
	}
	b.WriteString("</body></html>")

	return goquery.NewDocument(b.String(), location, goquery.PDFContentType)
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.Join(strings.Fields(block), " ")
		if block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}

func titleFromLocation(location string) string {
	location, _, _ = strings.Cut(location, "?")
	if i := strings.LastIndex(location, "/"); i >= 0 {
		location = location[i+1:]
	}
	return location
}
