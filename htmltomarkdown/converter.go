// Package htmltomarkdown renders extracted content as Markdown.
package htmltomarkdown

import (
	"bytes"
	"sort"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/excerpt"
	"golang.org/x/net/html"
)

// Ensure Converter implements excerpt.MarkdownRenderer at compile time.
var _ excerpt.MarkdownRenderer = (*Converter)(nil)

// GapMarker separates paragraphs that are not adjacent in the document.
const GapMarker = "…"

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", excerpt.Errorf(excerpt.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return result, nil
}

// RenderExcerpt converts each paragraph included in result from its node in
// the record's content tree, keeping headings, lists and code formatting.
// Paragraphs are emitted in document order and runs of skipped paragraphs
// are marked with GapMarker.
func (c *Converter) RenderExcerpt(record *excerpt.ContentRecord, result *excerpt.TruncationResult) (string, error) {
	if record == nil || result == nil || len(result.Paragraphs) == 0 {
		return "", nil
	}

	included := make([]excerpt.IncludedParagraph, len(result.Paragraphs))
	copy(included, result.Paragraphs)
	sort.Slice(included, func(i, j int) bool { return included[i].Index < included[j].Index })

	var blocks []string
	prev := -1
	for _, inc := range included {
		if prev >= 0 && inc.Index > prev+1 {
			blocks = append(blocks, GapMarker)
		}
		prev = inc.Index

		md, err := c.renderParagraph(record, inc)
		if err != nil {
			return "", err
		}
		if md != "" {
			blocks = append(blocks, md)
		}
	}

	return strings.Join(blocks, "\n\n"), nil
}

func (c *Converter) renderParagraph(record *excerpt.ContentRecord, inc excerpt.IncludedParagraph) (string, error) {
	var node *html.Node
	if inc.Index >= 0 && inc.Index < len(record.Paragraphs) {
		node = record.Paragraphs[inc.Index].Node
	}
	if node == nil {
		return strings.TrimSpace(inc.Text), nil
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", excerpt.Errorf(excerpt.EINTERNAL, "failed to render paragraph %d: %v", inc.Index, err)
	}

	md, err := c.conv.ConvertString(buf.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}
