package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fwojciec/excerpt"
)

// paragraphView is the JSON form of a paragraph.
type paragraphView struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`
}

// recordView is the JSON form of an extracted record.
type recordView struct {
	Title           string          `json:"title"`
	Location        string          `json:"url"`
	Byline          string          `json:"byline,omitempty"`
	Excerpt         string          `json:"excerpt,omitempty"`
	EstimatedTokens int             `json:"estimatedTokens"`
	Tokens          int             `json:"tokens"`
	ContentHash     string          `json:"contentHash"`
	IsFallback      bool            `json:"isFallback"`
	IsPDF           bool            `json:"isPdf"`
	Sufficient      bool            `json:"sufficient"`
	Paragraphs      []paragraphView `json:"paragraphs"`
}

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	doc, err := deps.Opener.Open(deps.Ctx, c.URL)
	if err != nil {
		return err
	}
	if closer, ok := doc.(io.Closer); ok {
		defer closer.Close()
	}

	record, err := deps.Content.Extract(deps.Ctx, doc)
	if err != nil {
		return err
	}

	switch c.Format {
	case "html":
		fmt.Fprintln(deps.Stdout, record.RichContent)
		return nil
	case "markdown":
		md, err := deps.Converter.Convert(record.RichContent)
		if err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout, md)
		return nil
	}

	tokens, err := deps.Tokens.CountTokens(deps.Ctx, record.PlainText)
	if err != nil {
		return err
	}

	if c.Format == "json" {
		view := recordView{
			Title:           record.Title,
			Location:        record.Location,
			Byline:          record.Byline,
			Excerpt:         record.Excerpt,
			EstimatedTokens: record.EstimatedTokens,
			Tokens:          tokens,
			ContentHash:     record.ContentHash,
			IsFallback:      record.IsFallback,
			IsPDF:           record.IsPDF,
			Sufficient:      excerpt.HasSufficientContent(record),
			Paragraphs:      make([]paragraphView, len(record.Paragraphs)),
		}
		for i, p := range record.Paragraphs {
			view.Paragraphs[i] = paragraphView{Index: p.Index, Kind: p.Kind.String(), Text: p.Text}
		}
		return writeJSON(deps.Stdout, view)
	}

	fmt.Fprintf(deps.Stdout, "Title:      %s\n", record.Title)
	fmt.Fprintf(deps.Stdout, "URL:        %s\n", record.Location)
	if record.Byline != "" {
		fmt.Fprintf(deps.Stdout, "Byline:     %s\n", record.Byline)
	}
	fmt.Fprintf(deps.Stdout, "Paragraphs: %d\n", len(record.Paragraphs))
	fmt.Fprintf(deps.Stdout, "Tokens:     %d\n", tokens)
	fmt.Fprintf(deps.Stdout, "Source:     %s\n", source(record))
	if !excerpt.HasSufficientContent(record) {
		fmt.Fprintln(deps.Stdout, "Warning:    too little content to use as context")
	}
	fmt.Fprintln(deps.Stdout)
	for _, p := range record.Paragraphs {
		fmt.Fprintf(deps.Stdout, "[%d] %s\n", p.Index, p.Text)
	}
	return nil
}

func source(record *excerpt.ContentRecord) string {
	switch {
	case record.IsPDF:
		return "pdf text layer"
	case record.IsFallback:
		return "fallback"
	default:
		return "main content"
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
