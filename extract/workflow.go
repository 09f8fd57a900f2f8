package extract

import (
	"context"
	"io"
	"strings"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/goquery"
)

// Request asks for an excerpt of the document at Location centred on
// Selection.
type Request struct {
	Location  string              `json:"url"`
	Selection string              `json:"selection"`
	Mode      excerpt.ContextMode `json:"mode"`

	// MaxTokens overrides the mode's budget when positive.
	MaxTokens int `json:"maxTokens,omitempty"`

	// Highlight renders the content with highlight classes.
	Highlight bool `json:"highlight,omitempty"`

	// Markdown renders the excerpt as Markdown.
	Markdown bool `json:"markdown,omitempty"`

	// Explain asks the explainer about the selection.
	Explain  bool   `json:"explain,omitempty"`
	Template string `json:"template,omitempty"`

	// NoContext explains the selection without the page excerpt.
	NoContext bool `json:"noContext,omitempty"`
}

// Budget returns the token budget of the request.
func (r Request) Budget() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return excerpt.ParseContextMode(string(r.Mode)).MaxTokens()
}

// Response is the outcome of a Request.
type Response struct {
	Record *excerpt.ContentRecord    `json:"-"`
	Locate excerpt.LocateResult      `json:"locate"`
	Result *excerpt.TruncationResult `json:"result"`

	// Sufficient reports whether the record is usable as context.
	Sufficient  bool   `json:"sufficient"`
	Highlighted string `json:"highlighted,omitempty"`
	Markdown    string `json:"markdown,omitempty"`
	Answer      string `json:"answer,omitempty"`

	// Excerpt is the stored history entry, when history is kept.
	Excerpt *excerpt.Excerpt `json:"excerpt,omitempty"`
}

// Workflow runs requests end to end: open, extract, locate, truncate, and
// optionally highlight, explain and record.
type Workflow struct {
	Opener  excerpt.Opener
	Content excerpt.ContentService

	// Explainer is required only for requests with Explain set.
	Explainer excerpt.Explainer

	// Markdown is required only for requests with Markdown set.
	Markdown excerpt.MarkdownRenderer

	// History stores an entry per request with a selection when set.
	History excerpt.ExcerptService
}

// Run executes req.
//
// The selection is located in the record Run extracted rather than in
// whatever the content service cached last, so concurrent requests for
// different documents cannot cross.
func (w *Workflow) Run(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Location) == "" {
		return nil, excerpt.Errorf(excerpt.EINVALID, "url required")
	}
	if req.Explain && w.Explainer == nil {
		return nil, excerpt.Errorf(excerpt.EINVALID, "explaining is not configured")
	}
	if req.Markdown && w.Markdown == nil {
		return nil, excerpt.Errorf(excerpt.EINVALID, "markdown rendering is not configured")
	}

	doc, err := w.Opener.Open(ctx, req.Location)
	if err != nil {
		return nil, err
	}
	if c, ok := doc.(io.Closer); ok {
		defer c.Close()
	}

	record, err := w.Content.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Record:     record,
		Locate:     excerpt.Locate(record.Paragraphs, req.Selection),
		Sufficient: excerpt.HasSufficientContent(record),
	}
	resp.Result = w.Content.Truncate(record, resp.Locate, req.Budget())

	if req.Highlight {
		resp.Highlighted, err = goquery.Highlight(record, resp.Result)
		if err != nil {
			return nil, err
		}
	}

	if req.Markdown {
		resp.Markdown, err = w.Markdown.RenderExcerpt(record, resp.Result)
		if err != nil {
			return nil, err
		}
	}

	if req.Explain {
		er := excerpt.NewExplainRequest(req.Selection, record, resp.Result, req.Template)
		if req.NoContext {
			er.Context, er.ContextTokens = "", 0
		}
		if err := er.Validate(); err != nil {
			return nil, err
		}
		resp.Answer, err = w.Explainer.Explain(ctx, er)
		if err != nil {
			return nil, err
		}
	}

	if w.History != nil && strings.TrimSpace(req.Selection) != "" {
		e := excerpt.NewExcerpt(record, req.Selection, excerpt.ParseContextMode(string(req.Mode)), resp.Locate, resp.Result)
		e.MaxTokens = req.Budget()
		e.Answer = resp.Answer
		if err := w.History.CreateExcerpt(ctx, e); err != nil {
			return nil, err
		}
		resp.Excerpt = e
	}

	return resp, nil
}
