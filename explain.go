package excerpt

import (
	"context"
	"strconv"
	"strings"
)

// Prompt template presets.
const (
	TemplateDefault   = "default"
	TemplateTechnical = "technical"
)

// NoContextTemplate is used when no usable context could be extracted.
const NoContextTemplate = `You are a helpful assistant. Give a clear, concise and accurate explanation of the selected text.

Selected text: {{selectedText}}

Cover, where relevant:
1. Meaning or definition
2. Background knowledge
3. Key points
4. An example or analogy if it helps understanding

Answer in Markdown in roughly 200-500 words.`

var presetTemplates = map[string]string{
	TemplateDefault: `You are a helpful assistant. Using the surrounding page content as context, give an accurate and thorough explanation of the text the user selected.

[Page]
Title: {{pageTitle}}
URL: {{pageUrl}}

[Context, about {{contextTokens}} tokens]
{{context}}

[Selected text]
{{selectedText}}

Based on the context above, explain the selection:
1. Its meaning in this context
2. Background and surrounding information
3. Related points and details
4. If it is a technical term, explain it in light of the context

Prefer the context over general knowledge, fall back to general knowledge when the context is insufficient, answer in Markdown in roughly 300-600 words.`,

	TemplateTechnical: `You are an assistant for reading technical documentation. Explain the technical concept using the surrounding documentation.

[Documentation]
Title: {{pageTitle}}
URL: {{pageUrl}}

[Technical context]
{{context}}

[Term or concept to explain]
{{selectedText}}

Provide:
1. What the term means in this document
2. The relevant technical background and principles
3. Practical usage scenarios and examples

Answer in Markdown.`,
}

// PresetTemplate returns the preset template named name.
func PresetTemplate(name string) (string, bool) {
	t, ok := presetTemplates[strings.TrimPrefix(name, "template:")]
	return t, ok
}

// ExplainRequest is a request to explain a selection, optionally with an
// excerpt of the surrounding page.
type ExplainRequest struct {
	Selection string

	// Context is the excerpt text. Empty means no-context mode.
	Context       string
	ContextTokens int

	PageTitle string
	PageURL   string

	// Template is a preset name or a literal template. Empty means
	// TemplateDefault.
	Template string
}

// Validate returns an error if the request cannot be explained.
func (r *ExplainRequest) Validate() error {
	if strings.TrimSpace(r.Selection) == "" {
		return Errorf(EINVALID, "selection required")
	}
	return nil
}

// NewExplainRequest builds a request from an extracted record and its
// excerpt. Records without sufficient content produce a no-context request.
func NewExplainRequest(selection string, record *ContentRecord, result *TruncationResult, template string) *ExplainRequest {
	req := &ExplainRequest{
		Selection: strings.TrimSpace(selection),
		Template:  template,
	}
	if record == nil {
		return req
	}
	req.PageTitle = record.Title
	req.PageURL = record.Location
	if result != nil && HasSufficientContent(record) {
		req.Context = result.Text
		req.ContextTokens = result.UsedTokens
	}
	return req
}

// Prompt renders the request into the text sent to the model.
func (r *ExplainRequest) Prompt() string {
	tmpl := NoContextTemplate
	if r.Context != "" {
		tmpl = presetTemplates[TemplateDefault]
		if r.Template != "" {
			if preset, ok := PresetTemplate(r.Template); ok {
				tmpl = preset
			} else {
				tmpl = r.Template
			}
		}
	}

	return strings.NewReplacer(
		"{{pageTitle}}", r.PageTitle,
		"{{pageUrl}}", r.PageURL,
		"{{context}}", r.Context,
		"{{selectedText}}", r.Selection,
		"{{contextTokens}}", strconv.Itoa(r.ContextTokens),
	).Replace(tmpl)
}

// Explainer asks a language model to explain a selection.
type Explainer interface {
	Explain(ctx context.Context, req *ExplainRequest) (string, error)
}
