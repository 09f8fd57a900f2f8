package gemini

import (
	"context"

	"github.com/fwojciec/excerpt"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Explainer implements excerpt.Explainer at compile time.
var _ excerpt.Explainer = (*Explainer)(nil)

// Explainer implements excerpt.Explainer using Google Gemini. It makes a
// single request per explanation.
type Explainer struct {
	client *genai.Client
	model  string
}

// NewExplainer creates a new Explainer. An empty model means DefaultModel.
func NewExplainer(client *genai.Client, model string) *Explainer {
	if model == "" {
		model = DefaultModel
	}
	return &Explainer{client: client, model: model}
}

// Explain asks Gemini to explain the request's selection.
func (e *Explainer) Explain(ctx context.Context, req *excerpt.ExplainRequest) (string, error) {
	if req == nil {
		return "", excerpt.Errorf(excerpt.EINVALID, "explain request required")
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	result, err := e.client.Models.GenerateContent(ctx, e.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: req.Prompt()}},
		}},
		BuildConfig(req),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", excerpt.Errorf(excerpt.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for an explanation.
// Requests with page context are told to stay close to it.
func BuildConfig(req *excerpt.ExplainRequest) *genai.GenerateContentConfig {
	instruction := "You are a helpful assistant that explains text a reader selected. Be accurate and concise."
	if req != nil && req.Context != "" {
		instruction += " Ground the explanation in the page context provided and say when the context does not cover something."
	}

	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instruction}},
		},
		Temperature: &temp,
	}
}
