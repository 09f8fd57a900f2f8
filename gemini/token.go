package gemini

import (
	"context"

	"github.com/fwojciec/excerpt"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// DefaultTokenizerModel is the model whose local tokenizer is used when
// none is configured.
const DefaultTokenizerModel = "gemini-2.0-flash"

var _ excerpt.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens offline with a Gemini model's tokenizer, for
// reporting how far the heuristic estimate is from the real count.
type TokenCounter struct {
	tok   *tokenizer.LocalTokenizer
	model string
}

// NewTokenCounter loads the tokenizer of model. An empty model means
// DefaultTokenizerModel.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultTokenizerModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, excerpt.Errorf(excerpt.EINVALID, "no local tokenizer for %q: %v", model, err)
	}
	return &TokenCounter{tok: tok, model: model}, nil
}

// Model returns the model whose tokenizer is used.
func (tc *TokenCounter) Model() string {
	return tc.model
}

// CountTokens counts the tokens of text sent as a user turn.
func (tc *TokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	if err != nil {
		return 0, err
	}
	return int(result.TotalTokens), nil
}
