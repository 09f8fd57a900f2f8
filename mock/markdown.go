package mock

import "github.com/fwojciec/excerpt"

var _ excerpt.MarkdownRenderer = (*MarkdownRenderer)(nil)

// MarkdownRenderer is a mock implementation of excerpt.MarkdownRenderer.
type MarkdownRenderer struct {
	RenderExcerptFn func(record *excerpt.ContentRecord, result *excerpt.TruncationResult) (string, error)
}

func (m *MarkdownRenderer) RenderExcerpt(record *excerpt.ContentRecord, result *excerpt.TruncationResult) (string, error) {
	return m.RenderExcerptFn(record, result)
}
