package mock

import (
	"context"

	"github.com/fwojciec/excerpt"
	"golang.org/x/net/html"
)

var _ excerpt.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of excerpt.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, doc excerpt.Document) (*excerpt.ContentRecord, error)
}

func (e *Extractor) Extract(ctx context.Context, doc excerpt.Document) (*excerpt.ContentRecord, error) {
	return e.ExtractFn(ctx, doc)
}

var _ excerpt.MainContent = (*MainContent)(nil)

// MainContent is a mock implementation of excerpt.MainContent.
type MainContent struct {
	ParseFn func(root *html.Node, location string) (*excerpt.Article, error)
}

func (m *MainContent) Parse(root *html.Node, location string) (*excerpt.Article, error) {
	return m.ParseFn(root, location)
}
