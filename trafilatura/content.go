package trafilatura

import (
	"net/url"

	"github.com/fwojciec/excerpt"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure MainContent implements excerpt.MainContent at compile time.
var _ excerpt.MainContent = (*MainContent)(nil)

// MainContent wraps go-trafilatura to isolate the main content of a page.
type MainContent struct {
	// EnableFallback lets trafilatura compare its result with readability
	// and dom-distiller and keep the best one.
	EnableFallback bool
}

// NewMainContent creates a new MainContent with fallback comparison on.
func NewMainContent() *MainContent {
	return &MainContent{EnableFallback: true}
}

// Parse runs trafilatura over root. It modifies root.
func (m *MainContent) Parse(root *html.Node, location string) (*excerpt.Article, error) {
	if root == nil {
		return nil, excerpt.Errorf(excerpt.EINVALID, "empty document")
	}

	opts := trafilatura.Options{
		EnableFallback: m.EnableFallback,
	}
	if location != "" {
		u, err := url.Parse(location)
		if err != nil {
			return nil, excerpt.Errorf(excerpt.EINVALID, "invalid location: %v", err)
		}
		opts.OriginalURL = u
	}

	result, err := trafilatura.ExtractDocument(root, opts)
	if err != nil {
		return nil, err
	}

	return &excerpt.Article{
		Title:       result.Metadata.Title,
		Byline:      result.Metadata.Author,
		Excerpt:     result.Metadata.Description,
		TextContent: result.ContentText,
		Node:        result.ContentNode,
	}, nil
}
