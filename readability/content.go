package readability

import (
	"net/url"

	"github.com/fwojciec/excerpt"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Ensure MainContent implements excerpt.MainContent at compile time.
var _ excerpt.MainContent = (*MainContent)(nil)

// MainContent wraps go-readability to isolate the main content of a page.
type MainContent struct{}

// NewMainContent creates a new MainContent.
func NewMainContent() *MainContent {
	return &MainContent{}
}

// Parse runs readability over root. It modifies root.
func (m *MainContent) Parse(root *html.Node, location string) (*excerpt.Article, error) {
	if root == nil {
		return nil, excerpt.Errorf(excerpt.EINVALID, "empty document")
	}

	var pageURL *url.URL
	if location != "" {
		u, err := url.Parse(location)
		if err != nil {
			return nil, excerpt.Errorf(excerpt.EINVALID, "invalid location: %v", err)
		}
		pageURL = u
	}

	article, err := readability.FromDocument(root, pageURL)
	if err != nil {
		return nil, err
	}

	return &excerpt.Article{
		Title:       article.Title,
		Byline:      article.Byline,
		Excerpt:     article.Excerpt,
		TextContent: article.TextContent,
		Node:        article.Node,
	}, nil
}
