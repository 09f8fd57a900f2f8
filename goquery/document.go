package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/excerpt"
	"golang.org/x/net/html"
)

// Ensure Document implements excerpt.Document at compile time.
var _ excerpt.Document = (*Document)(nil)

// Document is a static excerpt.Document backed by parsed markup.
type Document struct {
	root        *html.Node
	location    string
	contentType string
}

// NewDocument parses markup into a Document.
func NewDocument(markup, location, contentType string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, excerpt.Errorf(excerpt.EINVALID, "failed to parse HTML: %v", err)
	}
	return FromNode(root, location, contentType), nil
}

// FromNode wraps an already parsed tree. The Document takes ownership of root.
func FromNode(root *html.Node, location, contentType string) *Document {
	return &Document{root: root, location: location, contentType: contentType}
}

// Location returns the document's location.
func (d *Document) Location() string {
	return d.location
}

// Title returns the text of the first <title> element.
func (d *Document) Title() string {
	if d.root == nil {
		return ""
	}
	return strings.TrimSpace(goquery.NewDocumentFromNode(d.root).Find("title").First().Text())
}

// ContentType returns the content type the document was opened with.
func (d *Document) ContentType() string {
	return d.contentType
}

// Dynamic always reports false: parsed markup never changes.
func (d *Document) Dynamic() bool {
	return false
}

// Root returns the parsed tree.
func (d *Document) Root(_ context.Context) (*html.Node, error) {
	if d.root == nil {
		return nil, excerpt.Errorf(excerpt.EUNAVAILABLE, "document has no content")
	}
	return d.root, nil
}

// Clone returns a deep copy of the parsed tree.
func (d *Document) Clone(ctx context.Context) (*html.Node, error) {
	root, err := d.Root(ctx)
	if err != nil {
		return nil, err
	}
	return CloneNode(root), nil
}

// CloneNode returns a deep copy of n detached from any parent.
func CloneNode(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	return goquery.NewDocumentFromNode(n).Selection.Clone().Get(0)
}

// cloneIndexed copies n and records which copy each original node became.
func cloneIndexed(n *html.Node, index map[*html.Node]*html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	index[n] = c
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneIndexed(child, index))
	}
	return c
}

// Body returns the <body> element below root, or nil.
func Body(root *html.Node) *html.Node {
	if root == nil {
		return nil
	}
	sel := goquery.NewDocumentFromNode(root).Find("body")
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}
