package rod

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/excerpt"
	"github.com/go-rod/rod"
	"golang.org/x/net/html"
)

// Ensure Document implements excerpt.Document at compile time.
var _ excerpt.Document = (*Document)(nil)

// Document is a live browser page. Its tree keeps changing while scripts
// run, so every Root call takes a fresh snapshot.
type Document struct {
	page     *rod.Page
	location string
	title    string
	release  func()
	once     sync.Once
}

// Location returns the page URL after redirects.
func (d *Document) Location() string {
	return d.location
}

// Title returns the page title at load time.
func (d *Document) Title() string {
	return d.title
}

// ContentType returns the MIME type the browser assigned to the page.
func (d *Document) ContentType() string {
	res, err := d.page.Eval(`() => document.contentType`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// Dynamic always reports true.
func (d *Document) Dynamic() bool {
	return true
}

// Root snapshots the page's current DOM.
func (d *Document) Root(ctx context.Context) (*html.Node, error) {
	markup, err := d.page.Context(ctx).HTML()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, excerpt.Errorf(excerpt.EUNAVAILABLE, "reading page %s: %v", d.location, err)
	}
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, excerpt.Errorf(excerpt.EUNAVAILABLE, "parsing page %s: %v", d.location, err)
	}
	return root, nil
}

// Clone snapshots the page's current DOM. Every snapshot is already an
// independent tree.
func (d *Document) Clone(ctx context.Context) (*html.Node, error) {
	return d.Root(ctx)
}

// Close closes the page. Close is safe to call multiple times.
func (d *Document) Close() error {
	var err error
	d.once.Do(func() {
		err = d.page.Close()
		if d.release != nil {
			d.release()
		}
	})
	return err
}
