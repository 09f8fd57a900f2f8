package mock

import (
	"context"

	"github.com/fwojciec/excerpt"
	"golang.org/x/net/html"
)

var _ excerpt.Document = (*Document)(nil)

// Document is a mock implementation of excerpt.Document.
type Document struct {
	LocationFn    func() string
	TitleFn       func() string
	ContentTypeFn func() string
	DynamicFn     func() bool
	RootFn        func(ctx context.Context) (*html.Node, error)
	CloneFn       func(ctx context.Context) (*html.Node, error)
}

func (d *Document) Location() string {
	return d.LocationFn()
}

func (d *Document) Title() string {
	return d.TitleFn()
}

func (d *Document) ContentType() string {
	return d.ContentTypeFn()
}

func (d *Document) Dynamic() bool {
	return d.DynamicFn()
}

func (d *Document) Root(ctx context.Context) (*html.Node, error) {
	return d.RootFn(ctx)
}

func (d *Document) Clone(ctx context.Context) (*html.Node, error) {
	return d.CloneFn(ctx)
}

var _ excerpt.Opener = (*Opener)(nil)

// Opener is a mock implementation of excerpt.Opener.
type Opener struct {
	OpenFn func(ctx context.Context, location string) (excerpt.Document, error)
}

func (o *Opener) Open(ctx context.Context, location string) (excerpt.Document, error) {
	return o.OpenFn(ctx, location)
}
