// Package fs reads documents from and writes excerpts to the local file
// system.
package fs

import (
	"context"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/pdf"
)

// Ensure Opener implements excerpt.Opener at compile time.
var _ excerpt.Opener = (*Opener)(nil)

// Opener opens local files, given as paths or file:// URLs. Other
// locations are passed to Next.
type Opener struct {
	Next excerpt.Opener
}

// NewOpener creates an Opener that delegates remote locations to next.
func NewOpener(next excerpt.Opener) *Opener {
	return &Opener{Next: next}
}

// Open reads the file at location. PDF files become PDF documents, anything
// else is parsed as HTML. The document location is the file:// URL of the
// absolute path so cache identity does not depend on the working directory.
func (o *Opener) Open(ctx context.Context, location string) (excerpt.Document, error) {
	path, ok := LocalPath(location)
	if !ok {
		if o.Next == nil {
			return nil, excerpt.Errorf(excerpt.EINVALID, "unsupported location %q", location)
		}
		return o.Next.Open(ctx, location)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return nil, excerpt.Errorf(excerpt.ENOTFOUND, "file not found: %s", path)
	} else if err != nil {
		return nil, err
	}

	fileURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	return pdf.Load(data, fileURL, mime.TypeByExtension(filepath.Ext(abs)))
}

// LocalPath returns the file path of location when it names a local file.
func LocalPath(location string) (string, bool) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", false
	}
	u, err := url.Parse(location)
	if err != nil {
		return location, true
	}
	switch u.Scheme {
	case "file":
		return filepath.FromSlash(u.Path), true
	case "":
		return location, true
	}
	// Windows drive letters parse as a one-letter scheme.
	if len(u.Scheme) == 1 {
		return location, true
	}
	return "", false
}
