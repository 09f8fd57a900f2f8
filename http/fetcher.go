// Package http fetches documents over HTTP and serves the excerpt engine
// as a JSON API.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/pdf"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = 32 << 20

// Resource is a fetched response body.
type Resource struct {
	// URL is the final URL after redirects.
	URL         string
	ContentType string
	Body        []byte
}

// Ensure Fetcher implements excerpt.Opener at compile time.
var _ excerpt.Opener = (*Fetcher)(nil)

// Fetcher retrieves documents using plain HTTP requests. It does not
// execute JavaScript; use rod.Browser for pages rendered client side.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	maxBodySize int64
	userAgent   string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodySize sets the largest response body accepted.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithUserAgent sets the User-Agent header sent with requests.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the resource at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, excerpt.Errorf(excerpt.EINVALID, "invalid url %q: %v", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, excerpt.Errorf(excerpt.ENOTFOUND, "%s not found", url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, excerpt.Errorf(excerpt.EINVALID, "%s exceeds %d bytes", url, f.maxBodySize)
	}

	return &Resource{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Open fetches url and parses it as a PDF or HTML document.
func (f *Fetcher) Open(ctx context.Context, url string) (excerpt.Document, error) {
	res, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return pdf.Load(res.Body, res.URL, res.ContentType)
}
