// Package rod opens live pages in headless Chrome so that content rendered
// client side can be extracted.
package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/excerpt"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// Ensure Browser implements excerpt.Opener at compile time.
var _ excerpt.Opener = (*Browser)(nil)

// Browser opens documents as live Chrome pages. Chrome accumulates memory
// over time, so the browser is relaunched after maxPages pages once no
// document is open.
//
// Browser is safe for concurrent use.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    int64
	open     int64
	maxPages int64
	mu       sync.Mutex
	closed   atomic.Bool
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithMaxPages sets the number of pages opened before the browser is
// recycled. Defaults to DefaultMaxPages.
func WithMaxPages(n int64) BrowserOption {
	return func(b *Browser) {
		b.maxPages = n
	}
}

// NewBrowser launches a headless Chrome browser.
// Close must be called when the Browser is no longer needed.
func NewBrowser(opts ...BrowserOption) (*Browser, error) {
	b := &Browser{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(b)
	}

	if err := b.launch(); err != nil {
		return nil, err
	}
	return b, nil
}

// Open navigates a new page to url and waits for it to load. The returned
// Document keeps the page open until its Close is called.
func (b *Browser) Open(ctx context.Context, url string) (excerpt.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser := b.acquire()
	if browser == nil {
		return nil, excerpt.Errorf(excerpt.EUNAVAILABLE, "browser is closed")
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.release()
		return nil, fmt.Errorf("opening page: %w", err)
	}

	doc := &Document{page: page, location: url, release: b.release}
	live := page.Context(ctx)
	if err := live.Navigate(url); err != nil {
		_ = doc.Close()
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := live.WaitLoad(); err != nil {
		_ = doc.Close()
		return nil, fmt.Errorf("loading %s: %w", url, err)
	}

	if info, err := page.Info(); err == nil {
		doc.location = info.URL
		doc.title = info.Title
	}
	return doc, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (b *Browser) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shutdown()
}

// LauncherPID returns the process ID of the browser launcher.
func (b *Browser) LauncherPID() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.launcher == nil {
		return 0
	}
	return b.launcher.PID()
}

// acquire returns the browser to open a page in, recycling it first when
// it has served maxPages and nothing is open.
func (b *Browser) acquire() *rod.Browser {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed.Load() {
		return nil
	}
	if b.pages >= b.maxPages && b.open == 0 {
		b.recycle()
	}
	b.pages++
	b.open++
	return b.browser
}

func (b *Browser) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open--
}

// launch starts a new browser instance with stability flags.
func (b *Browser) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	b.browser = browser
	b.launcher = l
	return nil
}

// shutdown closes the current browser and launcher.
// Must be called with mu held.
func (b *Browser) shutdown() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}

// recycle starts a fresh browser and closes the old one. If the new
// launch fails the old browser is kept.
// Must be called with mu held.
func (b *Browser) recycle() {
	oldBrowser, oldLauncher := b.browser, b.launcher
	b.browser, b.launcher = nil, nil

	if err := b.launch(); err != nil {
		b.browser, b.launcher = oldBrowser, oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	b.pages = 0
}
