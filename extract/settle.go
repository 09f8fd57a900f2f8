package extract

import (
	"context"
	"time"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/goquery"
)

// Settle describes how long to wait for a dynamic page to finish rendering
// before its main content is extracted.
type Settle struct {
	// Interval between readiness checks.
	Interval time.Duration

	// Timeout after which extraction proceeds even if the page never
	// became ready.
	Timeout time.Duration

	// MinTextLength is the visible body text, in runes, a ready page
	// exceeds.
	MinTextLength int

	// MinParagraphs is the number of <p> elements a ready page has.
	MinParagraphs int
}

// DefaultSettle polls every 100ms for up to 5s.
var DefaultSettle = Settle{
	Interval:      100 * time.Millisecond,
	Timeout:       5 * time.Second,
	MinTextLength: 500,
	MinParagraphs: 3,
}

// Ready reports whether doc's current tree looks fully rendered.
func (s Settle) Ready(ctx context.Context, doc excerpt.Document) bool {
	root, err := doc.Root(ctx)
	if err != nil {
		return false
	}
	textLength, paragraphs := goquery.Readiness(root)
	return textLength > s.MinTextLength && paragraphs >= s.MinParagraphs
}

// Wait blocks until doc is ready or the timeout elapses. Only an ended
// context is an error; a page that never settles is extracted as is.
func (s Settle) Wait(ctx context.Context, doc excerpt.Document) error {
	if s.Ready(ctx, doc) {
		return nil
	}
	if s.Timeout <= 0 || s.Interval <= 0 {
		return ctx.Err()
	}

	deadline := time.NewTimer(s.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return nil
		case <-ticker.C:
			if s.Ready(ctx, doc) {
				return nil
			}
		}
	}
}
