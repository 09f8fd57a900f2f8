package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/excerpt"
)

// Ensure LoggingOpener implements excerpt.Opener.
var _ excerpt.Opener = (*LoggingOpener)(nil)

// LoggingOpener wraps an Opener with logging.
type LoggingOpener struct {
	next   excerpt.Opener
	logger *slog.Logger
}

// NewLoggingOpener creates a new LoggingOpener.
func NewLoggingOpener(next excerpt.Opener, logger *slog.Logger) *LoggingOpener {
	return &LoggingOpener{next: next, logger: logger}
}

// Open delegates to the wrapped opener and logs the document it produced.
func (o *LoggingOpener) Open(ctx context.Context, location string) (doc excerpt.Document, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", location, "duration", time.Since(begin)}
		if doc != nil {
			attrs = append(attrs, "content_type", doc.ContentType(), "dynamic", doc.Dynamic())
		}
		attrs = append(attrs, "err", err)
		o.logger.Info("open", attrs...)
	}(time.Now())
	return o.next.Open(ctx, location)
}
