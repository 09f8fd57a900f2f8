package batch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/excerpt"
)

// DefaultRetryDelays returns the backoff delays between open attempts: 1s,
// 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

var _ excerpt.Opener = (*RetryOpener)(nil)

// RetryOpener retries opens that fail with a transient error. Application
// errors other than EINTERNAL are final: a missing page or an invalid URL
// will not change on the next attempt.
type RetryOpener struct {
	next   excerpt.Opener
	delays []time.Duration
	logger *slog.Logger
}

// NewRetryOpener wraps next. A nil logger disables retry logging.
func NewRetryOpener(next excerpt.Opener, delays []time.Duration, logger *slog.Logger) *RetryOpener {
	return &RetryOpener{next: next, delays: delays, logger: logger}
}

// Open opens location, making up to len(delays)+1 attempts.
func (o *RetryOpener) Open(ctx context.Context, location string) (excerpt.Document, error) {
	var lastErr error
	for attempt := 0; attempt <= len(o.delays); attempt++ {
		doc, err := o.next.Open(ctx, location)
		if err == nil {
			return doc, nil
		}
		lastErr = err

		if !retryable(err) || attempt == len(o.delays) {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if o.logger != nil {
			o.logger.Info("retry", "url", location, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(o.delays[attempt]):
		}
	}
	return nil, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return excerpt.ErrorCode(err) == excerpt.EINTERNAL
}
