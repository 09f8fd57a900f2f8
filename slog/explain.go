package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/excerpt"
)

// Ensure LoggingExplainer implements excerpt.Explainer.
var _ excerpt.Explainer = (*LoggingExplainer)(nil)

// LoggingExplainer wraps an Explainer with logging. Prompt text is not
// logged.
type LoggingExplainer struct {
	next   excerpt.Explainer
	logger *slog.Logger
}

// NewLoggingExplainer creates a new LoggingExplainer.
func NewLoggingExplainer(next excerpt.Explainer, logger *slog.Logger) *LoggingExplainer {
	return &LoggingExplainer{next: next, logger: logger}
}

// Explain delegates to the wrapped explainer and logs the call.
func (e *LoggingExplainer) Explain(ctx context.Context, req *excerpt.ExplainRequest) (answer string, err error) {
	defer func(begin time.Time) {
		e.logger.Info("explain",
			"url", req.PageURL,
			"context_tokens", req.ContextTokens,
			"with_context", req.Context != "",
			"answer_len", len(answer),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Explain(ctx, req)
}
