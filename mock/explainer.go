package mock

import (
	"context"

	"github.com/fwojciec/excerpt"
)

var _ excerpt.Explainer = (*Explainer)(nil)

// Explainer is a mock implementation of excerpt.Explainer.
type Explainer struct {
	ExplainFn func(ctx context.Context, req *excerpt.ExplainRequest) (string, error)
}

func (e *Explainer) Explain(ctx context.Context, req *excerpt.ExplainRequest) (string, error) {
	return e.ExplainFn(ctx, req)
}
