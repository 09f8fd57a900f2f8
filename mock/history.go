package mock

import (
	"context"

	"github.com/fwojciec/excerpt"
)

var _ excerpt.ExcerptService = (*ExcerptService)(nil)

// ExcerptService is a mock implementation of excerpt.ExcerptService.
type ExcerptService struct {
	CreateExcerptFn   func(ctx context.Context, e *excerpt.Excerpt) error
	FindExcerptByIDFn func(ctx context.Context, id string) (*excerpt.Excerpt, error)
	FindExcerptsFn    func(ctx context.Context, filter excerpt.ExcerptFilter) ([]*excerpt.Excerpt, error)
	DeleteExcerptsFn  func(ctx context.Context, filter excerpt.ExcerptFilter) (int, error)
}

func (s *ExcerptService) CreateExcerpt(ctx context.Context, e *excerpt.Excerpt) error {
	return s.CreateExcerptFn(ctx, e)
}

func (s *ExcerptService) FindExcerptByID(ctx context.Context, id string) (*excerpt.Excerpt, error) {
	return s.FindExcerptByIDFn(ctx, id)
}

func (s *ExcerptService) FindExcerpts(ctx context.Context, filter excerpt.ExcerptFilter) ([]*excerpt.Excerpt, error) {
	return s.FindExcerptsFn(ctx, filter)
}

func (s *ExcerptService) DeleteExcerpts(ctx context.Context, filter excerpt.ExcerptFilter) (int, error) {
	return s.DeleteExcerptsFn(ctx, filter)
}
