package mock

import (
	"context"

	"github.com/fwojciec/excerpt"
)

var _ excerpt.ContentService = (*ContentService)(nil)

// ContentService is a mock implementation of excerpt.ContentService.
type ContentService struct {
	ExtractFn         func(ctx context.Context, doc excerpt.Document) (*excerpt.ContentRecord, error)
	LocateSelectionFn func(selected string) excerpt.LocateResult
	TruncateFn        func(record *excerpt.ContentRecord, loc excerpt.LocateResult, maxTokens int) *excerpt.TruncationResult
	ClearCacheFn      func()
}

func (s *ContentService) Extract(ctx context.Context, doc excerpt.Document) (*excerpt.ContentRecord, error) {
	return s.ExtractFn(ctx, doc)
}

func (s *ContentService) LocateSelection(selected string) excerpt.LocateResult {
	return s.LocateSelectionFn(selected)
}

func (s *ContentService) Truncate(record *excerpt.ContentRecord, loc excerpt.LocateResult, maxTokens int) *excerpt.TruncationResult {
	return s.TruncateFn(record, loc, maxTokens)
}

func (s *ContentService) ClearCache() {
	s.ClearCacheFn()
}
