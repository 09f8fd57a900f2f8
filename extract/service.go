package extract

import (
	"context"

	"github.com/fwojciec/excerpt"
)

// Ensure Service implements excerpt.ContentService at compile time.
var _ excerpt.ContentService = (*Service)(nil)

// Service is the content engine: a cached extractor plus selection
// locating and budgeted truncation over the cached record.
type Service struct {
	cache     *Cache
	truncator excerpt.Truncator
}

// NewService creates a Service that caches records produced by extractor.
func NewService(extractor excerpt.Extractor, opts ...CacheOption) *Service {
	return &Service{cache: NewCache(extractor, opts...)}
}

// Extract returns the cached record for doc, extracting it if needed.
func (s *Service) Extract(ctx context.Context, doc excerpt.Document) (*excerpt.ContentRecord, error) {
	return s.cache.GetOrExtract(ctx, doc)
}

// LocateSelection searches the most recently extracted record, expired or
// not. Nothing extracted yet means nothing found.
func (s *Service) LocateSelection(selected string) excerpt.LocateResult {
	record := s.cache.Current()
	if record == nil {
		return excerpt.NotFound
	}
	return excerpt.Locate(record.Paragraphs, selected)
}

// Truncate assembles a budgeted excerpt of record centred on loc.
func (s *Service) Truncate(record *excerpt.ContentRecord, loc excerpt.LocateResult, maxTokens int) *excerpt.TruncationResult {
	if record == nil {
		return s.truncator.Truncate(nil, loc, maxTokens)
	}
	return s.truncator.Truncate(record.Paragraphs, loc, maxTokens)
}

// ClearCache evicts the cached record.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

// State returns the lifecycle phase of the underlying cache.
func (s *Service) State() CacheState {
	return s.cache.State()
}
