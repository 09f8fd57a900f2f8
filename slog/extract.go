// Package slog provides logging decorators for the excerpt services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/excerpt"
)

// Ensure LoggingExtractor implements excerpt.Extractor.
var _ excerpt.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging.
type LoggingExtractor struct {
	next   excerpt.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next excerpt.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) Extract(ctx context.Context, doc excerpt.Document) (record *excerpt.ContentRecord, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", doc.Location(), "duration", time.Since(begin)}
		if record != nil {
			attrs = append(attrs,
				"paragraphs", len(record.Paragraphs),
				"tokens", record.EstimatedTokens,
				"fallback", record.IsFallback,
				"pdf", record.IsPDF,
			)
		}
		if err != nil {
			attrs = append(attrs, "code", excerpt.ErrorCode(err), "err", err)
		}
		e.logger.Info("extract", attrs...)
	}(time.Now())
	return e.next.Extract(ctx, doc)
}

// Ensure LoggingContentService implements excerpt.ContentService.
var _ excerpt.ContentService = (*LoggingContentService)(nil)

// LoggingContentService wraps a ContentService with logging.
type LoggingContentService struct {
	next   excerpt.ContentService
	logger *slog.Logger
}

// NewLoggingContentService creates a new LoggingContentService.
func NewLoggingContentService(next excerpt.ContentService, logger *slog.Logger) *LoggingContentService {
	return &LoggingContentService{next: next, logger: logger}
}

// Extract delegates to the wrapped service and logs the outcome.
func (s *LoggingContentService) Extract(ctx context.Context, doc excerpt.Document) (record *excerpt.ContentRecord, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", doc.Location(), "duration", time.Since(begin)}
		if record != nil {
			attrs = append(attrs, "paragraphs", len(record.Paragraphs), "hash", record.ContentHash)
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		s.logger.Info("content", attrs...)
	}(time.Now())
	return s.next.Extract(ctx, doc)
}

// LocateSelection delegates to the wrapped service and logs the match.
func (s *LoggingContentService) LocateSelection(selected string) (result excerpt.LocateResult) {
	defer func() {
		s.logger.Debug("locate",
			"selection", len(selected),
			"found", result.Found,
			"index", result.ParagraphIndex,
		)
	}()
	return s.next.LocateSelection(selected)
}

// Truncate delegates to the wrapped service and logs the budget use.
func (s *LoggingContentService) Truncate(record *excerpt.ContentRecord, loc excerpt.LocateResult, maxTokens int) (result *excerpt.TruncationResult) {
	defer func(begin time.Time) {
		attrs := []any{"max_tokens", maxTokens, "duration", time.Since(begin)}
		if result != nil {
			attrs = append(attrs,
				"used_tokens", result.UsedTokens,
				"included", result.IncludedCount,
				"total", result.TotalCount,
				"anchor", result.Anchor,
			)
		}
		s.logger.Debug("truncate", attrs...)
	}(time.Now())
	return s.next.Truncate(record, loc, maxTokens)
}

// ClearCache delegates to the wrapped service.
func (s *LoggingContentService) ClearCache() {
	s.next.ClearCache()
	s.logger.Info("cache cleared")
}
