package excerpt

import (
	"context"
	"time"
)

// Excerpt is a produced excerpt kept in history.
type Excerpt struct {
	ID          string      `json:"id"`
	Location    string      `json:"location"`
	Title       string      `json:"title"`
	Selection   string      `json:"selection"`
	Mode        ContextMode `json:"mode"`
	MaxTokens   int         `json:"maxTokens"`
	UsedTokens  int         `json:"usedTokens"`
	Included    int         `json:"included"`
	Total       int         `json:"total"`
	Found       bool        `json:"found"`
	Anchor      int         `json:"anchor"`
	Content     string      `json:"content"`
	ContentHash string      `json:"contentHash"`
	IsFallback  bool        `json:"isFallback"`
	Answer      string      `json:"answer,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// NewExcerpt captures a truncation of record as a history entry.
func NewExcerpt(record *ContentRecord, selection string, mode ContextMode, loc LocateResult, result *TruncationResult) *Excerpt {
	e := &Excerpt{
		Location:    record.Location,
		Title:       record.Title,
		Selection:   selection,
		Mode:        mode,
		MaxTokens:   mode.MaxTokens(),
		Found:       loc.Found,
		ContentHash: record.ContentHash,
		IsFallback:  record.IsFallback,
	}
	if result != nil {
		e.UsedTokens = result.UsedTokens
		e.Included = result.IncludedCount
		e.Total = result.TotalCount
		e.Anchor = result.Anchor
		e.Content = result.Text
	}
	return e
}

// Validate returns an error if the excerpt contains invalid fields.
func (e *Excerpt) Validate() error {
	if e.Location == "" {
		return Errorf(EINVALID, "excerpt location required")
	}
	if e.Selection == "" {
		return Errorf(EINVALID, "excerpt selection required")
	}
	return nil
}

// ExcerptService represents a service for managing excerpt history.
type ExcerptService interface {
	// CreateExcerpt stores a new excerpt, assigning its ID and CreatedAt.
	CreateExcerpt(ctx context.Context, e *Excerpt) error

	// FindExcerptByID retrieves an excerpt by ID.
	// Returns ENOTFOUND if the excerpt does not exist.
	FindExcerptByID(ctx context.Context, id string) (*Excerpt, error)

	// FindExcerpts retrieves excerpts matching the filter, newest first.
	FindExcerpts(ctx context.Context, filter ExcerptFilter) ([]*Excerpt, error)

	// DeleteExcerpts removes excerpts matching the filter and returns how
	// many were removed.
	DeleteExcerpts(ctx context.Context, filter ExcerptFilter) (int, error)
}

// ExcerptFilter represents a filter for FindExcerpts.
type ExcerptFilter struct {
	ID       *string `json:"id"`
	Location *string `json:"location"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
