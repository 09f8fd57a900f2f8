package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/excerpt"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ excerpt.ExcerptService = (*ExcerptService)(nil)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const excerptColumns = `id, location, title, selection, mode, max_tokens, used_tokens, included, total,
	found, anchor, content, content_hash, is_fallback, answer, created_at`

// ExcerptService implements excerpt.ExcerptService using SQLite.
type ExcerptService struct {
	db *DB
}

// NewExcerptService creates a new ExcerptService.
func NewExcerptService(db *DB) *ExcerptService {
	return &ExcerptService{db: db}
}

// CreateExcerpt stores a new excerpt.
func (s *ExcerptService) CreateExcerpt(ctx context.Context, e *excerpt.Excerpt) error {
	if err := e.Validate(); err != nil {
		return err
	}

	e.ID = uuid.New().String()
	e.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO excerpts (`+excerptColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Location, e.Title, e.Selection, string(e.Mode), e.MaxTokens, e.UsedTokens, e.Included, e.Total,
		e.Found, e.Anchor, e.Content, e.ContentHash, e.IsFallback, e.Answer, e.CreatedAt.Format(timeLayout))

	return err
}

// FindExcerptByID retrieves an excerpt by ID.
func (s *ExcerptService) FindExcerptByID(ctx context.Context, id string) (*excerpt.Excerpt, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+excerptColumns+" FROM excerpts WHERE id = ?", id)
	e, err := scanExcerpt(row)
	if err == sql.ErrNoRows {
		return nil, excerpt.Errorf(excerpt.ENOTFOUND, "excerpt not found")
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FindExcerpts retrieves excerpts matching the filter, newest first.
func (s *ExcerptService) FindExcerpts(ctx context.Context, filter excerpt.ExcerptFilter) ([]*excerpt.Excerpt, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + excerptColumns + " FROM excerpts")
	appendWhere(&query, &args, filter)
	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var excerpts []*excerpt.Excerpt
	for rows.Next() {
		e, err := scanExcerpt(rows)
		if err != nil {
			return nil, err
		}
		excerpts = append(excerpts, e)
	}

	return excerpts, rows.Err()
}

// DeleteExcerpts removes excerpts matching the filter. An empty filter
// clears the history.
func (s *ExcerptService) DeleteExcerpts(ctx context.Context, filter excerpt.ExcerptFilter) (int, error) {
	var query strings.Builder
	var args []any

	query.WriteString("DELETE FROM excerpts")
	appendWhere(&query, &args, filter)

	result, err := s.db.ExecContext(ctx, query.String(), args...)
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func appendWhere(query *strings.Builder, args *[]any, filter excerpt.ExcerptFilter) {
	query.WriteString(" WHERE 1=1")
	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		*args = append(*args, *filter.ID)
	}
	if filter.Location != nil {
		query.WriteString(" AND location = ?")
		*args = append(*args, *filter.Location)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExcerpt(row scanner) (*excerpt.Excerpt, error) {
	var e excerpt.Excerpt
	var mode, createdAt string

	if err := row.Scan(&e.ID, &e.Location, &e.Title, &e.Selection, &mode, &e.MaxTokens, &e.UsedTokens,
		&e.Included, &e.Total, &e.Found, &e.Anchor, &e.Content, &e.ContentHash, &e.IsFallback, &e.Answer,
		&createdAt); err != nil {
		return nil, err
	}
	e.Mode = excerpt.ContextMode(mode)

	var err error
	e.CreatedAt, err = parseTime(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &e, nil
}
