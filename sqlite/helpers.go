package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// parseTime parses a stored timestamp of the named column.
func parseTime(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", column, value, err)
	}
	return t, nil
}

// appendPagination adds LIMIT and OFFSET for positive values. SQLite only
// accepts OFFSET after LIMIT, so an offset alone uses LIMIT -1.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	switch {
	case limit > 0:
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	case offset > 0:
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
