// Package sqlite provides SQLite-based storage for excerpt history.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// migrations are applied in order. The database's user_version records how
// many have run, so entries must never be edited or reordered.
var migrations = []string{
	`CREATE TABLE excerpts (
		id TEXT PRIMARY KEY,
		location TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		selection TEXT NOT NULL,
		mode TEXT NOT NULL DEFAULT '',
		max_tokens INTEGER NOT NULL DEFAULT 0,
		used_tokens INTEGER NOT NULL DEFAULT 0,
		included INTEGER NOT NULL DEFAULT 0,
		total INTEGER NOT NULL DEFAULT 0,
		found INTEGER NOT NULL DEFAULT 0,
		anchor INTEGER NOT NULL DEFAULT -1,
		content TEXT NOT NULL DEFAULT '',
		content_hash TEXT NOT NULL DEFAULT '',
		is_fallback INTEGER NOT NULL DEFAULT 0,
		answer TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX idx_excerpts_location ON excerpts(location);
	CREATE INDEX idx_excerpts_created_at ON excerpts(created_at);`,
}

// DB is the history database.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB returns a DB for path. Use ":memory:" for a throwaway database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open connects to the database and brings its schema up to date.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; an in-memory database also lives on a single
	// connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if db.path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return fmt.Errorf("failed to run %q: %w", p, err)
		}
	}

	db.db = conn
	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// Version returns the number of migrations applied.
func (db *DB) Version(ctx context.Context) (int, error) {
	var v int
	err := db.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v)
	return v, err
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// migrate runs each pending migration in its own transaction.
func (db *DB) migrate(ctx context.Context) error {
	version, err := db.Version(ctx)
	if err != nil {
		return err
	}
	if version > len(migrations) {
		return fmt.Errorf("database version %d is newer than this program (%d)", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not take bind parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
