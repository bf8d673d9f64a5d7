// Package repomanager hands out repositories bound to a database handle and
// runs the schema migrations for the configured backend.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authgateway/internal/dbx"
	"github.com/dmitrijs2005/authgateway/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}

// Open picks the backend from the DSN scheme, opens the database and pings
// it. Supported forms are "postgres://..." or "postgresql://..." (pgx) and
// "sqlite:<path>" (modernc sqlite; "sqlite::memory:" for an in-memory store).
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	var (
		db  *sql.DB
		m   RepositoryManager
		err error
	)

	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		db, err = sql.Open("pgx", dsn)
		m = &PostgresRepositoryManager{}
	case strings.HasPrefix(dsn, "sqlite:"):
		db, err = sql.Open("sqlite", strings.TrimPrefix(dsn, "sqlite:"))
		m = &SQLiteRepositoryManager{}
		if err == nil {
			// one connection serialises writes and keeps ":memory:" a single database
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, nil, fmt.Errorf("unsupported database dsn %q", redact(dsn))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	return db, m, nil
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i+3] + "..."
	}
	if i := strings.Index(dsn, ":"); i >= 0 {
		return dsn[:i+1] + "..."
	}
	return "..."
}
