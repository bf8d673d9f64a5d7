package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authgateway/internal/dbx"
	"github.com/dmitrijs2005/authgateway/internal/server/migrations"
	"github.com/dmitrijs2005/authgateway/internal/server/repositories/users"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories for local runs
// and tests.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, "sqlite3", migrations.DirSQLite)
}
