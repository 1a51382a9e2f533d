package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/airpass/internal/client/migrations"
	"github.com/dmitrijs2005/airpass/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/airpass/internal/client/repositories/pending"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Repositories groups the local stores of the CLI.
type Repositories struct {
	Metadata metadata.Repository
	Pending  pending.Repository
}

// NewRepositories binds every local repository to db.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Metadata: metadata.NewSQLiteRepository(db),
		Pending:  pending.NewSQLiteRepository(db),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the SQLite file at dsn and applies
// the embedded migrations.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer keeps SQLite from reporting SQLITE_BUSY under the watcher goroutine
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	return db, nil
}
