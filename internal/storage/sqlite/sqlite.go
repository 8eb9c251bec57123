// Package sqlite provides the SQLite backend of storage.Storage.
//
// SQLite stores everything in a single file on disk: no network, no
// separate server process, and no provisioning beyond creating the
// file, which the driver does on open. It is the backend used for local
// development.
//
// The blank import registers the "sqlite3" driver with database/sql.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/head0x49F/students-api/internal/config"
	"github.com/head0x49F/students-api/internal/storage/sqlstore"
)

const schema = `
	CREATE TABLE IF NOT EXISTS student (
		id        INTEGER      PRIMARY KEY AUTOINCREMENT,
		name      VARCHAR(120) NOT NULL,
		email     VARCHAR(120) NOT NULL UNIQUE,
		age       INTEGER      NOT NULL,
		cellphone VARCHAR(13)  NOT NULL UNIQUE
	)
`

// Dialect describes SQLite to sqlstore.
var Dialect = sqlstore.Dialect{
	Name:              "sqlite",
	Schema:            schema,
	IsUniqueViolation: IsUniqueViolation,
}

// New opens the SQLite database at cfg.Path, creating the parent
// directory and the student table if needed.
func New(ctx context.Context, cfg config.Storage) (*sqlstore.Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	// _busy_timeout makes concurrent writers wait instead of failing
	// with "database is locked".
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", cfg.Path)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: ping: %w", err)
	}

	store, err := sqlstore.New(ctx, db, Dialect)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// IsUniqueViolation reports whether err is a UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
