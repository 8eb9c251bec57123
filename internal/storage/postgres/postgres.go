// Package postgres provides the PostgreSQL backend of storage.Storage.
//
// Like the MySQL backend it provisions the target database on first
// start. PostgreSQL has no CREATE DATABASE IF NOT EXISTS, so Provision
// checks pg_database on the maintenance database first.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/head0x49F/students-api/internal/config"
	"github.com/head0x49F/students-api/internal/storage/sqlstore"
)

// DefaultPort is used when config.Storage.Port is zero.
const DefaultPort = 5432

// MaintenanceDB is the database Provision connects to.
const MaintenanceDB = "postgres"

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation = "23505"

const schema = `
	CREATE TABLE IF NOT EXISTS student (
		id        SERIAL       PRIMARY KEY,
		name      VARCHAR(120) NOT NULL,
		email     VARCHAR(120) NOT NULL UNIQUE,
		age       INTEGER      NOT NULL,
		cellphone VARCHAR(13)  NOT NULL UNIQUE
	)
`

// Dialect describes PostgreSQL to sqlstore. lib/pq does not implement
// LastInsertId, so inserts use RETURNING id.
var Dialect = sqlstore.Dialect{
	Name:              "postgres",
	Schema:            schema,
	Returning:         true,
	IsUniqueViolation: IsUniqueViolation,
}

// DSN builds a postgres:// URL for the given database name.
func DSN(cfg config.Storage, dbname string) string {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:   "/" + dbname,
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	if cfg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
	}

	return u.String()
}

// New provisions the database named by cfg.Name and returns a store
// backed by it.
func New(ctx context.Context, cfg config.Storage) (*sqlstore.Store, error) {
	if err := Provision(ctx, cfg); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("postgres", DSN(cfg, cfg.Name))
	if err != nil {
		return nil, fmt.Errorf("postgres.New: open db: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	store, err := sqlstore.New(ctx, db, Dialect)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Provision creates the database if it does not exist.
func Provision(ctx context.Context, cfg config.Storage) error {
	db, err := sql.Open("postgres", DSN(cfg, MaintenanceDB))
	if err != nil {
		return fmt.Errorf("postgres.Provision: open server: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var exists bool
	err = db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", cfg.Name,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("postgres.Provision: check database %q: %w", cfg.Name, err)
	}
	if exists {
		return nil
	}

	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(cfg.Name)); err != nil {
		return fmt.Errorf("postgres.Provision: create database %q: %w", cfg.Name, err)
	}

	return nil
}

// IsUniqueViolation reports whether err is a unique_violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
