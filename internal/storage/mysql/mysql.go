// Package mysql provides the MySQL backend of storage.Storage, the
// database the service runs against in production.
//
// On first start the target database may not exist yet, so New
// connects to the server without selecting a database, creates it if
// needed, and only then opens the pool used for requests.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/head0x49F/students-api/internal/config"
	"github.com/head0x49F/students-api/internal/storage/sqlstore"
)

// DefaultPort is used when config.Storage.Port is zero.
const DefaultPort = 3306

// errDuplicateEntry is ER_DUP_ENTRY.
const errDuplicateEntry = 1062

const schema = `
	CREATE TABLE IF NOT EXISTS student (
		id        INT          NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name      VARCHAR(120) NOT NULL,
		email     VARCHAR(120) NOT NULL UNIQUE,
		age       INT          NOT NULL,
		cellphone VARCHAR(13)  NOT NULL UNIQUE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

// Dialect describes MySQL to sqlstore.
var Dialect = sqlstore.Dialect{
	Name:              "mysql",
	Schema:            schema,
	IsUniqueViolation: IsUniqueViolation,
}

// DSN builds the driver connection string. With withDB false the DSN
// selects no database, which is what provisioning needs.
func DSN(cfg config.Storage, withDB bool) string {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	c := gomysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	c.ParseTime = true
	c.Loc = time.UTC
	c.Params = map[string]string{"charset": "utf8mb4"}
	if withDB {
		c.DBName = cfg.Name
	}

	return c.FormatDSN()
}

// New provisions the database named by cfg.Name and returns a store
// backed by it.
func New(ctx context.Context, cfg config.Storage) (*sqlstore.Store, error) {
	if err := Provision(ctx, cfg); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("mysql", DSN(cfg, true))
	if err != nil {
		return nil, fmt.Errorf("mysql.New: open db: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql.New: ping: %w", err)
	}

	store, err := sqlstore.New(ctx, db, Dialect)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Provision creates the database if it does not exist. It is a one-time
// bootstrap step run before the service handles traffic.
func Provision(ctx context.Context, cfg config.Storage) error {
	db, err := sql.Open("mysql", DSN(cfg, false))
	if err != nil {
		return fmt.Errorf("mysql.Provision: open server: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := "CREATE DATABASE IF NOT EXISTS " + quoteIdentifier(cfg.Name) + " CHARACTER SET utf8mb4"
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("mysql.Provision: create database %q: %w", cfg.Name, err)
	}

	return nil
}

// IsUniqueViolation reports whether err is a duplicate-key error.
func IsUniqueViolation(err error) bool {
	var mysqlErr *gomysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
