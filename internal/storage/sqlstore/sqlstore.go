// Package sqlstore implements storage.Storage on top of sqlx for every
// SQL backend. The backends differ only in their driver, their DDL and
// how they report a unique-constraint violation, so each one describes
// itself with a Dialect and hands an open connection pool to New.
//
// Queries are written with ? placeholders and rebound per driver, so
// PostgreSQL receives $1, $2, ... while MySQL and SQLite keep ?.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/head0x49F/students-api/internal/storage"
	"github.com/head0x49F/students-api/internal/types"
)

// Table is the name of the only table the service owns.
const Table = "student"

const (
	selectStudents = "SELECT id, name, email, age, cellphone FROM " + Table
	insertStudent  = "INSERT INTO " + Table + " (name, email, age, cellphone) VALUES (?, ?, ?, ?)"
	updateStudent  = "UPDATE " + Table + " SET name = ?, email = ?, age = ?, cellphone = ? WHERE id = ?"
	deleteStudent  = "DELETE FROM " + Table + " WHERE id = ?"
)

// Dialect describes what differs between SQL backends.
type Dialect struct {
	// Name is used in log lines and error messages.
	Name string

	// Schema is an idempotent CREATE TABLE IF NOT EXISTS statement.
	Schema string

	// Returning selects INSERT ... RETURNING id instead of
	// LastInsertId, for drivers that do not support the latter.
	Returning bool

	// IsUniqueViolation reports whether err is the driver's
	// unique-constraint error.
	IsUniqueViolation func(err error) bool
}

// Store is the SQL implementation of storage.Storage.
// A single *sqlx.DB is safe for concurrent use by multiple goroutines.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
}

var _ storage.Storage = (*Store)(nil)

// New creates the student table if it does not exist yet and returns a
// ready-to-use Store. The Store takes ownership of db.
func New(ctx context.Context, db *sqlx.DB, dialect Dialect) (*Store, error) {
	if _, err := db.ExecContext(ctx, dialect.Schema); err != nil {
		return nil, fmt.Errorf("sqlstore.New: %s: create table: %w", dialect.Name, err)
	}

	return &Store{db: db, dialect: dialect}, nil
}

// GetStudents returns all rows ordered by id.
func (s *Store) GetStudents(ctx context.Context) ([]types.Student, error) {
	// Non-nil so an empty table encodes as [] rather than null.
	students := make([]types.Student, 0)

	if err := s.db.SelectContext(ctx, &students, selectStudents+" ORDER BY id"); err != nil {
		return nil, fmt.Errorf("GetStudents: select: %w", err)
	}

	return students, nil
}

// GetStudentByID fetches exactly one row matched by primary key.
func (s *Store) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	return s.getStudent(ctx, s.db, id)
}

func (s *Store) getStudent(ctx context.Context, q sqlx.QueryerContext, id int64) (types.Student, error) {
	var student types.Student

	err := sqlx.GetContext(ctx, q, &student, s.db.Rebind(selectStudents+" WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: get: %w", err)
	}

	return student, nil
}

// CreateStudent inserts a new row and returns it with its generated id.
// The UNIQUE constraints on email and cellphone are what reject
// duplicates, so two concurrent inserts cannot both succeed.
func (s *Store) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	args := []any{student.Name, student.Email, student.Age, student.Cellphone}

	var id int64
	if s.dialect.Returning {
		err := s.db.QueryRowxContext(ctx, s.db.Rebind(insertStudent+" RETURNING id"), args...).Scan(&id)
		if err != nil {
			return types.Student{}, s.classify("CreateStudent: insert", err)
		}
	} else {
		result, err := s.db.ExecContext(ctx, s.db.Rebind(insertStudent), args...)
		if err != nil {
			return types.Student{}, s.classify("CreateStudent: insert", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return types.Student{}, fmt.Errorf("CreateStudent: last insert id: %w", err)
		}
	}

	student.ID = id
	return student, nil
}

// UpdateStudentByID loads the row, applies the supplied fields and
// writes it back inside one transaction.
func (s *Store) UpdateStudentByID(ctx context.Context, id int64, update types.StudentUpdate) (types.Student, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	student, err := s.getStudent(ctx, tx, id)
	if err != nil {
		return types.Student{}, err
	}

	if update.Empty() {
		return student, tx.Commit()
	}

	update.Apply(&student)

	_, err = tx.ExecContext(ctx, tx.Rebind(updateStudent),
		student.Name, student.Email, student.Age, student.Cellphone, id)
	if err != nil {
		return types.Student{}, s.classify("UpdateStudentByID: update", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: commit: %w", err)
	}

	return student, nil
}

// DeleteStudentByID removes a row by primary key.
func (s *Store) DeleteStudentByID(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(deleteStudent), id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// classify turns a driver error into storage.ErrConflict when it is a
// unique-constraint violation and wraps it with op otherwise.
func (s *Store) classify(op string, err error) error {
	if s.dialect.IsUniqueViolation != nil && s.dialect.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, storage.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
