// Package storage defines the Storage interface, the contract any
// database backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so switching databases means
// implementing it for the new backend and changing the driver in the
// config. Tests pass the in-memory implementation instead of a real
// database.
package storage

import (
	"context"
	"errors"

	"github.com/head0x49F/students-api/internal/types"
)

// ErrNotFound is returned when no student has the requested id.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("student not found")

// ErrConflict is returned when a write would break the uniqueness of
// email or cellphone. Handlers translate it into an HTTP 409 response.
var ErrConflict = errors.New("student with this email or cellphone already exists")

// Storage is the database contract.
type Storage interface {
	// GetStudents returns every student in natural storage order.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// GetStudentByID fetches a single student by primary key.
	// Returns ErrNotFound if there is no such student.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// CreateStudent inserts a new student and returns it with the
	// generated id. Returns ErrConflict if email or cellphone is taken.
	CreateStudent(ctx context.Context, student types.Student) (types.Student, error)

	// UpdateStudentByID overwrites the supplied fields of an existing
	// student and returns the stored result.
	UpdateStudentByID(ctx context.Context, id int64, update types.StudentUpdate) (types.Student, error)

	// DeleteStudentByID removes a student permanently.
	DeleteStudentByID(ctx context.Context, id int64) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}
