// Package memory provides an in-process storage.Storage. It follows the
// same not-found and uniqueness rules as the SQL backends and is used by
// handler tests and by the "memory" driver for throwaway runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/head0x49F/students-api/internal/storage"
	"github.com/head0x49F/students-api/internal/types"
)

// Memory keeps students in a map guarded by a mutex.
type Memory struct {
	mu       sync.RWMutex
	students map[int64]types.Student
	lastID   int64
}

var _ storage.Storage = (*Memory)(nil)

func New() *Memory {
	return &Memory{students: make(map[int64]types.Student)}
}

func (m *Memory) GetStudents(_ context.Context) ([]types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	students := make([]types.Student, 0, len(m.students))
	for _, s := range m.students {
		students = append(students, s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })

	return students, nil
}

func (m *Memory) GetStudentByID(_ context.Context, id int64) (types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.students[id]
	if !ok {
		return types.Student{}, storage.ErrNotFound
	}
	return s, nil
}

func (m *Memory) CreateStudent(_ context.Context, student types.Student) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.taken(0, student) {
		return types.Student{}, storage.ErrConflict
	}

	m.lastID++
	student.ID = m.lastID
	m.students[student.ID] = student

	return student, nil
}

func (m *Memory) UpdateStudentByID(_ context.Context, id int64, update types.StudentUpdate) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	student, ok := m.students[id]
	if !ok {
		return types.Student{}, storage.ErrNotFound
	}

	update.Apply(&student)
	if m.taken(id, student) {
		return types.Student{}, storage.ErrConflict
	}
	m.students[id] = student

	return student, nil
}

func (m *Memory) DeleteStudentByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.students[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.students, id)

	return nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

// taken reports whether another student than self already uses the
// email or cellphone of s. Callers hold m.mu.
func (m *Memory) taken(self int64, s types.Student) bool {
	for id, other := range m.students {
		if id == self {
			continue
		}
		if other.Email == s.Email || other.Cellphone == s.Cellphone {
			return true
		}
	}
	return false
}
