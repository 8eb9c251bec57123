package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStudentUpdate_Apply(t *testing.T) {
	base := Student{ID: 1, Name: "Ann", Email: "ann@x.com", Age: 21, Cellphone: "5551234567"}

	tests := []struct {
		name   string
		update StudentUpdate
		want   Student
	}{
		{
			name:   "name only",
			update: StudentUpdate{Name: "Anna"},
			want:   Student{ID: 1, Name: "Anna", Email: "ann@x.com", Age: 21, Cellphone: "5551234567"},
		},
		{
			name:   "age only",
			update: StudentUpdate{Age: 22},
			want:   Student{ID: 1, Name: "Ann", Email: "ann@x.com", Age: 22, Cellphone: "5551234567"},
		},
		{
			name:   "cellphone goes to cellphone",
			update: StudentUpdate{Cellphone: "5550000000"},
			want:   Student{ID: 1, Name: "Ann", Email: "ann@x.com", Age: 21, Cellphone: "5550000000"},
		},
		{
			name:   "zero values are skipped",
			update: StudentUpdate{},
			want:   base,
		},
		{
			name:   "every field",
			update: StudentUpdate{Name: "Bob", Email: "bob@x.com", Age: 30, Cellphone: "5559999999"},
			want:   Student{ID: 1, Name: "Bob", Email: "bob@x.com", Age: 30, Cellphone: "5559999999"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base
			tt.update.Apply(&got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStudentUpdate_Empty(t *testing.T) {
	assert.True(t, StudentUpdate{}.Empty())
	assert.False(t, StudentUpdate{Age: 1}.Empty())
}
