// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// Student represents a student record.
//
// Struct tags:
//
//  1. json:"..."     controls the key names in request bodies.
//  2. db:"..."       maps the field to its column for sqlx scanning.
//  3. validate:"..." rules checked by go-playground/validator on create.
//     "required" means non-zero, so an age of 0 or an empty string is
//     treated as missing. The max rules mirror the column widths.
type Student struct {
	ID        int64  `json:"id"        db:"id"`
	Name      string `json:"name"      db:"name"      validate:"required,max=120"`
	Email     string `json:"email"     db:"email"     validate:"required,max=120"`
	Age       int    `json:"age"       db:"age"       validate:"required"`
	Cellphone string `json:"cellphone" db:"cellphone" validate:"required,max=13"`
}

// StudentUpdate is the body accepted by both update endpoints.
//
// A field left at its zero value ("" or 0, which is also what JSON null
// and an absent key decode to) is not supplied and leaves the stored
// value untouched.
type StudentUpdate struct {
	Name      string `json:"name"      validate:"omitempty,max=120"`
	Email     string `json:"email"     validate:"omitempty,max=120"`
	Age       int    `json:"age"`
	Cellphone string `json:"cellphone" validate:"omitempty,max=13"`
}

// Apply copies every supplied field of u onto s.
func (u StudentUpdate) Apply(s *Student) {
	if u.Name != "" {
		s.Name = u.Name
	}
	if u.Email != "" {
		s.Email = u.Email
	}
	if u.Age != 0 {
		s.Age = u.Age
	}
	if u.Cellphone != "" {
		s.Cellphone = u.Cellphone
	}
}

// Empty reports whether u supplies no field at all.
func (u StudentUpdate) Empty() bool {
	return u == StudentUpdate{}
}
