package student

import "github.com/head0x49F/students-api/internal/types"

// StudentResponse is the JSON shape of a student in every response.
type StudentResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
	Cellphone string `json:"cellphone"`
}

// ToResponse projects a stored student to its response shape.
func ToResponse(s types.Student) StudentResponse {
	return StudentResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Age:       s.Age,
		Cellphone: s.Cellphone,
	}
}

// ToResponseList projects a list of students. The result is never nil,
// so an empty list encodes as [].
func ToResponseList(students []types.Student) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, ToResponse(s))
	}
	return out
}
