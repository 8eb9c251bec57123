package student

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/head0x49F/students-api/internal/types"
)

func TestToResponse(t *testing.T) {
	got := ToResponse(types.Student{ID: 7, Name: "Ann", Email: "ann@x.com", Age: 21, Cellphone: "5551234567"})

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":7,"name":"Ann","email":"ann@x.com","age":21,"cellphone":"5551234567"}`,
		string(raw))
}

func TestToResponseList_Empty(t *testing.T) {
	raw, err := json.Marshal(ToResponseList(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
