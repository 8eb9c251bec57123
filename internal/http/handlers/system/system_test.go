package system

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthChecks(t *testing.T) {
	ok := serve(HealthOK, "/api/health-check/ok")
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.JSONEq(t, `{"some":"json"}`, ok.Body.String())

	bad := serve(HealthBad, "/api/health-check/bad")
	assert.Equal(t, http.StatusInternalServerError, bad.Code)
	assert.JSONEq(t, `{"some":"json"}`, bad.Body.String())
}

func TestHomeAndAPI(t *testing.T) {
	home := serve(Home, "/")
	assert.Equal(t, http.StatusOK, home.Code)
	assert.Equal(t, HomeMessage, home.Body.String())

	api := serve(API, "/api")
	assert.Equal(t, http.StatusOK, api.Code)
	assert.Contains(t, api.Body.String(), `href="/docs"`)
	assert.Contains(t, api.Header().Get("Content-Type"), "text/html")
}

func TestDocs(t *testing.T) {
	rec := serve(Docs, "/docs")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	for _, path := range []string{
		"/api/students",
		"/api/students/get/{id}",
		"/api/students/add",
		"/api/students/modify/{id}",
		"/api/students/change/{id}",
		"/api/students/remove/{id}",
		"/api/health-check/ok",
		"/api/health-check/bad",
	} {
		assert.Contains(t, doc.Paths, path)
	}
}
