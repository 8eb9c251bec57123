// Package system holds the endpoints that are not about students: the
// greeting pages, the API docs and the health checks.
//
// The health checks return fixed responses and do not look at the database.
// External monitoring uses ok as a liveness check and bad to exercise
// its failure path.
package system

import (
	_ "embed"
	"net/http"

	"github.com/head0x49F/students-api/internal/utils/response"
)

const (
	// HomeMessage is served at /.
	HomeMessage = "<p>Hello from students API!</p>"

	// APIMessage is served at /api and links to the docs.
	APIMessage = `<h1><p style="text-align:center; width:100%"><a href="/docs">Read the docs</a></p></h1>`
)

//go:embed openapi.json
var openAPI []byte

// healthBody is the static body of both health checks.
var healthBody = map[string]string{"some": "json"}

// Home handles GET /
func Home(w http.ResponseWriter, r *http.Request) {
	response.WriteHTML(w, http.StatusOK, HomeMessage)
}

// API handles GET /api
func API(w http.ResponseWriter, r *http.Request) {
	response.WriteHTML(w, http.StatusOK, APIMessage)
}

// Docs handles GET /docs with the OpenAPI description of the service.
func Docs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(openAPI)
}

// HealthOK handles GET /api/health-check/ok
func HealthOK(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, healthBody)
}

// HealthBad handles GET /api/health-check/bad. It always fails.
func HealthBad(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusInternalServerError, healthBody)
}
