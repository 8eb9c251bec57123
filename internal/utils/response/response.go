// Package response provides helpers for writing consistent HTTP responses.
//
// Every handler funnels its output through here so API consumers always
// see the same error shape, and so storage errors map to the same status
// codes everywhere.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/head0x49F/students-api/internal/storage"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a list…).
// Error responses always look like:
//
//	{ "status": "error", "error": "field name is required" }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteText writes a plain-text body.
func WriteText(w http.ResponseWriter, status int, body string) error {
	return write(w, "text/plain; charset=utf-8", status, body)
}

// WriteHTML writes an HTML fragment.
func WriteHTML(w http.ResponseWriter, status int, body string) error {
	return write(w, "text/html; charset=utf-8", status, body)
}

func write(w http.ResponseWriter, contentType string, status int, body string) error {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, err := w.Write([]byte(body))
	return err
}

// Error wraps a client-facing message into the standard Response shape.
func Error(message string) Response {
	return Response{Status: StatusError, Error: message}
}

// GeneralError wraps any Go error into the standard Response shape.
// Only use it for errors whose text is safe to show to clients, such as
// JSON decode errors.
func GeneralError(err error) Response {
	return Error(err.Error())
}

// ─────────────────────────────────────────────────────────────────────────────
// StorageError maps an error returned by storage.Storage to a status code
// and a client-safe Response:
//
//	storage.ErrNotFound → 404
//	storage.ErrConflict → 409
//	anything else       → 500 with a generic message
//
// Internal details of the 500 case are for the logs, not the client.
// ─────────────────────────────────────────────────────────────────────────────
func StorageError(err error) (int, Response) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, Error(storage.ErrNotFound.Error())
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict, Error(storage.ErrConflict.Error())
	default:
		return http.StatusInternalServerError, Error(http.StatusText(http.StatusInternalServerError))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts a slice of validator.FieldError values into
// a single human-readable Response.
//
// Example output:
//
//	{ "status": "error", "error": "field name is required, field age is required" }
//
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "max":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at most %s characters", e.Field(), e.Param()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Error(strings.Join(errMessages, ", "))
}
