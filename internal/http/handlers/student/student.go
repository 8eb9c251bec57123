// Package student contains the HTTP handlers for the student resource.
//
// Handlers are built with the factory pattern: each exported function
// takes its dependencies once, at route registration, and returns the
// http.HandlerFunc called on every request.
//
//	mux.HandleFunc("POST /api/students/add", student.New(storage))
//
// A handler only translates: parse the request, call storage, map the
// result or error to a response.
package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/head0x49F/students-api/internal/storage"
	"github.com/head0x49F/students-api/internal/types"
	"github.com/head0x49F/students-api/internal/utils/response"
)

// DeletedMessage is the body of a successful delete.
const DeletedMessage = "Record deleted."

var (
	errEmptyBody     = errors.New("request body is empty")
	errMalformedBody = errors.New("malformed JSON body")
	errNotObject     = errors.New("request body must be a JSON object")
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names ("cellphone", not "Cellphone").
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
// Returns a JSON array of all students, [] when there are none.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := storage.GetStudents(r.Context())
		if err != nil {
			writeStorageError(w, "error getting students", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, ToResponseList(students))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/get/{id}
//
// Error responses:
//
//	400 Bad Request  — id is not an integer
//	404 Not Found    — no student with that id
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		student, err := storage.GetStudentByID(r.Context(), id)
		if err != nil {
			writeStorageError(w, "error getting student", err, slog.Int64("id", id))
			return
		}

		response.WriteJSON(w, http.StatusOK, ToResponse(student))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students/add
//
// Request body (JSON):
//
//	{ "name": "Ann", "email": "ann@x.com", "age": 21, "cellphone": "5551234567" }
//
// Success response (201 Created): the stored student, id included.
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or a missing field
//	409 Conflict     — email or cellphone already in use
//
// A field sent as 0, "" or null counts as missing.
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var student types.Student
		if err := decodeBody(r, &student); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		// The id is always assigned by storage.
		student.ID = 0

		if err := validate.Struct(student); err != nil {
			writeValidationError(w, err)
			return
		}

		created, err := storage.CreateStudent(r.Context(), student)
		if err != nil {
			writeStorageError(w, "error creating student", err)
			return
		}

		slog.Info("student created", slog.Int64("id", created.ID))
		response.WriteJSON(w, http.StatusCreated, ToResponse(created))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Modify handles PATCH /api/students/modify/{id}
//
// It accepts any subset of name, email, age and cellphone and overwrites
// only the fields supplied with a non-zero value; the rest keep their
// stored values. Cellphone input updates the cellphone field.
//
// Error responses:
//
//	400 Bad Request  — invalid id, empty body, malformed JSON, too-long field
//	404 Not Found    — no student with that id
//	409 Conflict     — new email or cellphone already in use
//
// ─────────────────────────────────────────────────────────────────────────────
func Modify(storage storage.Storage) http.HandlerFunc {
	return update(storage, "modifying")
}

// Change handles PUT /api/students/change/{id} with the same semantics as Modify.
func Change(storage storage.Storage) http.HandlerFunc {
	return update(storage, "changing")
}

func update(storage storage.Storage, verb string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info(verb+" a student", slog.Int64("id", id))

		var fields types.StudentUpdate
		if err := decodeBody(r, &fields); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validate.Struct(fields); err != nil {
			// A missing student is reported before a bad field.
			if _, getErr := storage.GetStudentByID(r.Context(), id); getErr != nil {
				writeStorageError(w, "error updating student", getErr, slog.Int64("id", id))
				return
			}
			writeValidationError(w, err)
			return
		}

		updated, err := storage.UpdateStudentByID(r.Context(), id, fields)
		if err != nil {
			writeStorageError(w, "error updating student", err, slog.Int64("id", id))
			return
		}

		slog.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, ToResponse(updated))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/remove/{id}
// Success response (200 OK): the plain text "Record deleted."
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		if err := storage.DeleteStudentByID(r.Context(), id); err != nil {
			writeStorageError(w, "error deleting student", err, slog.Int64("id", id))
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteText(w, http.StatusOK, DeletedMessage)
	}
}

// pathID parses the {id} segment. On failure it writes a 400 and
// returns false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.Error("invalid id: must be an integer"))
		return 0, false
	}
	return id, true
}

// decodeBody reads exactly one JSON value from the body into v. The
// returned errors are safe to show to clients.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)

	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	if err != nil {
		return bodyError(err)
	}

	// Anything after the first value makes the body malformed.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errMalformedBody
	}

	return nil
}

// bodyError replaces a decoder error, which names Go types, with a
// message in terms of the JSON the client sent.
func bodyError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return errNotObject
		}
		return fmt.Errorf("field %s must be %s", typeErr.Field, jsonKind(typeErr.Type.Kind()))
	}
	return errMalformedBody
}

func jsonKind(k reflect.Kind) string {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	default:
		return "valid"
	}
}

func writeValidationError(w http.ResponseWriter, err error) {
	var validateErrs validator.ValidationErrors
	if errors.As(err, &validateErrs) {
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
		return
	}
	response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
}

func writeStorageError(w http.ResponseWriter, msg string, err error, attrs ...any) {
	status, body := response.StorageError(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, append(attrs, slog.String("error", err.Error()))...)
	} else {
		slog.Info(msg, append(attrs, slog.String("error", err.Error()))...)
	}
	response.WriteJSON(w, status, body)
}
