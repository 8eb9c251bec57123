package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/head0x49F/students-api/internal/config"
	"github.com/head0x49F/students-api/internal/http/middleware"
	"github.com/head0x49F/students-api/internal/storage/memory"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{Env: "dev", Storage: config.Storage{Driver: config.DriverMemory}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, log, memory.New())
}

func request(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func TestHandler_Routes(t *testing.T) {
	h := newTestApp(t).Handler()

	tests := []struct {
		method, target, body string
		wantStatus           int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/api", "", http.StatusOK},
		{http.MethodGet, "/docs", "", http.StatusOK},
		{http.MethodGet, "/api/health-check/ok", "", http.StatusOK},
		{http.MethodGet, "/api/health-check/bad", "", http.StatusInternalServerError},
		{http.MethodGet, "/api/students", "", http.StatusOK},
		{http.MethodGet, "/api/students/get/999", "", http.StatusNotFound},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
		{http.MethodPost, "/api/students", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/students/add", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := request(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestHandler_UnroutedRequestsGetJSONErrors(t *testing.T) {
	h := newTestApp(t).Handler()

	tests := []struct {
		method, target string
		wantStatus     int
		wantError      string
	}{
		{http.MethodGet, "/nope", http.StatusNotFound, "Not Found"},
		{http.MethodGet, "/api/students/get/1/extra", http.StatusNotFound, "Not Found"},
		{http.MethodPost, "/api/students", http.StatusMethodNotAllowed, "Method Not Allowed"},
		{http.MethodGet, "/api/students/add", http.StatusMethodNotAllowed, "Method Not Allowed"},
		{http.MethodDelete, "/api/students/modify/1", http.StatusMethodNotAllowed, "Method Not Allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := request(t, h, tt.method, tt.target, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, `{"status":"error","error":"`+tt.wantError+`"}`, rec.Body.String())
			if tt.wantStatus == http.StatusMethodNotAllowed {
				assert.NotEmpty(t, rec.Header().Get("Allow"))
			}
		})
	}
}

func TestHandler_StudentLifecycle(t *testing.T) {
	h := newTestApp(t).Handler()

	rec := request(t, h, http.MethodPost, "/api/students/add",
		`{"name":"Ann","email":"ann@x.com","age":21,"cellphone":"5551234567"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t,
		`{"id":1,"name":"Ann","email":"ann@x.com","age":21,"cellphone":"5551234567"}`,
		rec.Body.String())

	rec = request(t, h, http.MethodPatch, "/api/students/modify/1", `{"age":22}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"id":1,"name":"Ann","email":"ann@x.com","age":22,"cellphone":"5551234567"}`,
		rec.Body.String())

	rec = request(t, h, http.MethodPut, "/api/students/change/1", `{"email":"ann@y.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ann@y.com"`)

	rec = request(t, h, http.MethodDelete, "/api/students/remove/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Record deleted.", rec.Body.String())

	rec = request(t, h, http.MethodGet, "/api/students/get/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	mem, err := OpenStorage(ctx, config.Storage{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.NoError(t, mem.Ping(ctx))

	lite, err := OpenStorage(ctx, config.Storage{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "students.db"),
	})
	require.NoError(t, err)
	defer lite.Close()
	assert.NoError(t, lite.Ping(ctx))

	none, err := OpenStorage(ctx, config.Storage{Driver: "oracle"})
	assert.Error(t, err)
	assert.Nil(t, none)
}

func TestServer(t *testing.T) {
	a := newTestApp(t)
	a.cfg.HTTPServer = config.HTTPServer{Addr: ":0"}

	srv := a.Server()
	assert.Equal(t, ":0", srv.Addr)
	assert.NotNil(t, srv.Handler)
	assert.NoError(t, a.Close())
}
