// Package app holds the application context built once at startup: the
// configuration, the logger and the storage backend. Handlers receive
// what they need from it at route registration instead of reaching for
// process-wide globals, so tests can build isolated instances.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/head0x49F/students-api/internal/config"
	"github.com/head0x49F/students-api/internal/http/handlers/student"
	"github.com/head0x49F/students-api/internal/http/handlers/system"
	"github.com/head0x49F/students-api/internal/http/middleware"
	"github.com/head0x49F/students-api/internal/storage"
	"github.com/head0x49F/students-api/internal/storage/memory"
	"github.com/head0x49F/students-api/internal/storage/mysql"
	"github.com/head0x49F/students-api/internal/storage/postgres"
	"github.com/head0x49F/students-api/internal/storage/sqlite"
	"github.com/head0x49F/students-api/internal/storage/sqlstore"
)

type App struct {
	cfg     *config.Config
	log     *slog.Logger
	storage storage.Storage
}

func New(cfg *config.Config, log *slog.Logger, storage storage.Storage) *App {
	return &App{cfg: cfg, log: log, storage: storage}
}

// OpenStorage opens, and provisions where needed, the backend selected
// by cfg.Driver.
func OpenStorage(ctx context.Context, cfg config.Storage) (storage.Storage, error) {
	var (
		store *sqlstore.Store
		err   error
	)

	switch cfg.Driver {
	case config.DriverMySQL:
		store, err = mysql.New(ctx, cfg)
	case config.DriverPostgres:
		store, err = postgres.New(ctx, cfg)
	case config.DriverSQLite:
		store, err = sqlite.New(ctx, cfg)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	// A nil *sqlstore.Store must not become a non-nil storage.Storage.
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Handler registers every route and wraps the router in middleware.
//
// Route table:
//
//	GET    /                              greeting
//	GET    /api                           link to /docs
//	GET    /docs                          OpenAPI document
//	GET    /api/students                  list students
//	GET    /api/students/get/{id}         get one student
//	POST   /api/students/add              create a student
//	PATCH  /api/students/modify/{id}      update supplied fields
//	PUT    /api/students/change/{id}      update supplied fields
//	DELETE /api/students/remove/{id}      delete a student
//	GET    /api/health-check/ok           200 health check
//	GET    /api/health-check/bad          500 health check
func (a *App) Handler() http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", system.Home)
	router.HandleFunc("GET /api", system.API)
	router.HandleFunc("GET /docs", system.Docs)

	router.HandleFunc("GET /api/students", student.GetList(a.storage))
	router.HandleFunc("GET /api/students/get/{id}", student.GetByID(a.storage))
	router.HandleFunc("POST /api/students/add", student.New(a.storage))
	router.HandleFunc("PATCH /api/students/modify/{id}", student.Modify(a.storage))
	router.HandleFunc("PUT /api/students/change/{id}", student.Change(a.storage))
	router.HandleFunc("DELETE /api/students/remove/{id}", student.Delete(a.storage))

	router.HandleFunc("GET /api/health-check/ok", system.HealthOK)
	router.HandleFunc("GET /api/health-check/bad", system.HealthBad)

	return middleware.Chain(middleware.JSONFallback(router),
		middleware.RequestID,
		middleware.Logger(a.log),
		middleware.Recoverer(a.log),
	)
}

// Server returns an http.Server configured from cfg.HTTPServer.
func (a *App) Server() *http.Server {
	return &http.Server{
		Addr:         a.cfg.Addr,
		Handler:      a.Handler(),
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.log.Handler(), slog.LevelError),
	}
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.storage.Close()
}
