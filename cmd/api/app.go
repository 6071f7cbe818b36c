package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"libraryapi/internal/author"
	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/crud"
	"libraryapi/internal/entity"
	"libraryapi/internal/httpx"
	"libraryapi/internal/platform/database"
)

// app holds the wired services and the resources to release on shutdown.
type app struct {
	cfg     config.Config
	books   *book.Service
	authors *crud.Service[entity.Author]
	ready   func(ctx context.Context) error
	closers []func()
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg, ready: func(context.Context) error { return nil }}

	var (
		bookRepo   book.Repository
		authorRepo author.Repository
	)
	pool := database.DefaultPoolConfig()

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg.PostgresDSN, pool)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.ready = db.Ping
		bookRepo = book.NewPostgresRepo(db, cfg.DBTimeout)
		authorRepo = author.NewPostgresRepo(db, cfg.DBTimeout)
		log.Printf("store driver=postgres dsn=%s", database.RedactDSN(cfg.PostgresDSN))
	case config.DriverMySQL:
		db, err := database.OpenMySQL(ctx, cfg.MySQLDSN, pool)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { db.Close() })
		a.ready = db.PingContext
		bookRepo = book.NewMySQLRepo(db, cfg.DBTimeout)
		authorRepo = author.NewMySQLRepo(db, cfg.DBTimeout)
		log.Printf("store driver=mysql dsn=%s", database.RedactDSN(cfg.MySQLDSN))
	default:
		authors := author.NewMemoryRepo()
		books := book.NewMemoryRepo(authors)
		authors.ReferencedBy(books)
		bookRepo, authorRepo = books, authors
		log.Printf("store driver=memory")
	}

	a.books = book.NewService(bookRepo, authorRepo)
	a.authors = author.NewService(authorRepo, bookRepo)
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) routes() *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := a.ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	book.NewHTTPHandler(a.books).Register(router, "/v1/books")
	author.NewHTTPHandler(a.authors).Register(router, "/v1/authors")
	return router
}

// handler wraps the routes in the middleware chain. ctx bounds the rate
// limiter's janitor.
func (a *app) handler(ctx context.Context) http.Handler {
	limiter := httpx.NewRateLimitMiddleware(ctx, a.cfg.RateLimitRPS, a.cfg.RateLimitBurst)
	return httpx.Chain(a.routes(),
		httpx.RecoveryMiddleware,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.CORSMiddleware(a.cfg.CORSOrigins),
		httpx.SecurityHeadersMiddleware(a.cfg.EnableHSTS),
		limiter.Middleware,
		httpx.RequestSizeLimitMiddleware(a.cfg.MaxBodyBytes),
	)
}
