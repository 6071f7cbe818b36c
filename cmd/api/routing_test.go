package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/config"
	"libraryapi/internal/httpx"
)

func testConfig() config.Config {
	return config.Config{
		Addr:            ":0",
		StoreDriver:     config.DriverMemory,
		DBTimeout:       time.Second,
		CORSOrigins:     []string{"http://localhost:4200"},
		RateLimitRPS:    1000,
		RateLimitBurst:  1000,
		MaxBodyBytes:    1 << 10,
		ShutdownTimeout: time.Second,
	}
}

func newTestServer(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	a, err := newApp(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a.handler(ctx)
}

func TestV1Routing(t *testing.T) {
	h := newTestServer(t, testConfig())

	cases := []struct {
		method, target string
		want           int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/v1/books", http.StatusOK},
		{http.MethodGet, "/v1/authors", http.StatusOK},
		{http.MethodGet, "/v1/books/export", http.StatusOK},
		{http.MethodGet, "/v1/books/isbn/9780306406157", http.StatusNotFound},
		{http.MethodGet, "/v1/authors/00000000-0000-0000-0000-000000000001", http.StatusNotFound},
		{http.MethodGet, "/v1/books/not-a-uuid", http.StatusBadRequest},
		{http.MethodGet, "/books", http.StatusNotFound},
		{http.MethodPost, "/v1/books/export", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tc.method, tc.target, nil))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestMiddlewareChain(t *testing.T) {
	h := newTestServer(t, testConfig())

	t.Run("request id and security headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/books", nil))
		assert.NotEmpty(t, w.Header().Get(httpx.RequestIDHeader))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("cors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/authors", nil)
		req.Header.Set("Origin", "http://localhost:4200")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, "http://localhost:4200", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("body limit", func(t *testing.T) {
		body := `{"name":"` + strings.Repeat("x", 4096) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/authors", strings.NewReader(body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	h := newTestServer(t, cfg)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
