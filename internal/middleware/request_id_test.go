package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/park285/tig-search-go/internal/requestctx"
)

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/x", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if len(seen) != 32 || rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("unexpected request id %q / header %q", seen, rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if seen != "client-id" {
		t.Fatalf("client id not reused: %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", 200))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if len(seen) != 32 {
		t.Fatalf("oversized id must be replaced, got len %d", len(seen))
	}
}

func TestRequestIDReachesRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	var fromCtx string
	router.GET("/x", func(c *gin.Context) {
		fromCtx = requestctx.ID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(requestctx.Header, "ctx-id")
	router.ServeHTTP(httptest.NewRecorder(), req)
	if fromCtx != "ctx-id" {
		t.Fatalf("request context id = %q", fromCtx)
	}
}

func TestRequestLoggerSkipsHealthyNoise(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := gin.New()
	router.Use(RequestID(), RequestLogger(logger))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/search", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if buf.Len() != 0 {
		t.Fatalf("healthy /health should not be logged: %s", buf.String())
	}

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/search", nil))
	out := buf.String()
	if !strings.Contains(out, "http_request") || !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status=400") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

type recordedRequest struct {
	method string
	route  string
	status int
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []recordedRequest
}

func (f *fakeRecorder) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, recordedRequest{method, route, status})
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := &fakeRecorder{}
	router := gin.New()
	router.Use(Metrics(rec))
	router.GET("/docs/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/docs/01052023", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	if len(rec.seen) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(rec.seen))
	}
	if rec.seen[0].route != "/docs/:id" || rec.seen[0].status != http.StatusOK {
		t.Fatalf("unexpected first observation: %+v", rec.seen[0])
	}
	if rec.seen[1].route != "" || rec.seen[1].status != http.StatusNotFound {
		t.Fatalf("unexpected second observation: %+v", rec.seen[1])
	}
}
