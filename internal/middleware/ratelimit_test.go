package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/park285/tig-search-go/internal/config"
)

func newLimitedRouter(rpm int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{HTTPRateLimit: config.HTTPRateLimitConfig{
		RequestsPerMinute: rpm,
		CacheSize:         10,
		CacheTTLSeconds:   60,
	}}
	router := gin.New()
	router.Use(RequestID(), RateLimit(cfg))
	router.POST("/search", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func serveFrom(router *gin.Engine, method, path, remote string) int {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimit(t *testing.T) {
	router := newLimitedRouter(1)

	if code := serveFrom(router, http.MethodPost, "/search", "1.2.3.4:1234"); code != http.StatusOK {
		t.Fatalf("expected ok, got %d", code)
	}
	if code := serveFrom(router, http.MethodPost, "/search", "1.2.3.4:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limit, got %d", code)
	}
	if code := serveFrom(router, http.MethodPost, "/search", "5.6.7.8:1234"); code != http.StatusOK {
		t.Fatalf("other caller must have its own bucket, got %d", code)
	}
}

func TestRateLimitSkipsUnlimitedPaths(t *testing.T) {
	router := newLimitedRouter(1)
	for range 3 {
		if code := serveFrom(router, http.MethodGet, "/health", "1.2.3.4:1234"); code != http.StatusOK {
			t.Fatalf("health must not be limited, got %d", code)
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	router := newLimitedRouter(0)
	for range 5 {
		if code := serveFrom(router, http.MethodPost, "/search", "1.2.3.4:1234"); code != http.StatusOK {
			t.Fatalf("disabled limiter must pass, got %d", code)
		}
	}
}

func TestRateLimitSetsRetryAfter(t *testing.T) {
	router := newLimitedRouter(1)
	serveFrom(router, http.MethodPost, "/search", "9.9.9.9:1")

	req := httptest.NewRequest(http.MethodPost, "/search", nil)
	req.RemoteAddr = "9.9.9.9:1"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limit, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got == "" || got == "0" {
		t.Fatalf("unexpected Retry-After: %q", got)
	}
}
