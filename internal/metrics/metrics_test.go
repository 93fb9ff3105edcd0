package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodPost, "/search", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/search", http.StatusInternalServerError, time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "/search", "200")); got != 1 {
		t.Fatalf("unexpected counter: %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Fatalf("unmatched route not recorded: %v", got)
	}
	snap := m.Snapshot()
	if snap["total_requests"] != 3 || snap["total_errors"] != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestRecordCacheAndIndex(t *testing.T) {
	m := New()
	m.RecordCacheLookup("search", true)
	m.RecordCacheLookup("search", false)
	m.RecordCacheLookup("search", false)
	m.RecordIndex(12, 340, 2, nil)
	m.RecordIndex(0, 0, 0, errors.New("db down"))
	m.RecordQuery(3)

	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("search", "miss")); got != 2 {
		t.Fatalf("unexpected misses: %v", got)
	}
	if got := testutil.ToFloat64(m.indexDocs); got != 12 {
		t.Fatalf("failed reload must keep gauge, got %v", got)
	}
	if got := testutil.ToFloat64(m.indexReloads.WithLabelValues("error")); got != 1 {
		t.Fatalf("unexpected error reloads: %v", got)
	}
	if m.Snapshot()["total_queries"] != 1 {
		t.Fatalf("unexpected query count")
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.RecordIndex(5, 10, 1, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "tig_index_documents 5") {
		t.Fatalf("missing index gauge in output")
	}
}

func TestAPIKeyAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/metrics", APIKeyAuth("secret"), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		header string
		value  string
		status int
	}{
		{"", "", http.StatusUnauthorized},
		{"X-API-Key", "wrong", http.StatusUnauthorized},
		{"X-API-Key", "secret", http.StatusOK},
		{"Authorization", "Bearer secret", http.StatusOK},
		{"Authorization", "Basic secret", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		if tt.header != "" {
			req.Header.Set(tt.header, tt.value)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tt.status {
			t.Fatalf("%s=%q: expected %d, got %d", tt.header, tt.value, tt.status, rec.Code)
		}
	}
}
