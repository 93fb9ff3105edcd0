package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/park285/tig-search-go/internal/cache"
	"github.com/park285/tig-search-go/internal/search"
)

type staticIndex struct{ stats search.Stats }

func (s staticIndex) Stats() search.Stats { return s.stats }

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type staticSnapshot map[string]float64

func (s staticSnapshot) Snapshot() map[string]float64 { return s }

func TestCollectNotLoadedIsDegraded(t *testing.T) {
	checker := NewChecker(staticIndex{}, nil, nil, nil)
	resp := checker.Collect(context.Background(), false)

	if resp.Status != "degraded" {
		t.Fatalf("expected degraded, got %s", resp.Status)
	}
	if resp.Components["index"].Status != "degraded" {
		t.Fatalf("index should be degraded")
	}
	if resp.Components["result_cache"].Detail["backend"] != cache.BackendDisabled {
		t.Fatalf("nil cache should report disabled")
	}
	if _, ok := resp.Components["index_store"]; ok {
		t.Fatalf("store component must be omitted without a store")
	}
}

func TestCollectDeepChecksStore(t *testing.T) {
	loaded := staticIndex{stats: search.Stats{Loaded: true, Documents: 3, Generation: 1, LoadedAt: time.Now()}}
	failing := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	checker := NewChecker(loaded, cache.NewMemoryCache(1, time.Minute), failing, staticSnapshot{"total_requests": 7})

	shallow := checker.Collect(context.Background(), false)
	if shallow.Status != "ok" {
		t.Fatalf("shallow check must not ping, got %s", shallow.Status)
	}
	if shallow.Components["app"].Detail["total_requests"] != 7.0 {
		t.Fatalf("metrics snapshot missing: %+v", shallow.Components["app"].Detail)
	}

	deep := checker.Collect(context.Background(), true)
	if deep.Status != "degraded" || deep.Components["index_store"].Detail["error"] != "connection refused" {
		t.Fatalf("unexpected deep result: %+v", deep)
	}
}

func TestCollectDeepHealthy(t *testing.T) {
	loaded := staticIndex{stats: search.Stats{Loaded: true, Documents: 1, Generation: 1, LoadedAt: time.Now()}}
	ok := pingFunc(func(ctx context.Context) error {
		if _, has := ctx.Deadline(); !has {
			return errors.New("deep check must be bounded")
		}
		return nil
	})
	resp := NewChecker(loaded, cache.NewMemoryCache(1, time.Minute), ok, nil).Collect(context.Background(), true)
	if resp.Status != "ok" {
		t.Fatalf("expected ok, got %+v", resp)
	}
}
