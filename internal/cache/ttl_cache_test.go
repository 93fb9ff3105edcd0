package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func newClockedCache(size int, ttl time.Duration) (*TTLCache[string, int], *fakeClock) {
	clock := &fakeClock{now: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTLCache[string, int](size, ttl)
	c.now = clock.Now
	return c, clock
}

func TestTTLCacheSetGet(t *testing.T) {
	c, _ := newClockedCache(2, time.Second)
	c.Set("a", 1)

	value, ok := c.Get("a")
	if !ok || value != 1 {
		t.Fatalf("expected 1, got %d (ok=%v)", value, ok)
	}
}

func TestTTLCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newClockedCache(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected key 'b' to be evicted")
	}
	if value, ok := c.Get("a"); !ok || value != 1 {
		t.Fatalf("expected key 'a' to remain")
	}
	if value, ok := c.Get("c"); !ok || value != 3 {
		t.Fatalf("expected key 'c' to remain")
	}
}

func TestTTLCacheExpires(t *testing.T) {
	c, clock := newClockedCache(2, time.Second)
	c.Set("a", 1)
	clock.now = clock.now.Add(500 * time.Millisecond)
	c.Set("b", 2)
	clock.now = clock.now.Add(700 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected key 'a' to expire")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatalf("expected key 'b' to outlive 'a'")
	}
	if c.size() != 1 {
		t.Fatalf("expired entry should be dropped on read, len=%d", c.size())
	}
}

func TestTTLCacheOverwriteRefreshes(t *testing.T) {
	c, clock := newClockedCache(2, time.Second)
	c.Set("a", 1)
	clock.now = clock.now.Add(800 * time.Millisecond)
	c.Set("a", 2)
	clock.now = clock.now.Add(800 * time.Millisecond)

	if value, ok := c.Get("a"); !ok || value != 2 {
		t.Fatalf("expected refreshed value, got %d (ok=%v)", value, ok)
	}
}

func TestTTLCacheClear(t *testing.T) {
	c, _ := newClockedCache(4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	if c.size() != 0 {
		t.Fatalf("expected empty cache, len=%d", c.size())
	}
	c.Set("c", 3)
	if value, ok := c.Get("c"); !ok || value != 3 {
		t.Fatalf("cache unusable after clear")
	}
}

func TestTTLCacheGetOrSet(t *testing.T) {
	c, clock := newClockedCache(2, time.Second)
	calls := 0
	create := func() int {
		calls++
		return calls
	}

	if v := c.GetOrSet("a", create); v != 1 {
		t.Fatalf("expected created value 1, got %d", v)
	}
	clock.now = clock.now.Add(500 * time.Millisecond)
	if v := c.GetOrSet("a", create); v != 1 || calls != 1 {
		t.Fatalf("expected cached value, got %d (calls=%d)", v, calls)
	}
	// 조회 시 만료가 연장된다.
	clock.now = clock.now.Add(800 * time.Millisecond)
	if v := c.GetOrSet("a", create); v != 1 {
		t.Fatalf("expected sliding expiry, got %d", v)
	}
	clock.now = clock.now.Add(2 * time.Second)
	if v := c.GetOrSet("a", create); v != 2 {
		t.Fatalf("expected recreated value, got %d", v)
	}
}
