// Package cache 는 전처리/검색 결과 캐시(메모리 LRU 또는 Valkey)를 제공한다.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// TTLCache 는 항목별 만료 시간과 최대 크기를 가진 LRU 캐시다.
type TTLCache[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	order   *list.List
	items   map[K]*list.Element
}

// NewTTLCache 는 만료 시간과 최대 크기를 갖는 TTLCache 를 생성한다.
func NewTTLCache[K comparable, V any](maxSize int, ttl time.Duration) *TTLCache[K, V] {
	if maxSize <= 0 {
		maxSize = 1
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return &TTLCache[K, V]{
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		order:   list.New(),
		items:   make(map[K]*list.Element, maxSize),
	}
}

// Get 은 만료되지 않은 값을 반환하고 최근 사용으로 표시한다.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		return zero, false
	}

	ent := element.Value.(*entry[K, V])
	if c.expired(ent) {
		c.removeElement(element)
		return zero, false
	}

	c.order.MoveToFront(element)
	return ent.value, true
}

// Set 은 값을 저장하고 만료 시간을 새로 잡는다.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[key]; ok {
		ent := element.Value.(*entry[K, V])
		ent.value = value
		ent.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(element)
		return
	}
	c.insertLocked(key, value)
}

// GetOrSet: 유효한 값이 있으면 반환하고, 없으면 create 결과를 저장 후 반환합니다.
// create 는 잠금 안에서 호출됩니다.
func (c *TTLCache[K, V]) GetOrSet(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[key]; ok {
		ent := element.Value.(*entry[K, V])
		if !c.expired(ent) {
			ent.expiresAt = c.now().Add(c.ttl)
			c.order.MoveToFront(element)
			return ent.value
		}
		c.removeElement(element)
	}

	value := create()
	c.insertLocked(key, value)
	return value
}

// Clear 는 모든 항목을 제거한다.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	clear(c.items)
}

// size 는 만료 여부와 무관한 저장 항목 수다.
func (c *TTLCache[K, V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *TTLCache[K, V]) expired(ent *entry[K, V]) bool {
	return !c.now().Before(ent.expiresAt)
}

// insertLocked 는 새 항목을 맨 앞에 넣고 크기를 넘는 오래된 항목을 내보낸다.
func (c *TTLCache[K, V]) insertLocked(key K, value V) {
	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, expiresAt: c.now().Add(c.ttl)})
	for len(c.items) > c.maxSize {
		c.removeElement(c.order.Back())
	}
}

func (c *TTLCache[K, V]) removeElement(element *list.Element) {
	if element == nil {
		return
	}
	c.order.Remove(element)
	delete(c.items, element.Value.(*entry[K, V]).key)
}
