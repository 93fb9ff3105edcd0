package cache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	"github.com/park285/tig-search-go/internal/config"
)

const keyPrefix = "tig:result:"

// Backend 이름
const (
	BackendDisabled = "disabled"
	BackendMemory   = "memory"
	BackendValkey   = "valkey"
)

// ResultCache: 질의 결과(직렬화된 JSON)를 보관하는 캐시입니다.
// 조회 실패(miss)는 오류가 아니며 (nil, false, nil) 로 표현합니다.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Backend() string
	Ping(ctx context.Context) error
	Close()
}

// Key 는 결과 종류, 색인 세대, 질의로 캐시 키를 만든다.
// 색인이 다시 로드되면 세대가 바뀌어 이전 항목은 자연히 만료된다.
func Key(kind string, generation uint64, query string) string {
	sum := sha256.Sum256([]byte(query))
	return keyPrefix + kind + ":" + strconv.FormatUint(generation, 10) + ":" + hex.EncodeToString(sum[:16])
}

// GetJSON 은 캐시 값을 dst 로 역직렬화한다.
func GetJSON(ctx context.Context, c ResultCache, key string, dst any) (bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("unmarshal cached value: %w", err)
	}
	return true, nil
}

// SetJSON 은 값을 직렬화하여 저장한다.
func SetJSON(ctx context.Context, c ResultCache, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.Set(ctx, key, raw)
}

// New 는 설정에 따라 결과 캐시를 생성한다.
// 비활성이면 항상 miss 인 캐시, URL 이 없으면 메모리 LRU, 있으면 Valkey 를 쓴다.
func New(ctx context.Context, cfg config.ResultCacheConfig, logger *slog.Logger) (ResultCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case !cfg.Enabled:
		return Disabled(), nil
	case !cfg.UsesValkey():
		return NewMemoryCache(cfg.MemorySize, cfg.TTL()), nil
	}
	return Connect(ctx, cfg, logger)
}

// MemoryCache 는 프로세스 내 LRU 결과 캐시다.
type MemoryCache struct {
	items *TTLCache[string, []byte]
}

// NewMemoryCache 는 메모리 결과 캐시를 생성한다.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{items: NewTTLCache[string, []byte](size, ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := m.items.Get(key)
	return value, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	m.items.Set(key, value)
	return nil
}

func (m *MemoryCache) Backend() string { return BackendMemory }

func (m *MemoryCache) Ping(context.Context) error { return nil }

func (m *MemoryCache) Close() { m.items.Clear() }

// ValkeyCache 는 Valkey 기반 결과 캐시다. 값은 압축 표시 바이트와 함께 저장된다.
type ValkeyCache struct {
	client valkey.Client
	ttl    time.Duration
}

// Connect: Valkey 에 연결하고 PING 으로 확인합니다. 실패하면 고정 간격으로 재시도합니다.
func Connect(ctx context.Context, cfg config.ResultCacheConfig, logger *slog.Logger) (*ValkeyCache, error) {
	conn, err := parseStoreURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse result cache url: %w", err)
	}

	var tlsConfig *tls.Config
	if conn.useTLS {
		host, _, splitErr := net.SplitHostPort(conn.addr)
		if splitErr != nil {
			return nil, fmt.Errorf("parse result cache addr: %w", splitErr)
		}
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}
	}
	option := valkey.ClientOption{
		TLSConfig:    tlsConfig,
		Username:     conn.username,
		Password:     conn.password,
		InitAddress:  []string{conn.addr},
		SelectDB:     conn.selectDB,
		DisableCache: cfg.DisableClientCache,
	}

	attempts := max(1, cfg.ConnectMaxAttempts)
	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(time.Duration(cfg.ConnectRetrySeconds)*time.Second),
			uint64(attempts-1),
		),
		ctx,
	)

	var client valkey.Client
	attempt := 0
	err = backoff.RetryNotify(func() error {
		attempt++
		c, dialErr := valkey.NewClient(option)
		if dialErr != nil {
			return dialErr
		}
		if pingErr := c.Do(ctx, c.B().Ping().Build()).Error(); pingErr != nil {
			c.Close()
			return pingErr
		}
		client = c
		return nil
	}, policy, func(err error, wait time.Duration) {
		logger.Warn("result_cache_connect_retry", "addr", conn.addr, "attempt", attempt, "retry_in", wait, "err", err)
	})
	if err != nil {
		return nil, fmt.Errorf("connect to valkey after %d attempts: %w", attempt, err)
	}

	logger.Info("result_cache_connected", "addr", conn.addr, "db", conn.selectDB, "tls", conn.useTLS)
	return &ValkeyCache{client: client, ttl: cfg.TTL()}, nil
}

func (v *ValkeyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := v.client.Do(ctx, v.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cached result: %w", err)
	}
	value, err := decodeValue(raw)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (v *ValkeyCache) Set(ctx context.Context, key string, value []byte) error {
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}
	cmd := v.client.B().Set().Key(key).Value(valkey.BinaryString(encoded)).Ex(v.ttl).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set cached result: %w", err)
	}
	return nil
}

func (v *ValkeyCache) Backend() string { return BackendValkey }

// Ping 은 Valkey 연결 상태를 점검한다.
func (v *ValkeyCache) Ping(ctx context.Context) error {
	if err := v.client.Do(ctx, v.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("valkey ping failed: %w", err)
	}
	return nil
}

func (v *ValkeyCache) Close() {
	if v != nil && v.client != nil {
		v.client.Close()
	}
}

type disabledCache struct{}

// Disabled 는 항상 miss 인 캐시를 반환한다.
func Disabled() ResultCache { return disabledCache{} }

func (disabledCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (disabledCache) Set(context.Context, string, []byte) error        { return nil }
func (disabledCache) Backend() string                                  { return BackendDisabled }
func (disabledCache) Ping(context.Context) error                       { return nil }
func (disabledCache) Close()                                           {}

// IsDisabled 는 캐시가 비활성 구현인지 확인한다.
func IsDisabled(c ResultCache) bool {
	return c == nil || c.Backend() == BackendDisabled
}
