package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/park285/tig-search-go/internal/cache"
)

var tracer = otel.Tracer("github.com/park285/tig-search-go/internal/search")

var (
	// ErrIndexNotLoaded 는 색인이 아직 로드되지 않았음을 뜻한다.
	ErrIndexNotLoaded = errors.New("search index not loaded")
	// ErrEmptyQuery 는 검색 질의가 비어 있음을 뜻한다.
	ErrEmptyQuery = errors.New("no query provided")
	// ErrNoLoader 는 색인 저장소가 구성되지 않았음을 뜻한다.
	ErrNoLoader = errors.New("index loader not configured")
)

// 캐시 키 종류
const (
	kindPreprocess = "preprocess"
	kindSearch     = "search"
)

// Analyzer 는 질의 문자열을 색인 용어로 바꾼다.
type Analyzer interface {
	ProcessQuery(text string) []string
}

// Loader 는 색인 원본 문서를 읽어 온다.
type Loader interface {
	LoadDocuments(ctx context.Context) ([]Document, error)
}

// CacheRecorder 는 캐시 적중 여부를 기록한다.
type CacheRecorder interface {
	RecordCacheLookup(kind string, hit bool)
}

// Result 는 /search 응답 본문이다.
type Result struct {
	Tokens    []string      `json:"tokens"`
	Documents []DocumentRef `json:"documents"`
}

// Stats: 현재 색인 상태입니다.
type Stats struct {
	Loaded     bool      `json:"loaded"`
	Documents  int       `json:"documents"`
	Terms      int       `json:"terms"`
	Tokens     int       `json:"tokens"`
	Generation uint64    `json:"generation"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// ServiceConfig 는 검색 서비스 설정이다.
type ServiceConfig struct {
	TopK        int
	TitleSuffix string
}

type loadedIndex struct {
	index      *Index
	generation uint64
	loadedAt   time.Time
}

// Service: 질의 전처리와 색인 검색을 담당합니다.
// 색인은 atomic 포인터로 교체되므로 재로드 중에도 검색이 멈추지 않습니다.
type Service struct {
	analyzer Analyzer
	loader   Loader
	cache    cache.ResultCache
	recorder CacheRecorder
	cfg      ServiceConfig
	logger   *slog.Logger

	current    atomic.Pointer[loadedIndex]
	generation atomic.Uint64
	reloadMu   sync.Mutex
}

// ServiceOption 은 Service 선택 설정이다.
type ServiceOption func(*Service)

// WithLoader 는 색인 저장소를 지정한다.
func WithLoader(loader Loader) ServiceOption {
	return func(s *Service) { s.loader = loader }
}

// WithResultCache 는 결과 캐시를 지정한다.
func WithResultCache(c cache.ResultCache) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithCacheRecorder 는 캐시 적중 기록기를 지정한다.
func WithCacheRecorder(r CacheRecorder) ServiceOption {
	return func(s *Service) { s.recorder = r }
}

// WithLogger 는 로거를 지정한다.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService 는 검색 서비스를 생성한다.
func NewService(analyzer Analyzer, cfg ServiceConfig, opts ...ServiceOption) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	s := &Service{
		analyzer: analyzer,
		cfg:      cfg,
		cache:    cache.Disabled(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preprocess: 질의를 색인 용어로 변환합니다. 빈 질의는 빈 목록입니다.
func (s *Service) Preprocess(ctx context.Context, query string) []string {
	if strings.TrimSpace(query) == "" {
		return []string{}
	}

	key := cache.Key(kindPreprocess, 0, query)
	var tokens []string
	if s.lookup(ctx, kindPreprocess, key, &tokens) {
		return tokens
	}

	tokens = s.analyzer.ProcessQuery(query)
	if tokens == nil {
		tokens = []string{}
	}
	s.store(ctx, key, tokens)
	return tokens
}

// Search: 질의를 전처리한 뒤 상위 문서를 찾습니다.
func (s *Service) Search(ctx context.Context, query string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, ErrEmptyQuery
	}
	current := s.current.Load()
	if current == nil {
		return Result{}, ErrIndexNotLoaded
	}

	ctx, span := tracer.Start(ctx, "search.Search")
	defer span.End()
	span.SetAttributes(attribute.Int64("search.generation", int64(current.generation)))

	key := cache.Key(kindSearch, current.generation, query)
	var result Result
	if s.lookup(ctx, kindSearch, key, &result) {
		span.SetAttributes(attribute.Bool("search.cache_hit", true))
		return result, nil
	}

	tokens := s.Preprocess(ctx, query)
	result = Result{
		Tokens:    tokens,
		Documents: current.index.Search(tokens, s.cfg.TopK, s.cfg.TitleSuffix),
	}
	span.SetAttributes(
		attribute.Int("search.tokens", len(tokens)),
		attribute.Int("search.documents", len(result.Documents)),
	)
	s.store(ctx, key, result)
	return result, nil
}

// SetIndex 는 색인을 교체하고 새 세대 번호를 부여한다.
func (s *Service) SetIndex(ix *Index) uint64 {
	gen := s.generation.Add(1)
	s.current.Store(&loadedIndex{index: ix, generation: gen, loadedAt: time.Now()})
	return gen
}

// Reload: 저장소에서 문서를 다시 읽어 색인을 교체합니다. 동시 호출은 직렬화됩니다.
func (s *Service) Reload(ctx context.Context) (Stats, error) {
	if s.loader == nil {
		return Stats{}, ErrNoLoader
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	ctx, span := tracer.Start(ctx, "search.Reload")
	defer span.End()

	started := time.Now()
	docs, err := s.loader.LoadDocuments(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load documents")
		return Stats{}, fmt.Errorf("reload index: %w", err)
	}
	gen := s.SetIndex(Build(docs))

	stats := s.Stats()
	span.SetAttributes(
		attribute.Int("search.documents", stats.Documents),
		attribute.Int64("search.generation", int64(gen)),
	)
	s.logger.Info("search_index_loaded",
		"documents", stats.Documents,
		"terms", stats.Terms,
		"generation", gen,
		"elapsed", time.Since(started),
	)
	return stats, nil
}

// Ready 는 색인이 로드되었는지 반환한다.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Stats 는 현재 색인 통계다.
func (s *Service) Stats() Stats {
	current := s.current.Load()
	if current == nil {
		return Stats{}
	}
	return Stats{
		Loaded:     true,
		Documents:  current.index.Len(),
		Terms:      len(current.index.df),
		Tokens:     current.index.TokenCount(),
		Generation: current.generation,
		LoadedAt:   current.loadedAt,
	}
}

// CacheBackend 는 사용 중인 결과 캐시 이름이다.
func (s *Service) CacheBackend() string {
	return s.cache.Backend()
}

func (s *Service) lookup(ctx context.Context, kind, key string, dst any) bool {
	if cache.IsDisabled(s.cache) {
		return false
	}
	hit, err := cache.GetJSON(ctx, s.cache, key, dst)
	if err != nil {
		s.logger.Warn("result_cache_get_failed", "kind", kind, "err", err)
		hit = false
	}
	if s.recorder != nil {
		s.recorder.RecordCacheLookup(kind, hit)
	}
	return hit
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if cache.IsDisabled(s.cache) {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, value); err != nil {
		s.logger.Warn("result_cache_set_failed", "err", err)
	}
}
