package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/park285/tig-search-go/internal/cache"
)

type fieldsAnalyzer struct {
	mu    sync.Mutex
	calls int
}

func (a *fieldsAnalyzer) ProcessQuery(text string) []string {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	return strings.Fields(text)
}

type staticLoader struct {
	docs []Document
	err  error
}

func (l *staticLoader) LoadDocuments(context.Context) ([]Document, error) {
	return l.docs, l.err
}

type countingRecorder struct {
	mu   sync.Mutex
	hits map[string]int
	miss map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{hits: map[string]int{}, miss: map[string]int{}}
}

func (r *countingRecorder) RecordCacheLookup(kind string, hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hits[kind]++
	} else {
		r.miss[kind]++
	}
}

func TestServiceSearchBeforeLoad(t *testing.T) {
	svc := NewService(&fieldsAnalyzer{}, ServiceConfig{})

	_, err := svc.Search(context.Background(), "ሰላም")
	require.ErrorIs(t, err, ErrIndexNotLoaded)
	require.False(t, svc.Ready())
	require.Equal(t, Stats{}, svc.Stats())

	_, err = svc.Reload(context.Background())
	require.ErrorIs(t, err, ErrNoLoader)
}

func TestServiceEmptyQuery(t *testing.T) {
	svc := NewService(&fieldsAnalyzer{}, ServiceConfig{})
	svc.SetIndex(Build(sampleDocs()))

	_, err := svc.Search(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyQuery)
	require.Equal(t, []string{}, svc.Preprocess(context.Background(), ""))
}

func TestServiceReloadAndSearch(t *testing.T) {
	loader := &staticLoader{docs: sampleDocs()}
	svc := NewService(&fieldsAnalyzer{}, ServiceConfig{TopK: 5, TitleSuffix: DefaultTitleSuffix}, WithLoader(loader))

	stats, err := svc.Reload(context.Background())
	require.NoError(t, err)
	require.True(t, stats.Loaded)
	require.Equal(t, 3, stats.Documents)
	require.Equal(t, 4, stats.Terms)
	require.Equal(t, uint64(1), stats.Generation)
	require.True(t, svc.Ready())

	result, err := svc.Search(context.Background(), "ሰላም")
	require.NoError(t, err)
	require.Equal(t, []string{"ሰላም"}, result.Tokens)
	require.Len(t, result.Documents, 1)
	require.Equal(t, "May 01, 2023 - Haddas Eritrea", result.Documents[0].Title)
}

func TestServiceReloadFailureKeepsIndex(t *testing.T) {
	loader := &staticLoader{docs: sampleDocs()}
	svc := NewService(&fieldsAnalyzer{}, ServiceConfig{}, WithLoader(loader))
	_, err := svc.Reload(context.Background())
	require.NoError(t, err)

	loader.err = errors.New("db down")
	_, err = svc.Reload(context.Background())
	require.Error(t, err)
	require.Equal(t, uint64(1), svc.Stats().Generation)
	require.True(t, svc.Ready())
}

func TestServiceResultCache(t *testing.T) {
	analyzer := &fieldsAnalyzer{}
	recorder := newCountingRecorder()
	loader := &staticLoader{docs: sampleDocs()}
	svc := NewService(analyzer, ServiceConfig{},
		WithLoader(loader),
		WithResultCache(cache.NewMemoryCache(16, time.Minute)),
		WithCacheRecorder(recorder),
	)
	require.Equal(t, cache.BackendMemory, svc.CacheBackend())
	_, err := svc.Reload(context.Background())
	require.NoError(t, err)

	first, err := svc.Search(context.Background(), "ሰላም")
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), "ሰላም")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, recorder.hits[kindSearch])
	require.Equal(t, 1, analyzer.calls)

	// 재로드하면 세대가 바뀌어 검색 결과 캐시는 miss 가 된다.
	_, err = svc.Reload(context.Background())
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "ሰላም")
	require.NoError(t, err)
	require.Equal(t, 1, recorder.hits[kindSearch])
	require.Equal(t, 2, recorder.miss[kindSearch])
	require.Equal(t, 1, recorder.hits[kindPreprocess])
	require.Equal(t, 1, analyzer.calls)
}

func TestServiceConcurrentSearchDuringReload(t *testing.T) {
	svc := NewService(&fieldsAnalyzer{}, ServiceConfig{}, WithLoader(&staticLoader{docs: sampleDocs()}))
	_, err := svc.Reload(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Reload(context.Background())
		}()
		go func() {
			defer wg.Done()
			result, err := svc.Search(context.Background(), "ሰላም")
			if err == nil && len(result.Documents) != 1 {
				t.Errorf("unexpected documents: %+v", result.Documents)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(9), svc.Stats().Generation)
}

func TestServiceRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	svc := NewService(&fieldsAnalyzer{}, ServiceConfig{}, WithLoader(&staticLoader{docs: sampleDocs()}))
	_, err := svc.Reload(context.Background())
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "ሰላም")
	require.NoError(t, err)

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	require.Contains(t, names, "search.Reload")
	require.Contains(t, names, "search.Search")
}
