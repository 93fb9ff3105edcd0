package health

import (
	"context"
	"time"

	"github.com/park285/tig-search-go/internal/cache"
	"github.com/park285/tig-search-go/internal/search"
)

var startTime = time.Now()

const deepCheckTimeout = 2 * time.Second

// Component 는 상태 구성 요소다.
type Component struct {
	Status string         `json:"status"`
	Detail map[string]any `json:"detail"`
}

// Response 는 상태 응답 본문이다.
type Response struct {
	Status     string               `json:"status"`
	Components map[string]Component `json:"components"`
}

// IndexReporter 는 색인 통계를 제공한다.
type IndexReporter interface {
	Stats() search.Stats
}

// Pinger 는 외부 저장소 연결을 확인한다.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Snapshotter 는 누적 통계를 제공한다.
type Snapshotter interface {
	Snapshot() map[string]float64
}

// Checker: 서비스 구성 요소 상태를 수집합니다.
type Checker struct {
	index   IndexReporter
	cache   cache.ResultCache
	store   Pinger
	metrics Snapshotter
}

// NewChecker 는 Checker 를 생성한다. store 와 metrics 는 nil 이어도 된다.
func NewChecker(index IndexReporter, resultCache cache.ResultCache, store Pinger, metrics Snapshotter) *Checker {
	if resultCache == nil {
		resultCache = cache.Disabled()
	}
	return &Checker{index: index, cache: resultCache, store: store, metrics: metrics}
}

// Collect: 상태를 수집합니다. deep 이면 외부 저장소에 PING 을 보냅니다.
func (h *Checker) Collect(ctx context.Context, deep bool) Response {
	if ctx == nil {
		ctx = context.Background()
	}
	components := map[string]Component{
		"app":          h.appStatus(),
		"index":        h.indexStatus(),
		"result_cache": h.cacheStatus(ctx, deep),
	}
	if h.store != nil {
		components["index_store"] = h.storeStatus(ctx, deep)
	}

	overall := "ok"
	for _, component := range components {
		if component.Status != "ok" {
			overall = "degraded"
			break
		}
	}
	return Response{Status: overall, Components: components}
}

func (h *Checker) appStatus() Component {
	detail := map[string]any{
		"uptime_seconds": int(time.Since(startTime).Seconds()),
	}
	if h.metrics != nil {
		for k, v := range h.metrics.Snapshot() {
			detail[k] = v
		}
	}
	return Component{Status: "ok", Detail: detail}
}

func (h *Checker) indexStatus() Component {
	stats := search.Stats{}
	if h.index != nil {
		stats = h.index.Stats()
	}
	status := "ok"
	if !stats.Loaded {
		status = "degraded"
	}
	detail := map[string]any{
		"loaded":     stats.Loaded,
		"documents":  stats.Documents,
		"terms":      stats.Terms,
		"generation": stats.Generation,
	}
	if stats.Loaded {
		detail["loaded_at"] = stats.LoadedAt.Format(time.RFC3339)
	}
	return Component{Status: status, Detail: detail}
}

func (h *Checker) cacheStatus(ctx context.Context, deep bool) Component {
	detail := map[string]any{
		"backend":      h.cache.Backend(),
		"deep_checked": deep,
	}
	status := "ok"
	if deep {
		if err := ping(ctx, h.cache); err != nil {
			status = "degraded"
			detail["error"] = err.Error()
		}
	}
	return Component{Status: status, Detail: detail}
}

func (h *Checker) storeStatus(ctx context.Context, deep bool) Component {
	detail := map[string]any{"deep_checked": deep}
	status := "ok"
	if deep {
		if err := ping(ctx, h.store); err != nil {
			status = "degraded"
			detail["error"] = err.Error()
		}
	}
	return Component{Status: status, Detail: detail}
}

func ping(ctx context.Context, p Pinger) error {
	checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deepCheckTimeout)
	defer cancel()
	return p.Ping(checkCtx)
}
