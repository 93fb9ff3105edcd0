package di

import (
	"context"
	"fmt"
	"time"

	"github.com/park285/tig-search-go/internal/cache"
	"github.com/park285/tig-search-go/internal/config"
	"github.com/park285/tig-search-go/internal/handler"
	"github.com/park285/tig-search-go/internal/health"
	"github.com/park285/tig-search-go/internal/metrics"
	"github.com/park285/tig-search-go/internal/search"
	"github.com/park285/tig-search-go/internal/server"
	"github.com/park285/tig-search-go/internal/store"
	"github.com/park285/tig-search-go/internal/telemetry"
	"github.com/park285/tig-search-go/internal/tigmorph"
)

const telemetryShutdownTimeout = 5 * time.Second

// InitializeApp 은 애플리케이션 의존성을 초기화하고 App 인스턴스를 반환한다.
func InitializeApp(ctx context.Context) (*App, error) {
	cfg, err := config.ProvideConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return NewApp(ctx, cfg)
}

// NewApp 은 주어진 설정으로 App 을 구성한다. 실패하면 이미 연 리소스를 정리한다.
func NewApp(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	app.Logger, err = ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logger := app.Logger

	app.Telemetry, err = telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	app.Metrics = metrics.New()

	lex, err := ProvideLexicon(cfg)
	if err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}
	preprocessor := tigmorph.NewPreprocessor(lex)

	app.ResultCache, err = cache.New(ctx, cfg.ResultCache, logger)
	if err != nil {
		// 결과 캐시는 선택 기능이므로 메모리 캐시로 계속 진행한다.
		logger.Warn("result_cache_fallback_memory", "err", err)
		app.ResultCache = cache.NewMemoryCache(cfg.ResultCache.MemorySize, cfg.ResultCache.TTL())
	}

	app.IndexStore, err = store.Open(ctx, cfg.Index, logger)
	if err != nil {
		return nil, fmt.Errorf("index store: %w", err)
	}

	app.Search = search.NewService(
		preprocessor,
		search.ServiceConfig{TopK: cfg.Search.TopK, TitleSuffix: cfg.Search.TitleSuffix},
		search.WithLoader(app.IndexStore),
		search.WithResultCache(app.ResultCache),
		search.WithCacheRecorder(app.Metrics),
		search.WithLogger(logger),
	)
	if cfg.Index.LoadOnBoot {
		loadIndexOnBoot(ctx, app)
	}

	checker := health.NewChecker(app.Search, app.ResultCache, app.IndexStore, app.Metrics)
	queryHandler := handler.NewQueryHandler(app.Search, app.Metrics, logger)
	indexHandler := handler.NewIndexHandler(app.Search, app.Metrics, logger)
	router := handler.NewRouter(cfg, logger, app.Metrics, checker, queryHandler, indexHandler)
	app.Server = server.NewHTTPServer(cfg, router)

	return app, nil
}

// 색인 로드 실패는 치명적이지 않다. /preprocess 는 계속 동작하고 /search 는 503 을 돌려준다.
func loadIndexOnBoot(ctx context.Context, app *App) {
	stats, err := app.Search.Reload(ctx)
	app.Metrics.RecordIndex(stats.Documents, stats.Terms, stats.Generation, err)
	if err != nil {
		app.Logger.Error("search_index_boot_load_failed", "err", err)
		return
	}
	if stats.Documents == 0 {
		app.Logger.Warn("search_index_empty", "driver", app.IndexStore.Driver())
	}
}
