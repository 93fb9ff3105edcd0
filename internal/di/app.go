package di

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/park285/tig-search-go/internal/cache"
	"github.com/park285/tig-search-go/internal/config"
	"github.com/park285/tig-search-go/internal/metrics"
	"github.com/park285/tig-search-go/internal/search"
	"github.com/park285/tig-search-go/internal/store"
	"github.com/park285/tig-search-go/internal/telemetry"
)

// App: 애플리케이션 구성 요소를 묶는다.
type App struct {
	Server      *http.Server
	Logger      *slog.Logger
	Config      *config.Config
	Metrics     *metrics.Metrics
	Search      *search.Service
	IndexStore  *store.Store
	ResultCache cache.ResultCache
	Telemetry   *telemetry.Provider
}

// Close: 앱 리소스를 정리합니다. 일부만 초기화된 App 에도 안전합니다.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.ResultCache != nil {
		a.ResultCache.Close()
	}
	if a.IndexStore != nil {
		if err := a.IndexStore.Close(); err != nil && a.Logger != nil {
			a.Logger.Warn("index_store_close_failed", "err", err)
		}
	}
	if a.Telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := a.Telemetry.Shutdown(ctx); err != nil && a.Logger != nil {
			a.Logger.Warn("telemetry_shutdown_failed", "err", err)
		}
	}
}
