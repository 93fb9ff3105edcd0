package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/park285/tig-search-go/internal/config"
	"github.com/park285/tig-search-go/internal/health"
	"github.com/park285/tig-search-go/internal/metrics"
	"github.com/park285/tig-search-go/internal/middleware"
)

// NewRouter 는 HTTP 라우터를 구성한다.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	m *metrics.Metrics,
	checker *health.Checker,
	queryHandler *QueryHandler,
	indexHandler *IndexHandler,
) *gin.Engine {
	setGinMode(cfg.Logging.Level)

	router := gin.New()
	if cfg.Telemetry.Enabled {
		// 추적 미들웨어는 가장 앞에 둔다.
		router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	var recorder middleware.RequestRecorder
	if m != nil {
		recorder = m
	}
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		gin.Recovery(),
		middleware.Metrics(recorder),
		cors.New(newCORSConfig(cfg.CORS)),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
		middleware.APIKeyAuth(cfg),
		middleware.RateLimit(cfg),
	)

	RegisterHealthRoutes(router, checker, m, cfg.HTTPAuth.MetricsAPIKey)
	queryHandler.RegisterRoutes(router)
	indexHandler.RegisterRoutes(router)

	return router
}

func newCORSConfig(cfg config.CORSConfig) cors.Config {
	corsConfig := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        time.Duration(cfg.MaxAgeHours) * time.Hour,
	}
	if cfg.AllowAll() || len(cfg.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	}
	return corsConfig
}

func setGinMode(level string) {
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}
