package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/park285/tig-search-go/internal/health"
	"github.com/park285/tig-search-go/internal/metrics"
)

// RegisterHealthRoutes: 상태 확인 및 메트릭 라우트를 등록합니다.
func RegisterHealthRoutes(router gin.IRouter, checker *health.Checker, m *metrics.Metrics, metricsAPIKey string) {
	router.GET("/health", func(c *gin.Context) {
		// Liveness 는 외부 저장소 상태와 무관하게 200 이다.
		c.JSON(http.StatusOK, checker.Collect(c.Request.Context(), false))
	})

	router.GET("/health/ready", func(c *gin.Context) {
		payload := checker.Collect(c.Request.Context(), true)
		status := http.StatusOK
		if payload.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, payload)
	})

	if m != nil {
		router.GET("/metrics", metrics.APIKeyAuth(metricsAPIKey), gin.WrapH(m.Handler()))
	}
}
