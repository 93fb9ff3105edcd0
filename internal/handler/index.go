package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/park285/tig-search-go/internal/search"
)

// IndexRecorder 는 색인 재로드 결과를 기록한다.
type IndexRecorder interface {
	RecordIndex(documents, terms int, generation uint64, err error)
}

// IndexHandler: 색인 관리 핸들러입니다. /api/ 아래에 있어 API 키로 보호됩니다.
type IndexHandler struct {
	service  *search.Service
	recorder IndexRecorder
	logger   *slog.Logger
}

// NewIndexHandler 는 IndexHandler 를 생성한다.
func NewIndexHandler(service *search.Service, recorder IndexRecorder, logger *slog.Logger) *IndexHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexHandler{service: service, recorder: recorder, logger: logger}
}

// RegisterRoutes 는 색인 라우트를 등록한다.
func (h *IndexHandler) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/api/index")
	group.POST("/reload", h.handleReload)
	group.GET("/stats", h.handleStats)
}

func (h *IndexHandler) handleReload(c *gin.Context) {
	stats, err := h.service.Reload(c.Request.Context())
	if h.recorder != nil {
		h.recorder.RecordIndex(stats.Documents, stats.Terms, stats.Generation, err)
	}
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "index_reload_failed", "err", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *IndexHandler) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Stats())
}
