package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/park285/tig-search-go/internal/search"
)

// QueryRequest 는 /preprocess, /search 요청 본문이다.
type QueryRequest struct {
	Query string `json:"query" binding:"max=4096"`
}

// PreprocessResponse 는 /preprocess 응답 본문이다.
type PreprocessResponse struct {
	Tokens []string `json:"tokens"`
}

// QueryRecorder 는 질의 통계를 기록한다.
type QueryRecorder interface {
	RecordQuery(tokens int)
}

// QueryHandler: 질의 전처리/검색 핸들러입니다.
type QueryHandler struct {
	service  *search.Service
	recorder QueryRecorder
	logger   *slog.Logger
}

// NewQueryHandler 는 QueryHandler 를 생성한다.
func NewQueryHandler(service *search.Service, recorder QueryRecorder, logger *slog.Logger) *QueryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryHandler{service: service, recorder: recorder, logger: logger}
}

// RegisterRoutes 는 질의 라우트를 등록한다.
func (h *QueryHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/preprocess", h.handlePreprocess)
	router.POST("/search", h.handleSearch)
}

func (h *QueryHandler) handlePreprocess(c *gin.Context) {
	var req QueryRequest
	if !bindJSONAllowEmpty(c, &req) {
		return
	}

	tokens := h.service.Preprocess(c.Request.Context(), req.Query)
	h.record(len(tokens))
	c.JSON(http.StatusOK, PreprocessResponse{Tokens: tokens})
}

func (h *QueryHandler) handleSearch(c *gin.Context) {
	var req QueryRequest
	if !bindJSONAllowEmpty(c, &req) {
		return
	}

	result, err := h.service.Search(c.Request.Context(), req.Query)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "search_failed", "err", err)
		writeError(c, err)
		return
	}
	h.record(len(result.Tokens))
	c.JSON(http.StatusOK, result)
}

func (h *QueryHandler) record(tokens int) {
	if h.recorder != nil {
		h.recorder.RecordQuery(tokens)
	}
}
