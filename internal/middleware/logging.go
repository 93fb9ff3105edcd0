package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// 정상 응답이면 기록하지 않는 경로
var quietPaths = map[string]struct{}{
	"/health":       {},
	"/health/ready": {},
	"/metrics":      {},
}

// RequestLogger: 요청마다 http_request 이벤트를 남깁니다.
// 상태 코드에 따라 5xx 는 Error, 4xx 는 Warn, 나머지는 Debug 입니다.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return func(c *gin.Context) {
		startedAt := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		failed := status >= http.StatusBadRequest || len(c.Errors) > 0
		if _, quiet := quietPaths[path]; quiet && !failed {
			return
		}

		attrs := []slog.Attr{
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(startedAt)),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		logAtStatus(c.Request.Context(), logger, status, attrs)
	}
}

func logAtStatus(ctx context.Context, logger *slog.Logger, status int, attrs []slog.Attr) {
	level := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}
	logger.LogAttrs(ctx, level, "http_request", attrs...)
}
