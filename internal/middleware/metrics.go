package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestRecorder 는 HTTP 요청 통계를 기록한다.
type RequestRecorder interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics 는 라우트 템플릿 단위로 요청 수와 지연을 기록한다.
func Metrics(recorder RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if recorder == nil {
			c.Next()
			return
		}
		startedAt := time.Now()
		c.Next()
		recorder.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(startedAt))
	}
}
