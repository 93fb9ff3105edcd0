package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/park285/tig-search-go/internal/config"
	"github.com/park285/tig-search-go/internal/httperror"
	"github.com/park285/tig-search-go/internal/metrics"
)

const adminPathPrefix = "/api/"

// APIKeyAuth 는 /api/ 아래 색인 관리 경로에 HTTP_API_KEY 를 요구한다.
// 키가 비어 있으면 검사하지 않는다.
func APIKeyAuth(cfg *config.Config) gin.HandlerFunc {
	var expected string
	if cfg != nil {
		expected = strings.TrimSpace(cfg.HTTPAuth.APIKey)
	}
	if expected == "" {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, adminPathPrefix) && !metrics.KeyMatches(c.Request, expected) {
			status, body := httperror.Response(
				httperror.NewUnauthorized(map[string]any{"path": path}),
				GetRequestID(c),
			)
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Next()
	}
}
