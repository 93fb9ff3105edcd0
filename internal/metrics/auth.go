package metrics

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "bearer "

// APIKeyAuth: /metrics 보호용 미들웨어입니다. expected 가 비어 있으면 보호하지 않습니다.
func APIKeyAuth(expected string) gin.HandlerFunc {
	expected = strings.TrimSpace(expected)

	return func(c *gin.Context) {
		if expected != "" && !KeyMatches(c.Request, expected) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// KeyMatches 는 요청의 API 키가 expected 와 같은지 상수 시간으로 비교한다.
func KeyMatches(r *http.Request, expected string) bool {
	provided := ExtractAPIKey(r)
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

// ExtractAPIKey 는 X-API-Key 를 먼저 보고, 없으면 Authorization: Bearer 값을 쓴다.
func ExtractAPIKey(r *http.Request) string {
	if r == nil {
		return ""
	}
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}

	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) <= len(bearerPrefix) || !strings.EqualFold(auth[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(bearerPrefix):])
}
