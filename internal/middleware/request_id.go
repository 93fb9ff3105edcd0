package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/park285/tig-search-go/internal/requestctx"
)

// RequestIDHeader 는 요청 ID 헤더 키다.
const RequestIDHeader = requestctx.Header

const (
	requestIDKey    = "request_id"
	maxRequestIDLen = 128
)

// RequestID: 요청 ID 를 정해 gin 컨텍스트, 요청 context, 응답 헤더에 싣습니다.
// 클라이언트 ID 가 비었거나 길거나 출력 불가 문자를 담으면 새로 만듭니다.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := acceptRequestID(c.GetHeader(RequestIDHeader))
		if !ok {
			id = newRequestID()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(requestctx.WithID(c.Request.Context(), id))
		c.Next()
	}
}

// GetRequestID: 컨텍스트의 요청 ID를 반환합니다.
func GetRequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(requestIDKey)
}

func acceptRequestID(raw string) (string, bool) {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxRequestIDLen {
		return "", false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return "", false
		}
	}
	return id, true
}

func newRequestID() string {
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
