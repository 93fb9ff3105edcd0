package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/park285/tig-search-go/internal/cache"
	"github.com/park285/tig-search-go/internal/config"
	"github.com/park285/tig-search-go/internal/httperror"
	"github.com/park285/tig-search-go/internal/metrics"
)

// 질의 경로. /api/ 아래는 접두사로 따로 본다.
var limitedQueryPaths = map[string]struct{}{
	"/preprocess": {},
	"/search":     {},
}

// callerLimiter 는 호출자별 토큰 버킷을 TTL LRU 에 보관한다.
type callerLimiter struct {
	perMinute int
	every     rate.Limit
	buckets   *cache.TTLCache[string, *rate.Limiter]
}

// RateLimit: 호출자별 토큰 버킷 요청 제한 미들웨어입니다.
// 분당 한도만큼 버스트를 허용하고, 거절 시 Retry-After 를 초 단위로 알려 줍니다.
func RateLimit(cfg *config.Config) gin.HandlerFunc {
	if cfg == nil || cfg.HTTPRateLimit.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	rl := cfg.HTTPRateLimit
	limiter := &callerLimiter{
		perMinute: rl.RequestsPerMinute,
		every:     rate.Every(time.Minute / time.Duration(rl.RequestsPerMinute)),
		buckets:   cache.NewTTLCache[string, *rate.Limiter](rl.CacheSize, time.Duration(rl.CacheTTLSeconds)*time.Second),
	}
	return limiter.handle
}

func (l *callerLimiter) handle(c *gin.Context) {
	path := c.Request.URL.Path
	if c.Request.Method == http.MethodOptions || !isLimitedPath(path) {
		c.Next()
		return
	}

	identity := callerIdentity(c)
	bucket := l.buckets.GetOrSet(identity, func() *rate.Limiter {
		return rate.NewLimiter(l.every, l.perMinute)
	})

	reservation := bucket.Reserve()
	if wait := reservation.Delay(); wait > 0 {
		reservation.Cancel()
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		status, body := httperror.Response(httperror.NewRateLimitExceeded(map[string]any{
			"path":             path,
			"identity":         identity,
			"limit_per_minute": l.perMinute,
		}), GetRequestID(c))
		c.AbortWithStatusJSON(status, body)
		return
	}
	c.Next()
}

func isLimitedPath(path string) bool {
	if strings.HasPrefix(path, adminPathPrefix) {
		return true
	}
	_, ok := limitedQueryPaths[path]
	return ok
}

// callerIdentity 는 API 키 해시, X-Forwarded-For 첫 주소, 접속 IP 순으로 호출자를 구분한다.
func callerIdentity(c *gin.Context) string {
	if key := metrics.ExtractAPIKey(c.Request); key != "" {
		sum := sha256.Sum256([]byte(key))
		return "key:" + hex.EncodeToString(sum[:8])
	}

	forwarded, _, _ := strings.Cut(c.GetHeader("X-Forwarded-For"), ",")
	if ip := strings.TrimSpace(forwarded); ip != "" {
		return "ip:" + ip
	}
	if ip := c.ClientIP(); ip != "" {
		return "ip:" + ip
	}
	return "ip:unknown"
}
