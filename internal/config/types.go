package config

import (
	"strings"
	"time"
)

// ClientConfig: 전처리 서비스로 질의를 보내는 클라이언트 설정입니다.
type ClientConfig struct {
	Endpoint              string
	APIKey                string
	TimeoutSeconds        int
	ConnectTimeoutSeconds int
	HTTP2Enabled          bool
	// Tracing 은 OTEL_ENABLED 를 따른다.
	Tracing bool
}

// Timeout: 요청 전체 타임아웃입니다. 0이면 타임아웃을 두지 않습니다.
func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ConnectTimeout: TCP 연결 타임아웃입니다.
func (c ClientConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// HTTPConfig 는 HTTP 서버 설정이다.
type HTTPConfig struct {
	Host         string
	Port         int
	HTTP2Enabled bool
}

// HTTPAuthConfig 는 API 키 인증 설정이다.
type HTTPAuthConfig struct {
	APIKey        string
	MetricsAPIKey string
}

// HTTPRateLimitConfig 는 요청 제한 설정이다.
type HTTPRateLimitConfig struct {
	RequestsPerMinute int
	CacheSize         int
	CacheTTLSeconds   int
}

// CORSConfig: 브라우저 프런트엔드 교차 출처 호출 설정입니다.
type CORSConfig struct {
	AllowOrigins []string
	MaxAgeHours  int
}

// AllowAll: 모든 출처 허용 여부를 반환합니다.
func (c CORSConfig) AllowAll() bool {
	for _, origin := range c.AllowOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// LoggingConfig 는 로깅 설정이다.
type LoggingConfig struct {
	Level      string
	LogDir     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// TelemetryConfig: OpenTelemetry 설정입니다.
type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	OTLPInsecure   bool
	SampleRate     float64
}

// LexiconConfig: 형태소 전처리 사전(YAML) 위치입니다. 비어 있으면 내장 사전을 사용합니다.
type LexiconConfig struct {
	Path string
}

// IndexConfig: 검색 인덱스 저장소 설정입니다.
type IndexConfig struct {
	Driver     string
	DSN        string
	LoadOnBoot bool
	MaxPool    int
}

// ResultCacheConfig: 전처리/검색 결과 캐시 설정입니다.
type ResultCacheConfig struct {
	Enabled             bool
	URL                 string
	TTLSeconds          int
	MemorySize          int
	DisableClientCache  bool
	ConnectMaxAttempts  int
	ConnectRetrySeconds int
}

// TTL: 캐시 항목 만료 시간입니다.
func (r ResultCacheConfig) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

// UsesValkey: 외부 Valkey 저장소 사용 여부입니다.
func (r ResultCacheConfig) UsesValkey() bool {
	return r.Enabled && strings.TrimSpace(r.URL) != ""
}

// SearchConfig: 검색 결과 설정입니다.
type SearchConfig struct {
	TopK        int
	TitleSuffix string
}

// CorpusConfig: 말뭉치 수집/구축 도구 설정입니다.
type CorpusConfig struct {
	ListingBaseURL  string
	PDFBaseURL      string
	StartPage       int
	EndPage         int
	TargetYear      string
	PDFDir          string
	TextDir         string
	JSONDir         string
	UserAgent       string
	RequestsPerSec  float64
	MaxDownloads    int
	MaxBuildWorkers int
}

// Config 는 애플리케이션 전체 설정이다.
type Config struct {
	Client        ClientConfig
	HTTP          HTTPConfig
	HTTPAuth      HTTPAuthConfig
	HTTPRateLimit HTTPRateLimitConfig
	CORS          CORSConfig
	Logging       LoggingConfig
	Telemetry     TelemetryConfig
	Lexicon       LexiconConfig
	Index         IndexConfig
	ResultCache   ResultCacheConfig
	Search        SearchConfig
	Corpus        CorpusConfig
}
