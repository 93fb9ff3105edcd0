package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// DefaultPreprocessURL 는 전처리 서비스 기본 주소다.
const DefaultPreprocessURL = "http://127.0.0.1:5000/preprocess"

var (
	configOnce  sync.Once
	configValue *Config
)

// Load 는 환경 변수 기반 설정을 로드한다.
func Load() *Config {
	configOnce.Do(func() {
		_ = godotenv.Load()
		configValue = buildConfig()
	})
	return configValue
}

// ProvideConfig 는 설정을 로드하고 검증한다.
func ProvideConfig() (*Config, error) {
	cfg := Load()
	if cfg == nil {
		return nil, errors.New("config not initialized")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 는 설정 유효성을 검사한다.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := validateEndpoint(c.Client.Endpoint); err != nil {
		return err
	}
	if c.Client.TimeoutSeconds < 0 {
		return fmt.Errorf("client timeout must be >= 0: %d", c.Client.TimeoutSeconds)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.HTTP.Port)
	}
	switch strings.ToLower(c.Index.Driver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported index driver: %s", c.Index.Driver)
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("search top-k must be > 0: %d", c.Search.TopK)
	}
	if c.Corpus.StartPage > c.Corpus.EndPage {
		return fmt.Errorf("corpus page range inverted: %d > %d", c.Corpus.StartPage, c.Corpus.EndPage)
	}
	return nil
}

func validateEndpoint(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid preprocess url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("preprocess url must be http(s): %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("preprocess url missing host: %s", raw)
	}
	return nil
}

// LogEnvStatus 는 환경 설정 상태를 로그로 남긴다.
func LogEnvStatus(cfg *Config, logger *slog.Logger) {
	if logger == nil || cfg == nil {
		return
	}

	logger.Debug(
		"env_status",
		"env_file", fileExists(".env"),
		"preprocess_url", cfg.Client.Endpoint,
		"client_timeout", cfg.Client.TimeoutSeconds,
		"http_addr", fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		"api_key", maskSecret(cfg.HTTPAuth.APIKey),
		"metrics_api_key", maskSecret(cfg.HTTPAuth.MetricsAPIKey),
		"lexicon_path", cfg.Lexicon.Path,
		"index_driver", cfg.Index.Driver,
		"result_cache", cfg.ResultCache.Enabled,
		"result_cache_url", cfg.ResultCache.URL,
		"top_k", cfg.Search.TopK,
	)

	if cfg.Lexicon.Path != "" && !fileExists(cfg.Lexicon.Path) {
		logger.Warn("env_lexicon_missing", "path", cfg.Lexicon.Path)
	}
}

func buildConfig() *Config {
	cfg := &Config{
		Client: ClientConfig{
			Endpoint:              getEnvString("PREPROCESS_URL", DefaultPreprocessURL),
			APIKey:                getEnvString("PREPROCESS_API_KEY", ""),
			TimeoutSeconds:        getEnvNonNegativeInt("PREPROCESS_TIMEOUT", 30),
			ConnectTimeoutSeconds: max(1, getEnvNonNegativeInt("PREPROCESS_CONNECT_TIMEOUT", 5)),
			HTTP2Enabled:          getEnvBool("PREPROCESS_HTTP2_ENABLED", false),
		},
		HTTP: HTTPConfig{
			Host:         getEnvString("HTTP_HOST", "127.0.0.1"),
			Port:         getEnvInt("HTTP_PORT", 5000),
			HTTP2Enabled: getEnvBool("HTTP2_ENABLED", true),
		},
		HTTPAuth: HTTPAuthConfig{
			APIKey:        getEnvString("HTTP_API_KEY", ""),
			MetricsAPIKey: getEnvString("METRICS_API_KEY", ""),
		},
		HTTPRateLimit: HTTPRateLimitConfig{
			RequestsPerMinute: getEnvNonNegativeInt("HTTP_RATE_LIMIT_RPM", 0),
			CacheSize:         max(1, getEnvNonNegativeInt("HTTP_RATE_LIMIT_CACHE_SIZE", 10000)),
			CacheTTLSeconds:   max(1, getEnvNonNegativeInt("HTTP_RATE_LIMIT_CACHE_TTL_SECONDS", 120)),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvList("CORS_ALLOW_ORIGINS", []string{"*"}),
			MaxAgeHours:  getEnvNonNegativeInt("CORS_MAX_AGE_HOURS", 12),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			LogDir:     getEnvString("LOG_DIR", ""),
			MaxSizeMB:  getEnvInt("LOG_FILE_MAX_SIZE_MB", 1),
			MaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 30),
			MaxAgeDays: getEnvInt("LOG_FILE_MAX_AGE_DAYS", 7),
			Compress:   getEnvBool("LOG_FILE_COMPRESS", true),
		},
		Telemetry: readTelemetryConfig("tig-preprocess"),
		Lexicon: LexiconConfig{
			Path: getEnvString("LEXICON_PATH", ""),
		},
		Index: IndexConfig{
			Driver:     strings.ToLower(getEnvString("INDEX_DB_DRIVER", "sqlite")),
			DSN:        getEnvString("INDEX_DB_DSN", "data/index.db"),
			LoadOnBoot: getEnvBool("INDEX_LOAD_ON_BOOT", true),
			MaxPool:    max(1, getEnvNonNegativeInt("INDEX_DB_MAX_POOL", 5)),
		},
		ResultCache: ResultCacheConfig{
			Enabled:             getEnvBool("RESULT_CACHE_ENABLED", true),
			URL:                 getEnvString("RESULT_CACHE_URL", ""),
			TTLSeconds:          max(1, getEnvNonNegativeInt("RESULT_CACHE_TTL_SECONDS", 600)),
			MemorySize:          max(1, getEnvNonNegativeInt("RESULT_CACHE_MEMORY_SIZE", 1024)),
			DisableClientCache:  getEnvBool("RESULT_CACHE_DISABLE_CLIENT_CACHE", false),
			ConnectMaxAttempts:  max(1, getEnvNonNegativeInt("RESULT_CACHE_CONNECT_MAX_ATTEMPTS", 6)),
			ConnectRetrySeconds: getEnvNonNegativeInt("RESULT_CACHE_CONNECT_RETRY_SECONDS", 5),
		},
		Search: SearchConfig{
			TopK:        getEnvInt("SEARCH_TOP_K", 10),
			TitleSuffix: getEnvString("SEARCH_TITLE_SUFFIX", "Haddas Eritrea"),
		},
		Corpus: CorpusConfig{
			ListingBaseURL:  getEnvString("CORPUS_LISTING_URL", "https://shabait.com/category/newspapers/haddas-ertra-news"),
			PDFBaseURL:      getEnvString("CORPUS_PDF_URL", "http://50.7.16.234/hadas-eritrea"),
			StartPage:       getEnvInt("CORPUS_START_PAGE", 15),
			EndPage:         getEnvInt("CORPUS_END_PAGE", 41),
			TargetYear:      getEnvString("CORPUS_YEAR", "2023"),
			PDFDir:          getEnvString("CORPUS_PDF_DIR", "tig_corpus (pdf)"),
			TextDir:         getEnvString("CORPUS_TEXT_DIR", "tig_corpus (txt)"),
			JSONDir:         getEnvString("CORPUS_JSON_DIR", "tig_corpus (json)"),
			UserAgent:       getEnvString("CORPUS_USER_AGENT", "tig-search-go/1.0"),
			RequestsPerSec:  getEnvFloat("CORPUS_REQUESTS_PER_SEC", 2),
			MaxDownloads:    max(1, getEnvNonNegativeInt("CORPUS_MAX_DOWNLOADS", 4)),
			MaxBuildWorkers: max(1, getEnvNonNegativeInt("CORPUS_MAX_BUILD_WORKERS", 8)),
		},
	}
	cfg.Client.Tracing = cfg.Telemetry.Enabled
	return cfg
}
