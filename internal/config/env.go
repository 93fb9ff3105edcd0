package config

import (
	"os"
	"strconv"
	"strings"
	"unicode"
)

// lookupEnv 는 공백을 제거한 환경 변수 값을 parse 로 해석한다. 비었거나 해석에 실패하면 def 다.
func lookupEnv[T any](key string, def T, parse func(string) (T, error)) T {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := parse(value)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvString(key string, def string) string {
	return lookupEnv(key, def, func(v string) (string, error) { return v, nil })
}

func getEnvInt(key string, def int) int {
	return lookupEnv(key, def, strconv.Atoi)
}

// getEnvNonNegativeInt 는 음수를 0 으로 올린다.
func getEnvNonNegativeInt(key string, def int) int {
	return max(0, getEnvInt(key, def))
}

func getEnvFloat(key string, def float64) float64 {
	return lookupEnv(key, def, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}

func getEnvBool(key string, def bool) bool {
	return lookupEnv(key, def, func(v string) (bool, error) {
		switch strings.ToLower(v) {
		case "true", "1", "yes", "y", "on":
			return true, nil
		default:
			return false, nil
		}
	})
}

func getEnvList(key string, def []string) []string {
	return lookupEnv(key, def, func(v string) ([]string, error) { return splitList(v), nil })
}

// splitList 는 쉼표나 공백으로 구분된 목록을 나눈다.
func splitList(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// maskSecret 는 로그용으로 비밀값의 앞뒤 두 글자만 남긴다.
func maskSecret(value string) string {
	switch {
	case value == "":
		return "<missing>"
	case len(value) <= 4:
		return strings.Repeat("*", len(value))
	default:
		return value[:2] + "***" + value[len(value)-2:]
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readTelemetryConfig: OpenTelemetry 설정을 환경 변수에서 읽습니다.
func readTelemetryConfig(defaultService string) TelemetryConfig {
	return TelemetryConfig{
		Enabled:        getEnvBool("OTEL_ENABLED", false),
		ServiceName:    getEnvString("OTEL_SERVICE_NAME", defaultService),
		ServiceVersion: getEnvString("OTEL_SERVICE_VERSION", "1.0.0"),
		Environment:    getEnvString("OTEL_ENVIRONMENT", "production"),
		OTLPEndpoint:   getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "jaeger:4317"),
		OTLPInsecure:   getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		SampleRate:     getEnvFloat("OTEL_SAMPLE_RATE", 1.0),
	}
}
