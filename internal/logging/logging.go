// Package logging 은 tint 콘솔 출력과 lumberjack 파일 로테이션을 묶은 slog 로거를 만든다.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/park285/tig-search-go/internal/config"
)

// 로그 파일 이름
const (
	ServerLogFile = "server.log"
	CLILogFile    = "cli.log"
)

type sink struct {
	console  io.Writer
	fileName string
	tracing  bool
}

// NewLogger: 서버용 로거를 생성합니다. 전역 기본 로거로도 등록됩니다.
func NewLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	return NewLoggerWithOTel(cfg, false)
}

// NewLoggerWithOTel: otelEnabled이면 trace_id/span_id 상관관계를 추가합니다.
func NewLoggerWithOTel(cfg config.LoggingConfig, otelEnabled bool) (*slog.Logger, error) {
	return build(cfg, sink{console: os.Stdout, fileName: ServerLogFile, tracing: otelEnabled})
}

// NewCLILogger: CLI 용 로거입니다. 결과 출력(stdout)과 섞이지 않도록 stderr 에 씁니다.
func NewCLILogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	return build(cfg, sink{console: os.Stderr, fileName: CLILogFile})
}

func build(cfg config.LoggingConfig, s sink) (*slog.Logger, error) {
	level := parseLevel(cfg.Level)
	logDir := strings.TrimSpace(cfg.LogDir)

	writer := s.console
	var rotating *lumberjack.Logger
	if logDir != "" {
		var err error
		if rotating, err = openRotatingFile(cfg, logDir, s.fileName); err != nil {
			return nil, err
		}
		writer = io.MultiWriter(s.console, rotating)
	}

	handler := tint.NewHandler(writer, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		AddSource:  true,
		// 파일에는 ANSI 색 코드를 남기지 않는다.
		NoColor: rotating != nil,
	})
	logger := slog.New(NewContextHandler(handler, s.tracing))
	slog.SetDefault(logger)

	if rotating != nil {
		logger.Info("file_logging_enabled", "path", rotating.Filename)
	}
	return logger, nil
}

func openRotatingFile(cfg config.LoggingConfig, dir, name string) (*lumberjack.Logger, error) {
	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
		return nil, fmt.Errorf("invalid log rotation: size=%dMB backups=%d age=%dd",
			cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, name),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
