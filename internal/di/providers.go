package di

import (
	"fmt"
	"log/slog"

	"github.com/park285/tig-search-go/internal/config"
	"github.com/park285/tig-search-go/internal/logging"
	"github.com/park285/tig-search-go/internal/tigmorph"
)

// ProvideLogger: 로거를 구성해 반환합니다.
// OTel이 활성화된 경우 로그에 trace_id/span_id가 자동으로 추가됩니다.
func ProvideLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewLoggerWithOTel(cfg.Logging, cfg.Telemetry.Enabled)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// ProvideLexicon: 설정된 경로의 사전을 읽고, 경로가 없으면 내장 사전을 씁니다.
func ProvideLexicon(cfg *config.Config) (*tigmorph.Lexicon, error) {
	lex, err := tigmorph.LoadLexicon(cfg.Lexicon.Path)
	if err != nil {
		return nil, fmt.Errorf("init lexicon: %w", err)
	}
	return lex, nil
}
