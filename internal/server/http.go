package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/park285/tig-search-go/internal/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 120 * time.Second
	// ShutdownTimeout 는 종료 신호 후 진행 중 요청을 기다리는 최대 시간이다.
	ShutdownTimeout = 10 * time.Second
)

// NewHTTPServer 는 HTTP 서버를 생성한다. HTTP2Enabled 이면 평문 HTTP/2(h2c)도 받는다.
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	if cfg.HTTP.HTTP2Enabled {
		srv.Handler = h2c.NewHandler(handler, &http2.Server{IdleTimeout: idleTimeout})
	}
	return srv
}

// Run: ctx 가 끝날 때까지 서버를 실행하고, 끝나면 graceful shutdown 합니다.
// 정상 종료면 nil 을 반환합니다.
func Run(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	var err error
	select {
	case <-ctx.Done():
		logger.Info("http_server_shutdown_signal", "cause", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("http_server_shutdown_failed", "err", shutdownErr)
			_ = srv.Close()
		}
		err = <-serverErr
	case err = <-serverErr:
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
