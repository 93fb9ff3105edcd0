// tigquery 는 질의를 전처리 서비스로 보내고 돌려받은 토큰을 한 줄씩 출력한다.
//
//	tigquery -q "ሰላም ኣብ ዓዲ"
//	cat queries.txt | tigquery -endpoint http://127.0.0.1:5000/preprocess
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/tig-search-go/internal/config"
	"github.com/park285/tig-search-go/internal/logging"
	"github.com/park285/tig-search-go/internal/querysubmit"
	"github.com/park285/tig-search-go/internal/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

func main() {
	os.Exit(start())
}

func start() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger, err := logging.NewCLILogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}

	telemetryCfg := cfg.Telemetry
	telemetryCfg.ServiceName = "tigquery"
	provider, err := telemetry.NewProvider(ctx, telemetryCfg)
	if err != nil {
		logger.Warn("telemetry_init_failed", "err", err)
		provider = nil
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry_shutdown_failed", "err", err)
		}
	}()

	clientCfg := cfg.Client
	clientCfg.Tracing = provider.IsEnabled()
	return run(ctx, os.Args[1:], clientCfg, os.Stdin, os.Stdout, logger)
}

// run 은 종료 코드를 반환한다. 요청 실패는 로그로만 남기고 종료 코드에 반영하지 않는다.
func run(ctx context.Context, args []string, clientCfg config.ClientConfig, stdin io.Reader, stdout io.Writer, logger *slog.Logger) int {
	fs := flag.NewFlagSet("tigquery", flag.ContinueOnError)
	query := fs.String("q", "", "query to submit once (otherwise read one query per stdin line)")
	endpoint := fs.String("endpoint", clientCfg.Endpoint, "preprocess endpoint URL")
	timeout := fs.Duration("timeout", clientCfg.Timeout(), "request timeout (0 disables)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	submitter, err := querysubmit.New(querysubmit.Config{
		Endpoint:       *endpoint,
		APIKey:         clientCfg.APIKey,
		Timeout:        *timeout,
		ConnectTimeout: clientCfg.ConnectTimeout(),
		HTTP2Enabled:   clientCfg.HTTP2Enabled,
		Tracing:        clientCfg.Tracing,
	}, querysubmit.WithLogger(logger))
	if err != nil {
		logger.Error("tigquery_init_failed", "err", err)
		return 1
	}

	button := querysubmit.NewButton()
	input := &querysubmit.TextInput{}
	binding := submitter.Bind(button, input, querysubmit.NewWriterDisplay(stdout), querysubmit.LogErrorSink{Logger: logger})
	defer binding.Close()

	// 출력 순서를 입력 순서와 맞추기 위해 사이클마다 기다린다.
	submit := func(q string) {
		input.Set(q)
		button.Click()
		binding.Wait()
	}

	if isFlagSet(fs, "q") {
		submit(*query)
		return 0
	}

	started := time.Now()
	count := 0
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		submit(scanner.Text())
		count++
	}
	if err := scanner.Err(); err != nil {
		logger.Error("tigquery_stdin_failed", "err", err)
		return 1
	}
	logger.Debug("tigquery_done", "queries", count, "elapsed", time.Since(started))
	return 0
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
