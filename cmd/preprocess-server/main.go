package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/park285/tig-search-go/internal/config"
	"github.com/park285/tig-search-go/internal/di"
	"github.com/park285/tig-search-go/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := di.InitializeApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "preprocess-server: init: %v\n", err)
		return 1
	}
	defer app.Close()

	config.LogEnvStatus(app.Config, app.Logger)
	stats := app.Search.Stats()
	app.Logger.Info("http_server_start",
		"addr", app.Server.Addr,
		"http2", app.Config.HTTP.HTTP2Enabled,
		"result_cache", app.Search.CacheBackend(),
		"index_driver", app.IndexStore.Driver(),
		"index_loaded", stats.Loaded,
		"documents", stats.Documents,
	)

	if err := server.Run(ctx, app.Server, app.Logger); err != nil {
		app.Logger.Error("http_server_failed", "err", err)
		return 1
	}
	app.Logger.Info("http_server_stopped")
	return 0
}
