package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/park285/tig-search-go/internal/config"
)

func TestNewHTTPServer(t *testing.T) {
	router := gin.New()
	cfg := &config.Config{HTTP: config.HTTPConfig{Host: "127.0.0.1", Port: 5000, HTTP2Enabled: false}}

	srv := NewHTTPServer(cfg, router)
	if srv.Addr != "127.0.0.1:5000" {
		t.Fatalf("unexpected addr: %s", srv.Addr)
	}
	if srv.Handler != router {
		t.Fatalf("expected plain router handler")
	}
	if srv.ReadHeaderTimeout != readHeaderTimeout {
		t.Fatalf("unexpected read header timeout: %s", srv.ReadHeaderTimeout)
	}

	cfg.HTTP.HTTP2Enabled = true
	srv = NewHTTPServer(cfg, router)
	if srv.Handler == router {
		t.Fatalf("expected h2c wrapped handler")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestRunShutsDownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	cfg := &config.Config{HTTP: config.HTTPConfig{Host: "127.0.0.1", Port: freePort(t), HTTP2Enabled: true}}
	srv := NewHTTPServer(cfg, router)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, nil) }()

	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get("http://" + srv.Addr + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("unexpected status: %d", resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(ShutdownTimeout):
		t.Fatalf("server did not stop")
	}
}

func TestRunReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	srv := NewHTTPServer(&config.Config{HTTP: config.HTTPConfig{Host: "127.0.0.1", Port: port}}, http.NotFoundHandler())
	if err := Run(context.Background(), srv, nil); err == nil {
		t.Fatalf("expected address in use error")
	}
}
