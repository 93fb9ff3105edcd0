// Package httpclient 는 아웃바운드 HTTP 클라이언트를 만든다.
package httpclient

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
)

const keepAlive = 30 * time.Second

// Config 는 아웃바운드 HTTP 클라이언트 설정이다.
type Config struct {
	Timeout        time.Duration
	ConnectTimeout time.Duration
	// HTTP2Enabled 이면 TLS 없이 HTTP/2(h2c)로만 통신한다.
	HTTP2Enabled bool
	// Tracing 이 켜져 있으면 요청마다 client span을 만들고 traceparent를 전파한다.
	Tracing bool
	// UserAgent 가 있으면 요청에 User-Agent 가 없을 때 채운다.
	UserAgent string
}

// New 는 설정에 맞는 *http.Client 를 만든다.
func New(cfg Config) *http.Client {
	transport := newTransport(cfg)
	if cfg.UserAgent != "" {
		transport = &userAgentTransport{next: transport, userAgent: cfg.UserAgent}
	}
	if cfg.Tracing {
		transport = otelhttp.NewTransport(transport)
	}
	return &http.Client{Timeout: cfg.Timeout, Transport: transport}
}

func newTransport(cfg Config) http.RoundTripper {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout, KeepAlive: keepAlive}

	if cfg.HTTP2Enabled {
		return &http2.Transport{
			AllowHTTP: true,
			// h2c: TLS 다이얼을 평문 TCP 다이얼로 대체한다.
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialer.DialContext(ctx, network, addr)
			},
		}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.ForceAttemptHTTP2 = false
	transport.MaxIdleConnsPerHost = transport.MaxIdleConns
	return transport
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(clone)
}
