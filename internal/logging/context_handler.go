package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/park285/tig-search-go/internal/requestctx"
)

// ContextHandler: *Context 로깅 호출의 context 에서 request_id 와 (tracing 이 켜져 있으면) trace_id/span_id 를 꺼내 붙입니다.
type ContextHandler struct {
	inner   slog.Handler
	tracing bool
}

// NewContextHandler 는 inner 를 감싼 ContextHandler 를 만든다.
func NewContextHandler(inner slog.Handler, tracing bool) *ContextHandler {
	return &ContextHandler{inner: inner, tracing: tracing}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if id := requestctx.ID(ctx); id != "" {
		record.AddAttrs(slog.String("request_id", id))
	}
	if h.tracing {
		if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
			record.AddAttrs(
				slog.String("trace_id", spanCtx.TraceID().String()),
				slog.String("span_id", spanCtx.SpanID().String()),
			)
		}
	}
	//nolint:wrapcheck // slog.Handler interface implementation
	return h.inner.Handle(ctx, record)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), tracing: h.tracing}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name), tracing: h.tracing}
}
