package requestctx

import (
	"context"
	"testing"
)

func TestWithID(t *testing.T) {
	ctx := WithID(context.Background(), "req-1")
	if got := ID(ctx); got != "req-1" {
		t.Fatalf("unexpected id: %q", got)
	}
	if got := ID(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
	//nolint:staticcheck // nil context is tolerated
	if got := ID(nil); got != "" {
		t.Fatalf("expected empty id for nil context, got %q", got)
	}
}
