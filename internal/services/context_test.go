package services_test

import (
	"context"
	"testing"

	"plexmeta/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithLibrary(ctx, "Movies")
	ctx = services.WithItem(ctx, "1234")
	ctx = services.WithRequestID(ctx, "req-123")

	if name, ok := services.LibraryFromContext(ctx); !ok || name != "Movies" {
		t.Fatalf("unexpected library: %v %v", name, ok)
	}
	if handle, ok := services.ItemFromContext(ctx); !ok || handle != "1234" {
		t.Fatalf("unexpected item: %v %v", handle, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithLibrary(ctx, "")
	ctx = services.WithItem(ctx, "")
	if _, ok := services.LibraryFromContext(ctx); ok {
		t.Fatal("expected no library value")
	}
	if _, ok := services.ItemFromContext(ctx); ok {
		t.Fatal("expected no item value")
	}
}
