package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
)

func TestCacheRoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	cache, err := New(newMemoryProvider(t))
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	pageID := uuid.New()
	snap := NewSnapshot(pageID)
	snap.Add("main", "richtext")
	snap.Add("main", "richtext")
	snap.Add("sidebar", "section")
	if err := cache.Set(ctx, snap); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := cache.Get(ctx, pageID)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !got.Has("main", "richtext") || got.Has("main", "section") || len(got.Regions["main"]) != 1 {
		t.Fatalf("unexpected snapshot %+v", got)
	}

	if err := cache.Invalidate(ctx, pageID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, pageID); ok {
		t.Fatal("expected miss after invalidation")
	}
}

func newMemoryProvider(t *testing.T) *ServiceProvider {
	t.Helper()
	provider, err := NewMemoryProvider(time.Minute)
	if err != nil {
		t.Fatalf("memory provider: %v", err)
	}
	return provider
}

func TestMemoryProviderOverwritesAndDeletes(t *testing.T) {
	ctx := context.Background()
	provider := newMemoryProvider(t)

	if _, ok, err := provider.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss on empty cache, got ok=%v err=%v", ok, err)
	}
	if err := provider.Set(ctx, "k", []byte("one"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := provider.Set(ctx, "k", []byte("two"), 0); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, ok, err := provider.Get(ctx, "k")
	if err != nil || !ok || string(got) != "two" {
		t.Fatalf("expected overwritten value, got %q ok=%v err=%v", got, ok, err)
	}

	got[0] = 'X'
	again, _, _ := provider.Get(ctx, "k")
	if string(again) != "two" {
		t.Fatalf("cached bytes must not alias callers, got %q", again)
	}

	if err := provider.Delete(ctx, "k", "missing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := provider.Get(ctx, "k"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestServiceProviderSharesRepositoryCache(t *testing.T) {
	ctx := context.Background()
	service, err := repocache.NewCacheService(repocache.DefaultConfig())
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	cache, err := New(NewServiceProvider(service))
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	pageID := uuid.New()
	snap := NewSnapshot(pageID)
	snap.Add("main", "markdown")
	if err := cache.Set(ctx, snap); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := cache.Get(ctx, pageID)
	if err != nil || !ok || !got.Has("main", "markdown") {
		t.Fatalf("expected hit, got %+v ok=%v err=%v", got, ok, err)
	}
}

func TestCacheDropsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	provider := newMemoryProvider(t)
	cache, err := New(provider, WithKeyPrefix("inv:"))
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	pageID := uuid.New()
	if err := provider.Set(ctx, "inv:"+pageID.String(), []byte("{not json"), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, ok, err := cache.Get(ctx, pageID); ok || err != nil {
		t.Fatalf("expected silent miss, got ok=%v err=%v", ok, err)
	}
	if _, ok, _ := provider.Get(ctx, "inv:"+pageID.String()); ok {
		t.Fatal("corrupt entry should be deleted")
	}
}

func TestNewRequiresProvider(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrProviderRequired) {
		t.Fatalf("expected ErrProviderRequired, got %v", err)
	}
}
