package inventory

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testRedisClient returns a client for DB 15 and skips when no server is
// reachable.
func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("PAGETREE_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := ConnectRedis(context.Background(), RedisConfig{Addr: addr, DB: 15})
	if err != nil {
		t.Skipf("skipping integration test: redis not reachable: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, "pagetree:test:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

func TestRedisProviderRoundTrip(t *testing.T) {
	client := testRedisClient(t)
	ctx := context.Background()

	cache, err := New(NewRedisProvider(client), WithKeyPrefix("pagetree:test:"))
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
		t.Fatalf("unexpected get result %+v ok=%v err=%v", got, ok, err)
	}
	if err := cache.Invalidate(ctx, pageID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, err := cache.Get(ctx, pageID); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}
