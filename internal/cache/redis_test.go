package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Addr != "localhost:6379" {
		t.Errorf("Expected Addr to be localhost:6379, got %s", config.Addr)
	}
	if config.PoolSize != 10 {
		t.Errorf("Expected PoolSize to be 10, got %d", config.PoolSize)
	}
	if config.DialTimeout != 5*time.Second {
		t.Errorf("Expected DialTimeout to be 5s, got %v", config.DialTimeout)
	}
}

func setupTestRedis(t *testing.T) *RedisCache {
	mr := miniredis.RunT(t)
	return New(&Config{Addr: mr.Addr()})
}

func TestSetGetRoundtrip(t *testing.T) {
	cache := setupTestRedis(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := cache.Set(ctx, "key1", payload{Name: "apollo", Count: 3}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got payload
	if err := cache.Get(ctx, "key1", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "apollo" || got.Count != 3 {
		t.Errorf("Got %+v, want {apollo 3}", got)
	}
}

func TestGetMiss(t *testing.T) {
	cache := setupTestRedis(t)

	var dest string
	err := cache.Get(context.Background(), "missing", &dest)
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	cache := setupTestRedis(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "key1", "value", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cache.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var dest string
	if err := cache.Get(ctx, "key1", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestDeletePattern(t *testing.T) {
	cache := setupTestRedis(t)
	ctx := context.Background()

	keys := []string{"projects:u1:1", "projects:u1:2", "analytics:p1"}
	for _, key := range keys {
		if err := cache.Set(ctx, key, "v", time.Minute); err != nil {
			t.Fatalf("Set %s failed: %v", key, err)
		}
	}

	if err := cache.DeletePattern(ctx, "projects:*"); err != nil {
		t.Fatalf("DeletePattern failed: %v", err)
	}

	var dest string
	if err := cache.Get(ctx, "projects:u1:1", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected projects:u1:1 to be gone, got %v", err)
	}
	if err := cache.Get(ctx, "analytics:p1", &dest); err != nil {
		t.Errorf("Expected analytics:p1 to survive, got %v", err)
	}
}

func TestDeletePatternNoMatches(t *testing.T) {
	cache := setupTestRedis(t)

	if err := cache.DeletePattern(context.Background(), "nothing:*"); err != nil {
		t.Errorf("DeletePattern with no matches should succeed, got %v", err)
	}
}

func TestExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := New(&Config{Addr: mr.Addr()})
	ctx := context.Background()

	if err := cache.Set(ctx, "short", "v", time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	var dest string
	if err := cache.Get(ctx, "short", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected expired key to miss, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	cache := setupTestRedis(t)
	if err := cache.Health(context.Background()); err != nil {
		t.Errorf("Health check failed: %v", err)
	}
}
