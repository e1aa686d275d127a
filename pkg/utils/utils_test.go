package utils

import (
	"context"
	"testing"
	"time"
)

func TestPostgresPoolDefaults(t *testing.T) {
	got := PostgresPoolConfig{}.withDefaults()
	if got.MaxOpenConns != 25 || got.MaxIdleConns != 25 {
		t.Fatalf("expected pool size defaults of 25, got %d and %d", got.MaxOpenConns, got.MaxIdleConns)
	}
	if got.PingTimeout != 5*time.Second {
		t.Fatalf("expected 5s ping timeout, got %v", got.PingTimeout)
	}

	custom := PostgresPoolConfig{MaxOpenConns: 5}.withDefaults()
	if custom.MaxOpenConns != 5 {
		t.Fatalf("expected explicit pool size kept, got %d", custom.MaxOpenConns)
	}
}

func TestRedisConfigDefaults(t *testing.T) {
	got := RedisConfig{Addr: "localhost:6379"}.withDefaults()
	if got.DialTimeout != 3*time.Second {
		t.Fatalf("expected 3s dial timeout, got %v", got.DialTimeout)
	}
	if got.PoolSize != 20 {
		t.Fatalf("expected pool size 20, got %d", got.PoolSize)
	}
}

func TestOpenRedisRequiresAddr(t *testing.T) {
	if _, err := OpenRedis(context.Background(), RedisConfig{}); err == nil {
		t.Fatalf("expected error for missing addr")
	}
}

func TestCacheJSONValidatesArguments(t *testing.T) {
	ctx := context.Background()

	if err := CacheSetJSON(ctx, nil, "k", 1, time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := CacheGetJSON(ctx, nil, "k", new(int)); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
