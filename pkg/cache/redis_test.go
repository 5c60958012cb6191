package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T, prefix string) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), RedisOptions{Addr: srv.Addr(), Prefix: prefix})
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, srv
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestRedis(t, "")

	if _, ok, err := c.Get(ctx, "directory"); ok || err != nil {
		t.Fatalf("Get() on empty cache = ok %v, err %v", ok, err)
	}
	if err := c.Set(ctx, "directory", []byte(`{"Inter":{}}`), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, ok, err := c.Get(ctx, "directory")
	if err != nil || !ok || string(data) != `{"Inter":{}}` {
		t.Errorf("Get() = %q, %v, %v", data, ok, err)
	}

	raw, err := srv.Get("fontfetch:directory")
	if err != nil || raw != `{"Inter":{}}` {
		t.Errorf("stored key fontfetch:directory = %q, %v", raw, err)
	}
	if ttl := srv.TTL("fontfetch:directory"); ttl != 0 {
		t.Errorf("TTL = %v, want none", ttl)
	}

	if err := c.Delete(ctx, "directory"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "directory"); ok {
		t.Error("Get() after Delete should miss")
	}
	if err := c.Delete(ctx, "directory"); err != nil {
		t.Errorf("Delete() of a missing key = %v", err)
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestRedis(t, "test:")

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if ttl := srv.TTL("test:k"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatal("Get() before expiry should hit")
	}

	srv.FastForward(2 * time.Minute)
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("Get() after expiry = ok %v, err %v", ok, err)
	}
}

func TestRedisCacheGetError(t *testing.T) {
	c, srv := newTestRedis(t, "")
	srv.SetError("ERR backend unavailable")

	if _, ok, err := c.Get(context.Background(), "k"); ok || err == nil {
		t.Errorf("Get() = ok %v, err %v, want an error", ok, err)
	}
}

func TestOpenRedisBackend(t *testing.T) {
	srv := miniredis.RunT(t)
	c, err := Open(context.Background(), Options{Backend: BackendRedis, RedisAddr: srv.Addr(), Prefix: "ff:"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()
	if _, ok := c.(*RedisCache); !ok {
		t.Fatalf("Open() = %T, want *RedisCache", c)
	}
	if err := c.Set(context.Background(), "a", []byte("1"), 0); err != nil {
		t.Fatal(err)
	}
	if !srv.Exists("ff:a") {
		t.Error("key not written under the configured prefix")
	}
}

func TestRedisCacheDefaultPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	if c := newRedisCache(client, ""); c.prefix != "fontfetch:" {
		t.Errorf("prefix = %q, want %q", c.prefix, "fontfetch:")
	}
	if c := newRedisCache(client, "test:"); c.prefix != "test:" {
		t.Errorf("prefix = %q, want %q", c.prefix, "test:")
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("NewRedisCache() should fail when the server is unreachable")
	}
}
