package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// AcquireHooks, CacheHooks and HTTPHooks.
type LogHooks struct {
	Logger *log.Logger
}

var (
	_ AcquireHooks = LogHooks{}
	_ CacheHooks   = LogHooks{}
	_ HTTPHooks    = LogHooks{}
)

func (h LogHooks) logger() *log.Logger {
	if h.Logger == nil {
		return log.Default()
	}
	return h.Logger
}

func (h LogHooks) OnAcquireStart(_ context.Context, id, key string) {
	h.logger().Debug("acquire start", "id", short(id), "font", key)
}

func (h LogHooks) OnAcquireStage(_ context.Context, id, key, stage string) {
	h.logger().Debug("acquire stage", "id", short(id), "font", key, "stage", stage)
}

func (h LogHooks) OnAcquireComplete(_ context.Context, id, key, outcome string, d time.Duration) {
	h.logger().Debug("acquire done", "id", short(id), "font", key, "outcome", outcome, "duration", d.Round(time.Millisecond))
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger().Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger().Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger().Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger().Debug("http request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger().Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger().Warn("http error", "method", method, "host", host, "path", path, "err", err)
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
