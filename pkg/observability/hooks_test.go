package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	a := NoopAcquireHooks{}
	a.OnAcquireStart(ctx, "id", "Inter:400:normal")
	a.OnAcquireStage(ctx, "id", "Inter:400:normal", "download")
	a.OnAcquireComplete(ctx, "id", "Inter:400:normal", "finished", time.Second)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "names")
	c.OnCacheMiss(ctx, "catalog")
	c.OnCacheSet(ctx, "catalog", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "fonts.gstatic.com", "/s/inter/v12/a.ttf")
	h.OnResponse(ctx, "GET", "fonts.gstatic.com", "/s/inter/v12/a.ttf", 200, time.Second)
	h.OnError(ctx, "GET", "fonts.gstatic.com", "/s/inter/v12/a.ttf", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Acquire().(NoopAcquireHooks); !ok {
		t.Error("Acquire() should return NoopAcquireHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customAcquire := &testAcquireHooks{}
	SetAcquireHooks(customAcquire)
	if Acquire() != customAcquire {
		t.Error("SetAcquireHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Acquire().(NoopAcquireHooks); !ok {
		t.Error("Reset() should restore NoopAcquireHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testAcquireHooks{}
	SetAcquireHooks(custom)
	SetAcquireHooks(nil)

	if Acquire() != custom {
		t.Error("SetAcquireHooks(nil) should be ignored")
	}
}

type testAcquireHooks struct{ NoopAcquireHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
