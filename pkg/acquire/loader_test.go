package acquire

import (
	"context"
	"errors"
	"testing"
	"time"

	ferrors "github.com/matzehuels/fontfetch/pkg/errors"
	"github.com/matzehuels/fontfetch/pkg/font"
)

func TestNewLoaderRequiresDeps(t *testing.T) {
	full := newHarness().deps()

	tests := []struct {
		name  string
		strip func(*Deps)
	}{
		{"names", func(d *Deps) { d.Names = nil }},
		{"storage", func(d *Deps) { d.Storage = nil }},
		{"catalog", func(d *Deps) { d.Catalog = nil }},
		{"downloader", func(d *Deps) { d.Downloader = nil }},
		{"registrar", func(d *Deps) { d.Registrar = nil }},
		{"runtime", func(d *Deps) { d.Runtime = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := full
			tt.strip(&d)
			if _, err := NewLoader(d); !ferrors.Is(err, ferrors.ErrCodeInvalidConfig) {
				t.Errorf("NewLoader() error = %v, want INVALID_CONFIG", err)
			}
		})
	}

	if _, err := NewLoader(full); err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
}

func TestLoaderLoad(t *testing.T) {
	h := newHarness()
	h.storage.files[roboto] = true
	l, err := NewLoader(h.deps())
	if err != nil {
		t.Fatal(err)
	}

	got := make(chan *font.Handle, 1)
	handle := l.Load(Request{Font: roboto, Size: 10}, func(fh *font.Handle) { got <- fh })
	if handle.ID() == "" {
		t.Error("handle has no ID")
	}

	select {
	case fh := <-got:
		if fh == nil || fh.Size != 10 {
			t.Errorf("handle = %+v, want size 10", fh)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("completion not called")
	}
	<-handle.Done()
	if handle.State() != StateFinished || handle.Err() != nil {
		t.Errorf("state = %s, err = %v", handle.State(), handle.Err())
	}
}

func TestLoaderLoadInvalidFontCompletesWithNil(t *testing.T) {
	h := newHarness()
	l, err := NewLoader(h.deps())
	if err != nil {
		t.Fatal(err)
	}

	got := make(chan *font.Handle, 1)
	handle := l.Load(Request{Font: font.New("_", font.Regular, false)}, func(fh *font.Handle) { got <- fh })
	if handle == nil {
		t.Fatal("Load() should return a handle for an invalid font")
	}
	select {
	case fh := <-got:
		if fh != nil {
			t.Errorf("handle = %+v, want nil", fh)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("completion not called")
	}
	<-handle.Done()
	if !ferrors.Is(handle.Err(), ferrors.ErrCodeInvalidFont) {
		t.Errorf("Err() = %v, want INVALID_FONT", handle.Err())
	}

	if _, err := l.Fetch(context.Background(), Request{Font: font.New("../etc", 0, false)}); !ferrors.Is(err, ferrors.ErrCodeInvalidFont) {
		t.Errorf("Fetch() error = %v, want INVALID_FONT", err)
	}
}

func TestLoaderFetch(t *testing.T) {
	h := newHarness()
	h.catalog.auto = true
	h.catalog.autoDir = font.FamilyDictionary{"Roboto": {"regular": "roboto.ttf"}}
	h.downloader.auto = true
	l, err := NewLoader(h.deps())
	if err != nil {
		t.Fatal(err)
	}

	fh, err := l.Fetch(context.Background(), Request{Font: roboto, Size: 16})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if fh.Name != "Roboto-PS" || fh.Size != 16 {
		t.Errorf("Fetch() = %+v", fh)
	}
}

func TestLoaderFetchReportsFailure(t *testing.T) {
	h := newHarness()
	h.catalog.auto = true
	h.catalog.autoDir = font.FamilyDictionary{}
	l, err := NewLoader(h.deps())
	if err != nil {
		t.Fatal(err)
	}

	_, err = l.Fetch(context.Background(), Request{Font: roboto, Size: 16})
	if !ferrors.Is(err, ferrors.ErrCodeNoDownloadURL) {
		t.Errorf("Fetch() error = %v, want NO_DOWNLOAD_URL", err)
	}
}

func TestLoaderFetchContextCancel(t *testing.T) {
	h := newHarness()
	l, err := NewLoader(h.deps())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// The catalog never answers, so only the deadline ends the wait.
	_, err = l.Fetch(ctx, Request{Font: roboto, Size: 16})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Fetch() error = %v, want deadline exceeded", err)
	}
	if n := h.catalog.fetchCount(); n != 1 {
		t.Fatalf("fetches = %d, want 1", n)
	}
	h.catalog.mu.Lock()
	cancels := h.catalog.fetches[0].cancels.Load()
	h.catalog.mu.Unlock()
	if cancels != 1 {
		t.Errorf("fetch cancels = %d, want 1", cancels)
	}
}

func TestLoaderFetchCancelledContext(t *testing.T) {
	h := newHarness()
	l, err := NewLoader(h.deps())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.Fetch(ctx, Request{Font: roboto}); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
	if h.catalog.fetchCount() != 0 {
		t.Error("cancelled context should not start an operation")
	}
}
