package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/fontfetch/pkg/errors"
	"github.com/matzehuels/fontfetch/pkg/font"
	"github.com/matzehuels/fontfetch/pkg/integrations"
	"github.com/matzehuels/fontfetch/pkg/storage"
)

var inter = font.New("Inter", font.Regular, false)

func newDownloader(t *testing.T, opts ...Option) (*Downloader, *storage.Storage) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return New(integrations.NewClient(nil, "", 0, nil), store, opts...), store
}

func fontServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inter.ttf" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
}

type result struct {
	path string
	err  error
}

func download(t *testing.T, d *Downloader, ctx context.Context, url string) result {
	t.Helper()
	ch := make(chan result, 2)
	d.Download(ctx, inter, url, func(path string, err error) { ch <- result{path, err} })
	select {
	case r := <-ch:
		select {
		case <-ch:
			t.Error("completion called twice")
		case <-time.After(10 * time.Millisecond):
		}
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("download completion not called")
	}
	return result{}
}

func TestDownloadStoresFont(t *testing.T) {
	srv := fontServer(t, "ttf-data")
	defer srv.Close()

	var calls int32
	d, store := newDownloader(t, WithProgress(func(f font.Font, written, total int64) {
		atomic.AddInt32(&calls, 1)
	}))

	r := download(t, d, context.Background(), srv.URL+"/inter.ttf")
	if r.err != nil {
		t.Fatalf("Download error: %v", r.err)
	}
	if r.path != store.Path(inter) {
		t.Errorf("path = %q, want %q", r.path, store.Path(inter))
	}
	data, _ := os.ReadFile(r.path)
	if string(data) != "ttf-data" {
		t.Errorf("stored %q, want %q", data, "ttf-data")
	}
	if atomic.LoadInt32(&calls) == 0 {
		t.Error("progress callback never called")
	}
}

func TestDownloadNotFound(t *testing.T) {
	srv := fontServer(t, "")
	defer srv.Close()

	d, store := newDownloader(t)
	r := download(t, d, context.Background(), srv.URL+"/missing.ttf")
	if !errors.Is(r.err, errors.ErrCodeDownload) {
		t.Errorf("error = %v, want DOWNLOAD_FAILED", r.err)
	}
	if store.FileExists(inter) {
		t.Error("failed download should not store anything")
	}
}

func TestDownloadRejectsScheme(t *testing.T) {
	d, _ := newDownloader(t)
	r := download(t, d, context.Background(), "file:///etc/passwd")
	if !errors.Is(r.err, errors.ErrCodeInvalidURL) {
		t.Errorf("error = %v, want INVALID_URL", r.err)
	}
}

func TestDownloadLimit(t *testing.T) {
	srv := fontServer(t, strings.Repeat("x", 100))
	defer srv.Close()

	d, store := newDownloader(t, WithMaxBytes(10))
	r := download(t, d, context.Background(), srv.URL+"/inter.ttf")
	if r.err == nil {
		t.Fatal("oversized download should fail")
	}
	if store.FileExists(inter) {
		t.Error("oversized download should not be stored")
	}

	d, _ = newDownloader(t, WithMaxBytes(100))
	if r := download(t, d, context.Background(), srv.URL+"/inter.ttf"); r.err != nil {
		t.Errorf("download at exactly the limit failed: %v", r.err)
	}
}

func TestDownloadCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	d, store := newDownloader(t)
	ch := make(chan error, 1)
	req := d.Download(context.Background(), inter, srv.URL+"/inter.ttf", func(_ string, err error) { ch <- err })
	req.Cancel()

	select {
	case err := <-ch:
		if err == nil {
			t.Error("cancelled download should report an error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled download never completed")
	}
	if store.FileExists(inter) {
		t.Error("cancelled download should not store anything")
	}
}

func TestDownloadSingleAttempt(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d, store := newDownloader(t)
	r := download(t, d, context.Background(), srv.URL+"/inter.ttf")
	if !errors.Is(r.err, errors.ErrCodeDownload) {
		t.Errorf("Download error = %v, want DOWNLOAD_FAILED", r.err)
	}
	if store.FileExists(inter) {
		t.Error("failed download should not store anything")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
}
