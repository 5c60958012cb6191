// Package download fetches font files over HTTP into local storage.
package download

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/fontfetch/pkg/errors"
	"github.com/matzehuels/fontfetch/pkg/font"
	"github.com/matzehuels/fontfetch/pkg/integrations"
	"github.com/matzehuels/fontfetch/pkg/storage"
	"github.com/matzehuels/fontfetch/pkg/task"
)

// DefaultMaxBytes bounds a single font download.
const DefaultMaxBytes = 64 << 20

// Store is where downloaded fonts land.
type Store interface {
	Put(ctx context.Context, f font.Font, body io.Reader) (*storage.Entry, error)
}

// Progress is called as bytes arrive. total is -1 when the server did not
// declare a length.
type Progress func(f font.Font, written, total int64)

// Downloader streams font files into a Store.
type Downloader struct {
	client   *integrations.Client
	store    Store
	logger   *log.Logger
	maxBytes int64
	progress Progress
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(d *Downloader) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(d *Downloader) {
		if n > 0 {
			d.maxBytes = n
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(p Progress) Option {
	return func(d *Downloader) { d.progress = p }
}

// New returns a Downloader fetching through client into store.
func New(client *integrations.Client, store Store, opts ...Option) *Downloader {
	d := &Downloader{
		client:   client,
		store:    store,
		logger:   log.Default(),
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches url and stores it as f, then calls done exactly once with
// the stored path or the failure. Cancelling the returned request aborts the
// transfer and leaves nothing in storage.
func (d *Downloader) Download(ctx context.Context, f font.Font, url string, done func(path string, err error)) task.Request {
	return task.Start(ctx, func(ctx context.Context) {
		done(d.Fetch(ctx, f, url))
	})
}

// Fetch is the synchronous form of Download.
func (d *Downloader) Fetch(ctx context.Context, f font.Font, url string) (string, error) {
	if err := errors.ValidateURL(url); err != nil {
		return "", err
	}

	start := time.Now()
	body, total, err := d.client.GetStream(ctx, url)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDownload, err, "download %s", f)
	}
	defer body.Close()

	if total > d.maxBytes {
		return "", errors.New(errors.ErrCodeDownload, "font %s is %s, limit is %s",
			f, humanize.Bytes(uint64(total)), humanize.Bytes(uint64(d.maxBytes)))
	}

	r := &limitedReader{r: body, remaining: d.maxBytes}
	var src io.Reader = r
	if d.progress != nil {
		src = &progressReader{r: r, font: f, total: total, fn: d.progress}
	}

	entry, err := d.store.Put(ctx, f, src)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDownload, err, "store %s", f)
	}

	elapsed := time.Since(start)
	d.logger.Debug("downloaded font",
		"font", f.Key(),
		"size", humanize.Bytes(uint64(entry.Size)),
		"rate", humanize.Bytes(uint64(float64(entry.Size)/max(elapsed.Seconds(), 0.001)))+"/s",
		"path", entry.Path)
	return entry.Path, nil
}

type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		var extra [1]byte
		if n, err := l.r.Read(extra[:]); n == 0 && err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("font exceeds download limit")
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}

type progressReader struct {
	r       io.Reader
	font    font.Font
	total   int64
	written int64
	fn      Progress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.written += int64(n)
		p.fn(p.font, p.written, p.total)
	}
	return n, err
}
