package acquire

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/matzehuels/fontfetch/pkg/font"
	"github.com/matzehuels/fontfetch/pkg/task"
)

type fakeRequest struct {
	cancels atomic.Int32
}

func (r *fakeRequest) Cancel() { r.cancels.Add(1) }

type fakeNames struct {
	mu    sync.Mutex
	names map[font.Font]string
}

func newFakeNames() *fakeNames { return &fakeNames{names: map[font.Font]string{}} }

func (n *fakeNames) Resolve(f font.Font) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	name, ok := n.names[f]
	return name, ok
}

func (n *fakeNames) set(f font.Font, name string) {
	n.mu.Lock()
	n.names[f] = name
	n.mu.Unlock()
}

type fakeStorage struct {
	mu    sync.Mutex
	files map[font.Font]bool
}

func (s *fakeStorage) FileExists(f font.Font) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[f]
}

// fakeCatalog hands fetch completions back to the test instead of calling
// them, unless autoDir/autoErr are set.
type fakeCatalog struct {
	exist   bool
	autoDir font.FamilyDictionary
	autoErr error
	auto    bool
	onFile  func()

	mu        sync.Mutex
	fetches   []*fakeRequest
	pending   []func(font.FamilyDictionary, error)
	fileCalls int
	dirNil    bool
}

func (c *fakeCatalog) Exist() bool { return c.exist }

func (c *fakeCatalog) Fetch(ctx context.Context, done func(font.FamilyDictionary, error)) task.Request {
	req := &fakeRequest{}
	c.mu.Lock()
	c.fetches = append(c.fetches, req)
	if !c.auto {
		c.pending = append(c.pending, done)
	}
	c.mu.Unlock()
	if c.auto {
		go done(c.autoDir, c.autoErr)
	}
	return req
}

func (c *fakeCatalog) File(f font.Font, dir font.FamilyDictionary) (string, bool) {
	c.mu.Lock()
	c.fileCalls++
	c.dirNil = dir == nil
	c.mu.Unlock()
	if c.onFile != nil {
		c.onFile()
	}
	u, ok := dir[f.Family][f.Variant()]
	return u, ok
}

func (c *fakeCatalog) fetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fetches)
}

func (c *fakeCatalog) complete(dir font.FamilyDictionary, err error) {
	c.mu.Lock()
	done := c.pending[0]
	c.pending = c.pending[1:]
	c.mu.Unlock()
	done(dir, err)
}

// fakeDownloader records calls; with auto set it completes on its own
// goroutine, otherwise the test completes it.
type fakeDownloader struct {
	auto    bool
	autoErr error
	delay   func()
	onStore func(font.Font)

	mu       sync.Mutex
	urls     []string
	requests []*fakeRequest
	pending  []func(string, error)
}

func (d *fakeDownloader) Download(ctx context.Context, f font.Font, url string, done func(string, error)) task.Request {
	req := &fakeRequest{}
	d.mu.Lock()
	d.urls = append(d.urls, url)
	d.requests = append(d.requests, req)
	if !d.auto {
		d.pending = append(d.pending, done)
	}
	d.mu.Unlock()
	if d.auto {
		go func() {
			if d.delay != nil {
				d.delay()
			}
			if d.autoErr == nil && d.onStore != nil {
				d.onStore(f)
			}
			done("/tmp/"+f.Key(), d.autoErr)
		}()
	}
	return req
}

func (d *fakeDownloader) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.urls)
}

func (d *fakeDownloader) complete(path string, err error) {
	d.mu.Lock()
	done := d.pending[0]
	d.pending = d.pending[1:]
	d.mu.Unlock()
	done(path, err)
}

// fakeRegistrar records registrations and, when name is set, installs the
// font under that name.
type fakeRegistrar struct {
	names   *fakeNames
	runtime *fakeRuntime
	install bool

	mu    sync.Mutex
	calls []font.Font
}

func (r *fakeRegistrar) Register(f font.Font) {
	r.mu.Lock()
	r.calls = append(r.calls, f)
	r.mu.Unlock()
	if r.install {
		name := f.Family + "-PS"
		r.runtime.add(name)
		r.names.set(f, name)
	}
}

func (r *fakeRegistrar) registered() []font.Font {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]font.Font(nil), r.calls...)
}

type fakeRuntime struct {
	mu    sync.Mutex
	names map[string]bool
	calls int
}

func newFakeRuntime() *fakeRuntime { return &fakeRuntime{names: map[string]bool{}} }

func (r *fakeRuntime) add(name string) {
	r.mu.Lock()
	r.names[name] = true
	r.mu.Unlock()
}

func (r *fakeRuntime) Instantiate(name string, size float64) (*font.Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if !r.names[name] {
		return nil, false
	}
	return &font.Handle{Name: name, Size: size}, true
}

type harness struct {
	names      *fakeNames
	storage    *fakeStorage
	catalog    *fakeCatalog
	downloader *fakeDownloader
	registrar  *fakeRegistrar
	runtime    *fakeRuntime
}

func newHarness() *harness {
	h := &harness{
		names:      newFakeNames(),
		storage:    &fakeStorage{files: map[font.Font]bool{}},
		catalog:    &fakeCatalog{},
		downloader: &fakeDownloader{},
		runtime:    newFakeRuntime(),
	}
	h.registrar = &fakeRegistrar{names: h.names, runtime: h.runtime, install: true}
	return h
}

func (h *harness) deps() Deps {
	return Deps{
		Names:      h.names,
		Storage:    h.storage,
		Catalog:    h.catalog,
		Downloader: h.downloader,
		Registrar:  h.registrar,
		Runtime:    h.runtime,
	}
}

// recorder counts completions.
type recorder struct {
	calls  atomic.Int32
	mu     sync.Mutex
	handle *font.Handle
}

func (r *recorder) complete(h *font.Handle) {
	r.calls.Add(1)
	r.mu.Lock()
	r.handle = h
	r.mu.Unlock()
}

func (r *recorder) result() *font.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handle
}
