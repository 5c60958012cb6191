package acquire

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/fontfetch/pkg/errors"
	"github.com/matzehuels/fontfetch/pkg/font"
	"github.com/matzehuels/fontfetch/pkg/observability"
	"github.com/matzehuels/fontfetch/pkg/task"
)

// State is the lifecycle position of an Operation.
type State int32

const (
	StateCreated State = iota
	StateExecuting
	StateCancelled
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateExecuting:
		return "executing"
	case StateCancelled:
		return "cancelled"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// Request describes the font to acquire.
type Request struct {
	Font        font.Font
	Size        float64
	FallbackURL string // used when the catalog has no file for Font
}

// Completion receives the instantiated font, or nil on failure. It is called
// at most once per operation and never after cancellation.
type Completion func(*font.Handle)

// Operation acquires one font: installed, stored, or downloaded via the
// catalog. Cancelled and finished are terminal; exactly one of them is
// reached, by compare-and-swap.
type Operation struct {
	id         string
	req        Request
	deps       Deps
	logger     *log.Logger
	completion Completion

	state     atomic.Int32
	delivered atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	fetchReq    task.Request
	downloadReq task.Request
	err         error

	done     chan struct{}
	doneOnce sync.Once
	started  time.Time
}

// NewOperation builds an operation in the created state. deps must be
// complete; see [NewLoader] for a checked constructor.
func NewOperation(deps Deps, req Request, completion Completion) *Operation {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	return &Operation{
		id:         id,
		req:        req,
		deps:       deps,
		logger:     deps.Logger.With("id", id[:8], "font", req.Font.Key()),
		completion: completion,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		started:    time.Now(),
	}
}

// ID uniquely identifies the operation.
func (op *Operation) ID() string { return op.id }

// State returns the current state.
func (op *Operation) State() State { return State(op.state.Load()) }

// Done is closed once the operation is terminal and any completion call has
// returned.
func (op *Operation) Done() <-chan struct{} { return op.done }

// Err returns why a finished operation delivered nil, or nil.
func (op *Operation) Err() error {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.err
}

// Start runs the acquisition. It returns once the work is either complete or
// handed off to an asynchronous fetch or download. Calling Start on a
// cancelled or already started operation does nothing.
func (op *Operation) Start() {
	if !op.state.CompareAndSwap(int32(StateCreated), int32(StateExecuting)) {
		op.logger.Debug("start skipped", "state", op.State())
		return
	}
	observability.Acquire().OnAcquireStart(op.ctx, op.id, op.req.Font.Key())

	if err := op.req.Font.Validate(); err != nil {
		op.fail(err)
		return
	}

	if name, ok := op.deps.Names.Resolve(op.req.Font); ok {
		if h, ok := op.deps.Runtime.Instantiate(name, op.req.Size); ok {
			op.stage("installed")
			op.finishWith(h)
			return
		}
	}

	if op.deps.Storage.FileExists(op.req.Font) {
		op.stage("stored")
		op.deps.Registrar.Register(op.req.Font)
		op.finish()
		return
	}

	if op.deps.Catalog.Exist() {
		// A warm catalog is not consulted for files; only the fallback URL applies.
		op.resolveDownload(nil)
		return
	}

	op.stage("metadata")
	op.setFetch(op.deps.Catalog.Fetch(op.ctx, op.onFetched))
}

// Cancel stops the operation. No completion is delivered afterwards; an
// operation that already finished is unaffected.
func (op *Operation) Cancel() {
	for {
		s := op.state.Load()
		if s != int32(StateCreated) && s != int32(StateExecuting) {
			return
		}
		if op.state.CompareAndSwap(s, int32(StateCancelled)) {
			break
		}
	}
	op.cancel()

	op.mu.Lock()
	fetch, download := op.fetchReq, op.downloadReq
	op.mu.Unlock()
	if fetch != nil {
		fetch.Cancel()
	}
	if download != nil {
		download.Cancel()
	}

	op.logger.Debug("cancelled")
	op.end("cancelled")
}

func (op *Operation) onFetched(dir font.FamilyDictionary, err error) {
	if err != nil {
		op.fail(errors.Wrap(errors.ErrCodeMetadataFetch, err, "fetch catalog"))
		return
	}
	if op.cancelled() {
		return
	}
	op.resolveDownload(dir)
}

func (op *Operation) resolveDownload(dir font.FamilyDictionary) {
	url, ok := op.deps.Catalog.File(op.req.Font, dir)
	if !ok {
		url = op.req.FallbackURL
	}
	if url == "" {
		op.fail(errors.New(errors.ErrCodeNoDownloadURL, "no download URL for %s", op.req.Font))
		return
	}
	if op.cancelled() {
		return
	}
	op.stage("download")
	op.logger.Debug("downloading", "url", url)
	op.setDownload(op.deps.Downloader.Download(op.ctx, op.req.Font, url, op.onDownloaded))
}

func (op *Operation) onDownloaded(path string, err error) {
	if err != nil {
		op.fail(errors.Wrap(errors.ErrCodeDownload, err, "download %s", op.req.Font))
		return
	}
	if op.cancelled() {
		return
	}
	op.stage("register")
	op.deps.Registrar.Register(op.req.Font)
	op.finish()
}

// finish resolves the installed font and delivers it, or nil when the name
// cannot be resolved or instantiated.
func (op *Operation) finish() {
	if !op.state.CompareAndSwap(int32(StateExecuting), int32(StateFinished)) {
		return
	}
	var h *font.Handle
	if name, ok := op.deps.Names.Resolve(op.req.Font); ok {
		h, _ = op.deps.Runtime.Instantiate(name, op.req.Size)
	}
	if h == nil {
		op.setErr(errors.New(errors.ErrCodeNameUnresolvable, "%s registered but not instantiable", op.req.Font))
	}
	op.deliver(h)
}

func (op *Operation) finishWith(h *font.Handle) {
	if !op.state.CompareAndSwap(int32(StateExecuting), int32(StateFinished)) {
		h.Close()
		return
	}
	op.deliver(h)
}

func (op *Operation) fail(err error) {
	if !op.state.CompareAndSwap(int32(StateExecuting), int32(StateFinished)) {
		return
	}
	op.setErr(err)
	op.deliver(nil)
}

func (op *Operation) deliver(h *font.Handle) {
	if op.delivered.CompareAndSwap(false, true) && op.completion != nil {
		op.completion(h)
	}
	outcome := "finished"
	if h == nil {
		outcome = "failed"
		op.logger.Debug("failed", "err", op.Err())
	} else {
		op.logger.Debug("finished", "name", h.Name, "size", h.Size)
	}
	op.cancel()
	op.end(outcome)
}

func (op *Operation) end(outcome string) {
	op.doneOnce.Do(func() {
		observability.Acquire().OnAcquireComplete(context.Background(), op.id, op.req.Font.Key(), outcome, time.Since(op.started))
		close(op.done)
	})
}

func (op *Operation) setFetch(r task.Request) {
	if r == nil {
		return
	}
	r = &onceRequest{req: r}
	op.mu.Lock()
	op.fetchReq = r
	op.mu.Unlock()
	if op.cancelled() {
		r.Cancel()
	}
}

func (op *Operation) setDownload(r task.Request) {
	if r == nil {
		return
	}
	r = &onceRequest{req: r}
	op.mu.Lock()
	op.downloadReq = r
	op.mu.Unlock()
	if op.cancelled() {
		r.Cancel()
	}
}

func (op *Operation) setErr(err error) {
	op.mu.Lock()
	op.err = err
	op.mu.Unlock()
}

func (op *Operation) cancelled() bool {
	return op.state.Load() == int32(StateCancelled)
}

func (op *Operation) stage(name string) {
	observability.Acquire().OnAcquireStage(op.ctx, op.id, op.req.Font.Key(), name)
}

// onceRequest forwards at most one Cancel to the collaborator.
type onceRequest struct {
	req  task.Request
	once sync.Once
}

func (r *onceRequest) Cancel() {
	r.once.Do(r.req.Cancel)
}
