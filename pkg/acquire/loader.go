// Package acquire orchestrates font acquisition.
//
// A [Loader] turns a [Request] into an [Operation] running on its own
// goroutine and hands back a [Handle]. The operation walks, in order:
//
//  1. installed: the name cache knows the font and the runtime can
//     instantiate it
//  2. stored: the font file is in local storage and only needs registering
//  3. catalog: the directory is fetched if not already available, a file URL
//     is chosen (or the fallback URL), downloaded, stored and registered
//
// The completion is called exactly once with the instantiated font or nil,
// unless the handle is cancelled first, in which case it is never called.
package acquire

import (
	"context"

	"github.com/matzehuels/fontfetch/pkg/errors"
	"github.com/matzehuels/fontfetch/pkg/font"
)

// Loader creates and schedules operations over a fixed set of collaborators.
type Loader struct {
	deps Deps
}

// NewLoader checks deps and returns a Loader.
func NewLoader(deps Deps) (*Loader, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Loader{deps: deps}, nil
}

// Load starts acquiring req on a new goroutine and returns its handle.
func (l *Loader) Load(req Request, completion Completion) *Handle {
	op := NewOperation(l.deps, req, completion)
	go op.Start()
	return &Handle{op: op}
}

// Fetch acquires req and waits for the result. Cancelling ctx cancels the
// operation.
func (l *Loader) Fetch(ctx context.Context, req Request) (*font.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := make(chan *font.Handle, 1)
	h := l.Load(req, func(fh *font.Handle) { result <- fh })
	stop := context.AfterFunc(ctx, h.Cancel)
	defer stop()

	select {
	case fh := <-result:
		return h.result(fh)
	case <-h.Done():
		select {
		case fh := <-result:
			return h.result(fh)
		default:
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, context.Canceled
	}
}

// Handle is the caller's token for an operation in flight.
type Handle struct {
	op *Operation
}

// Cancel stops the operation; its completion will not be called.
func (h *Handle) Cancel() { h.op.Cancel() }

// Done is closed when the operation has reached a terminal state.
func (h *Handle) Done() <-chan struct{} { return h.op.Done() }

// ID identifies the operation in logs.
func (h *Handle) ID() string { return h.op.ID() }

// Err explains a nil completion.
func (h *Handle) Err() error { return h.op.Err() }

// State returns the operation state.
func (h *Handle) State() State { return h.op.State() }

func (h *Handle) result(fh *font.Handle) (*font.Handle, error) {
	if fh != nil {
		return fh, nil
	}
	if err := h.Err(); err != nil {
		return nil, err
	}
	return nil, errors.New(errors.ErrCodeInternal, "font not acquired")
}
