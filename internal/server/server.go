// Package server exposes font acquisition over HTTP.
//
// Routes:
//
//	GET /healthz               liveness and build version
//	GET /stats                 acquisition counters
//	GET /names                 the name cache
//	GET /catalog               families known to the local catalog copy
//	GET /fonts/{family}        acquire and stream a font file
//
// /fonts takes weight (100..900), italic (bool), size (points) and url
// (fallback download URL) query parameters. A client that disconnects cancels its acquisition.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/fontfetch/pkg/acquire"
	"github.com/matzehuels/fontfetch/pkg/buildinfo"
	ferrors "github.com/matzehuels/fontfetch/pkg/errors"
	"github.com/matzehuels/fontfetch/pkg/font"
	"github.com/matzehuels/fontfetch/pkg/namecache"
	"github.com/matzehuels/fontfetch/pkg/observability"
)

// Fonts acquires fonts and reads their files. engine.Engine implements it.
type Fonts interface {
	Acquire(ctx context.Context, req acquire.Request) (*font.Handle, error)
	Data(f font.Font) ([]byte, error)
}

// Names lists recorded runtime names.
type Names interface {
	Entries() []namecache.Entry
}

// Catalog lists known families.
type Catalog interface {
	Families() []string
}

// Options configures a Server. Fonts is required.
type Options struct {
	Fonts   Fonts
	Names   Names
	Catalog Catalog
	Stats   *observability.Stats
	Logger  *log.Logger

	// AcquireTimeout bounds a single /fonts request. Zero means no bound
	// beyond the client's own connection.
	AcquireTimeout time.Duration
}

// Server is an http.Handler.
type Server struct {
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New builds the router.
func New(opts Options) *Server {
	s := &Server{opts: opts, logger: opts.Logger}
	if s.logger == nil {
		s.logger = log.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Get("/names", s.handleNames)
	r.Get("/catalog", s.handleCatalog)
	r.Get("/fonts/{family}", s.handleFont)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.opts.Stats == nil {
		writeJSON(w, http.StatusOK, observability.StatsSnapshot{})
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Stats.Snapshot())
}

func (s *Server) handleNames(w http.ResponseWriter, r *http.Request) {
	entries := []namecache.Entry{}
	if s.opts.Names != nil {
		entries = append(entries, s.opts.Names.Entries()...)
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	families := []string{}
	if s.opts.Catalog != nil {
		families = append(families, s.opts.Catalog.Families()...)
	}
	writeJSON(w, http.StatusOK, map[string]any{"families": families, "count": len(families)})
}

func (s *Server) handleFont(w http.ResponseWriter, r *http.Request) {
	req, err := parseFontRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if s.opts.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.AcquireTimeout)
		defer cancel()
	}

	h, err := s.opts.Fonts.Acquire(ctx, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer h.Close()

	data, err := s.opts.Fonts.Data(req.Font)
	if err != nil {
		s.writeError(w, r, ferrors.Wrap(ferrors.ErrCodeNotFound, err, "font file for %s", req.Font))
		return
	}

	w.Header().Set("Content-Type", "font/ttf")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Font-Name", h.Name)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func parseFontRequest(r *http.Request) (acquire.Request, error) {
	q := r.URL.Query()

	var weight int
	if v := q.Get("weight"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return acquire.Request{}, ferrors.New(ferrors.ErrCodeInvalidInput, "weight %q is not a number", v)
		}
		weight = n
	}
	var italic bool
	if v := q.Get("italic"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return acquire.Request{}, ferrors.New(ferrors.ErrCodeInvalidInput, "italic %q is not a boolean", v)
		}
		italic = b
	}
	size := 12.0
	if v := q.Get("size"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return acquire.Request{}, ferrors.New(ferrors.ErrCodeInvalidInput, "size %q must be a positive number", v)
		}
		size = f
	}
	fallback := q.Get("url")
	if fallback != "" {
		if err := ferrors.ValidateURL(fallback); err != nil {
			return acquire.Request{}, err
		}
	}

	f := font.New(chi.URLParam(r, "family"), font.Weight(weight), italic)
	if err := f.Validate(); err != nil {
		return acquire.Request{}, err
	}
	return acquire.Request{Font: f, Size: size, FallbackURL: fallback}, nil
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusClientClosed is logged when the client went away mid-acquisition.
const statusClientClosed = 499

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := ferrors.HTTPStatus(err)
	switch {
	case errors.Is(err, context.Canceled):
		status = statusClientClosed
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status >= 500 && status != http.StatusGatewayTimeout {
		s.logger.Warn("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: ferrors.UserMessage(err), Code: string(ferrors.GetCode(err))})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"req_id", middleware.GetReqID(r.Context()))
	})
}
