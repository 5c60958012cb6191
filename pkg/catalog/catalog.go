// Package catalog answers "where can this font be downloaded from" using a
// remote font directory.
//
// A [Source] keeps the most recent directory in memory, backed by the
// response cache of the directory client, and resolves a font to a file URL
// within a given directory.
package catalog

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fontfetch/pkg/font"
	"github.com/matzehuels/fontfetch/pkg/integrations"
	"github.com/matzehuels/fontfetch/pkg/task"
)

// Directory fetches a font directory. It is implemented by
// googlefonts.Client.
type Directory interface {
	FetchDirectory(ctx context.Context, refresh bool) (font.FamilyDictionary, error)
	CachedDirectory(ctx context.Context) (font.FamilyDictionary, bool)
}

// Source is the catalog metadata source used by font acquisition.
type Source struct {
	client   Directory
	fileBase string
	logger   *log.Logger

	mu  sync.RWMutex
	dir font.FamilyDictionary
}

// Option configures a Source.
type Option func(*Source)

// WithFileBase sets the URL that relative file references resolve against.
func WithFileBase(base string) Option {
	return func(s *Source) { s.fileBase = base }
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Source reading from client.
func New(client Directory, opts ...Option) *Source {
	s := &Source{client: client, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Exist reports whether a directory is available without a network fetch,
// either in memory or in the response cache.
func (s *Source) Exist() bool {
	_, ok := s.Directory()
	return ok
}

// Directory returns the locally available directory.
func (s *Source) Directory() (font.FamilyDictionary, bool) {
	s.mu.RLock()
	dir := s.dir
	s.mu.RUnlock()
	if dir != nil {
		return dir, true
	}

	dir, ok := s.client.CachedDirectory(context.Background())
	if !ok {
		return nil, false
	}
	s.store(dir)
	return dir, true
}

// Fetch downloads the directory in the background and calls done exactly once
// with the result. Cancelling the returned request aborts the HTTP call; done
// then receives the context error.
func (s *Source) Fetch(ctx context.Context, done func(font.FamilyDictionary, error)) task.Request {
	return task.Start(ctx, func(ctx context.Context) {
		dir, err := s.Refresh(ctx)
		done(dir, err)
	})
}

// Refresh fetches the directory synchronously, bypassing the response cache.
func (s *Source) Refresh(ctx context.Context) (font.FamilyDictionary, error) {
	dir, err := s.client.FetchDirectory(ctx, true)
	if err != nil {
		s.logger.Debug("catalog fetch failed", "err", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.store(dir)
	s.logger.Debug("fetched catalog", "families", len(dir))
	return dir, nil
}

// File returns the download URL for f within dir. A nil dir, an unknown
// family or a missing variant yield no candidate.
func (s *Source) File(f font.Font, dir font.FamilyDictionary) (string, bool) {
	if dir == nil {
		return "", false
	}
	variants, ok := dir[f.Family]
	if !ok {
		for family, v := range dir {
			if strings.EqualFold(family, f.Family) {
				variants, ok = v, true
				break
			}
		}
	}
	if !ok {
		return "", false
	}
	ref, ok := variants[f.Variant()]
	if !ok || ref == "" {
		return "", false
	}
	u, err := integrations.ResolveReference(s.fileBase, ref)
	if err != nil {
		s.logger.Warn("bad file reference in catalog", "font", f.Key(), "ref", ref, "err", err)
		return "", false
	}
	return u, true
}

// Families returns the family names of the local directory, sorted.
func (s *Source) Families() []string {
	dir, ok := s.Directory()
	if !ok {
		return nil
	}
	names := make([]string, 0, len(dir))
	for name := range dir {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Variants returns the variant tokens available for family, sorted.
func (s *Source) Variants(family string) []string {
	dir, ok := s.Directory()
	if !ok {
		return nil
	}
	v := dir[family]
	out := make([]string, 0, len(v))
	for token := range v {
		out = append(out, token)
	}
	slices.Sort(out)
	return out
}

func (s *Source) store(dir font.FamilyDictionary) {
	s.mu.Lock()
	s.dir = dir
	s.mu.Unlock()
}
