// Package storage lays out acquired font files on local disk.
//
// Files live under <root>/fonts/<family-slug>/<weight>-<style>.ttf and the
// font name dictionary under <root>/names.json. Writes go to a temp file in
// the destination directory and are renamed into place, so a reader never
// sees a partial font.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/fontfetch/pkg/font"
)

const (
	fontsDir      = "fonts"
	nameDictFile  = "names.json"
	fontExtension = ".ttf"
)

// ErrNotFound is returned by Read when the font has not been stored.
var ErrNotFound = errors.New("font not stored")

// Entry describes a stored font file.
type Entry struct {
	Font    font.Font
	Path    string
	Size    int64
	ModTime time.Time
}

// Storage is a directory of acquired fonts. It is safe for concurrent use;
// writers of the same font are serialised.
type Storage struct {
	root string

	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

// New returns a Storage rooted at dir, creating it if needed.
func New(dir string) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("storage path required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage path: %w", err)
	}
	return &Storage{root: abs, locks: make(map[string]*entryLock)}, nil
}

// Root returns the storage root directory.
func (s *Storage) Root() string {
	return s.root
}

// Path returns where f is (or would be) stored.
func (s *Storage) Path(f font.Font) string {
	w := f.Weight
	if w == 0 {
		w = font.Regular
	}
	name := strconv.Itoa(int(w)) + "-" + f.Style() + fontExtension
	return filepath.Join(s.root, fontsDir, Slug(f.Family), name)
}

// NameDictionaryPath returns the location of the font name dictionary.
func (s *Storage) NameDictionaryPath() string {
	return filepath.Join(s.root, nameDictFile)
}

// FileExists reports whether f has been stored.
func (s *Storage) FileExists(f font.Font) bool {
	info, err := os.Stat(s.Path(f))
	return err == nil && !info.IsDir()
}

// Read returns the stored font data.
func (s *Storage) Read(f font.Font) ([]byte, error) {
	data, err := os.ReadFile(s.Path(f))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, f)
	}
	return data, err
}

// Put stores body as the file for f. The copy stops when ctx is done, in
// which case nothing is left at the destination.
func (s *Storage) Put(ctx context.Context, f font.Font, body io.Reader) (*Entry, error) {
	if Slug(f.Family) == "" {
		return nil, fmt.Errorf("font family %q has no storage name", f.Family)
	}
	unlock := s.lockEntry(f.Key())
	defer unlock()

	filePath := s.Path(f)
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, ".font-*")
	if err != nil {
		return nil, err
	}
	tmpName := tmp.Name()

	written, err := copyWithContext(ctx, tmp, body)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return nil, err
	}

	if err := os.Rename(tmpName, filePath); err != nil {
		os.Remove(tmpName)
		return nil, err
	}

	return &Entry{Font: f, Path: filePath, Size: written, ModTime: time.Now().UTC()}, nil
}

// Remove deletes the stored file for f. Removing a missing font is not an error.
func (s *Storage) Remove(f font.Font) error {
	unlock := s.lockEntry(f.Key())
	defer unlock()

	if err := os.Remove(s.Path(f)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Usage counts stored font files and their total size.
func (s *Storage) Usage() (files int, size int64, err error) {
	err = filepath.WalkDir(filepath.Join(s.root, fontsDir), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != fontExtension {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		size += info.Size()
		return nil
	})
	return files, size, err
}

// Clear removes every stored font and the name dictionary.
func (s *Storage) Clear() error {
	if err := os.RemoveAll(filepath.Join(s.root, fontsDir)); err != nil {
		return err
	}
	if err := os.Remove(s.NameDictionaryPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Slug turns a family name into a directory name: "Noto Sans" -> "noto-sans".
func Slug(family string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(family)) {
		switch {
		case r == ' ' || r == '_' || r == '-' || r == '.':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		case r == '/' || r == '\\' || r == ':':
		default:
			b.WriteRune(r)
			dash = false
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (s *Storage) lockEntry(key string) func() {
	s.mu.Lock()
	lock := s.locks[key]
	if lock == nil {
		lock = &entryLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var copied int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			w, wErr := dst.Write(buf[:n])
			copied += int64(w)
			if wErr != nil {
				return copied, wErr
			}
			if w < n {
				return copied, io.ErrShortWrite
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return copied, nil
			}
			return copied, err
		}
	}
}
