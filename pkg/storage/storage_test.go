package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/fontfetch/pkg/font"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New(\"\") should fail")
	}
}

func TestLayout(t *testing.T) {
	s := newTestStorage(t)

	tests := []struct {
		font font.Font
		want string
	}{
		{font.New("Inter", font.Regular, false), "fonts/inter/400-normal.ttf"},
		{font.New("Noto Sans Mono", font.Bold, true), "fonts/noto-sans-mono/700-italic.ttf"},
		{font.Font{Family: "Lato"}, "fonts/lato/400-normal.ttf"},
	}
	for _, tt := range tests {
		want := filepath.Join(s.Root(), filepath.FromSlash(tt.want))
		if got := s.Path(tt.font); got != want {
			t.Errorf("Path(%s) = %q, want %q", tt.font, got, want)
		}
	}
	if got, want := s.NameDictionaryPath(), filepath.Join(s.Root(), "names.json"); got != want {
		t.Errorf("NameDictionaryPath() = %q, want %q", got, want)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Inter":           "inter",
		"  Noto  Sans  ":  "noto-sans",
		"Source_Code.Pro": "source-code-pro",
		"a/b":             "ab",
		"Trailing-":       "trailing",
		"_-.":             "",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPutRejectsEmptySlug(t *testing.T) {
	s := newTestStorage(t)
	for _, family := range []string{"_", "-", "."} {
		f := font.New(family, font.Regular, false)
		if err := f.Validate(); err == nil {
			t.Errorf("Validate(%q) should fail", family)
		}
		if _, err := s.Put(context.Background(), f, strings.NewReader("data")); err == nil {
			t.Errorf("Put(%q) should fail", family)
		}
	}
	entries, err := os.ReadDir(filepath.Join(s.Root(), "fonts"))
	if err == nil && len(entries) > 0 {
		t.Errorf("fonts dir should be empty, got %d entries", len(entries))
	}
}

func TestPutReadRemove(t *testing.T) {
	s := newTestStorage(t)
	f := font.New("Inter", font.Bold, false)

	if s.FileExists(f) {
		t.Fatal("FileExists() before Put should be false")
	}
	if _, err := s.Read(f); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}

	entry, err := s.Put(context.Background(), f, strings.NewReader("font-bytes"))
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if entry.Size != int64(len("font-bytes")) {
		t.Errorf("Size = %d, want %d", entry.Size, len("font-bytes"))
	}
	if entry.Path != s.Path(f) {
		t.Errorf("Path = %q, want %q", entry.Path, s.Path(f))
	}
	if !s.FileExists(f) {
		t.Error("FileExists() after Put should be true")
	}

	data, err := s.Read(f)
	if err != nil || !bytes.Equal(data, []byte("font-bytes")) {
		t.Errorf("Read() = %q, %v", data, err)
	}

	files, size, err := s.Usage()
	if err != nil || files != 1 || size != entry.Size {
		t.Errorf("Usage() = %d, %d, %v", files, size, err)
	}

	if err := s.Remove(f); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if s.FileExists(f) {
		t.Error("FileExists() after Remove should be false")
	}
	if err := s.Remove(f); err != nil {
		t.Errorf("Remove() of missing font error: %v", err)
	}
}

type cancelAfterFirstRead struct {
	cancel context.CancelFunc
	done   bool
}

func (r *cancelAfterFirstRead) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	r.done = true
	r.cancel()
	return copy(p, "partial"), nil
}

func TestPutCancelledLeavesNothing(t *testing.T) {
	s := newTestStorage(t)
	f := font.New("Inter", font.Regular, false)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := s.Put(ctx, f, &cancelAfterFirstRead{cancel: cancel})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Put() error = %v, want context.Canceled", err)
	}
	if s.FileExists(f) {
		t.Error("cancelled Put should not leave the font behind")
	}
	entries, _ := os.ReadDir(filepath.Dir(s.Path(f)))
	if len(entries) != 0 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestUsageEmpty(t *testing.T) {
	files, size, err := newTestStorage(t).Usage()
	if err != nil || files != 0 || size != 0 {
		t.Errorf("Usage() = %d, %d, %v, want 0, 0, nil", files, size, err)
	}
}

func TestClear(t *testing.T) {
	s := newTestStorage(t)
	f := font.New("Inter", font.Regular, false)
	if _, err := s.Put(context.Background(), f, strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(s.NameDictionaryPath(), []byte("{}"), 0o644)

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if s.FileExists(f) {
		t.Error("font should be removed")
	}
	if _, err := os.Stat(s.NameDictionaryPath()); !os.IsNotExist(err) {
		t.Error("name dictionary should be removed")
	}
}
