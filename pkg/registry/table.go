package registry

import (
	"slices"
	"sync"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/matzehuels/fontfetch/pkg/errors"
	"github.com/matzehuels/fontfetch/pkg/font"
)

// Table is the in-process runtime font table: parsed fonts by runtime name.
// It is safe for concurrent use.
type Table struct {
	dpi     float64
	hinting xfont.Hinting

	mu    sync.RWMutex
	fonts map[string]*opentype.Font
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithDPI sets the resolution faces are instantiated at. The default is 72,
// so sizes are in pixels as well as points.
func WithDPI(dpi float64) TableOption {
	return func(t *Table) {
		if dpi > 0 {
			t.dpi = dpi
		}
	}
}

// WithHinting sets the glyph hinting for instantiated faces.
func WithHinting(h xfont.Hinting) TableOption {
	return func(t *Table) { t.hinting = h }
}

// NewTable returns an empty table.
func NewTable(opts ...TableOption) *Table {
	t := &Table{dpi: 72, fonts: make(map[string]*opentype.Font)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Install parses data and makes it available under name. Installing an
// existing name replaces it.
func (t *Table) Install(name string, data []byte) error {
	if name == "" {
		return errors.New(errors.ErrCodeInvalidInput, "runtime font name cannot be empty")
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFont, err, "parse font %s", name)
	}
	t.mu.Lock()
	t.fonts[name] = f
	t.mu.Unlock()
	return nil
}

// Has reports whether name is installed.
func (t *Table) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.fonts[name]
	return ok
}

// Instantiate returns a face for name at size. It fails when name is not
// installed or size is not positive.
func (t *Table) Instantiate(name string, size float64) (*font.Handle, bool) {
	if size <= 0 {
		return nil, false
	}
	t.mu.RLock()
	f, ok := t.fonts[name]
	t.mu.RUnlock()
	if !ok {
		return nil, false
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     t.dpi,
		Hinting: t.hinting,
	})
	if err != nil {
		return nil, false
	}
	return &font.Handle{Name: name, Size: size, Face: face}, true
}

// Names returns the installed runtime names, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	names := make([]string, 0, len(t.fonts))
	for name := range t.fonts {
		names = append(names, name)
	}
	t.mu.RUnlock()
	slices.Sort(names)
	return names
}
