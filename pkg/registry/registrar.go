// Package registry installs acquired fonts into the runtime font table and
// records the name each one was installed under.
package registry

import (
	"bytes"

	"github.com/charmbracelet/log"
	"seehuhn.de/go/sfnt"

	"github.com/matzehuels/fontfetch/pkg/errors"
	"github.com/matzehuels/fontfetch/pkg/font"
	"github.com/matzehuels/fontfetch/pkg/fonts"
)

// Reader returns stored font data.
type Reader interface {
	Read(f font.Font) ([]byte, error)
}

// Names is the font name dictionary.
type Names interface {
	Resolve(f font.Font) (string, bool)
	Record(f font.Font, name string) bool
}

// Registrar installs fonts from storage into a Table.
type Registrar struct {
	store  Reader
	names  Names
	table  *Table
	logger *log.Logger
}

// NewRegistrar returns a Registrar. A nil logger means log.Default().
func NewRegistrar(store Reader, names Names, table *Table, logger *log.Logger) *Registrar {
	if logger == nil {
		logger = log.Default()
	}
	return &Registrar{store: store, names: names, table: table, logger: logger}
}

// Register installs the stored file for f and records its runtime name.
// Failures are logged; callers learn the outcome by resolving the name.
func (r *Registrar) Register(f font.Font) {
	data, err := r.store.Read(f)
	if err != nil {
		r.logger.Warn("register: font not readable", "font", f.Key(), "err", err)
		return
	}
	name, err := r.Install(f, data)
	if err != nil {
		r.logger.Warn("register: font not installed", "font", f.Key(), "err", err)
		return
	}
	r.logger.Debug("registered font", "font", f.Key(), "name", name)
}

// Install adds data to the table under its PostScript name and records that
// name for f.
func (r *Registrar) Install(f font.Font, data []byte) (string, error) {
	name, err := PostScriptName(data)
	if err != nil || name == "" {
		name = fallbackName(f)
	}
	if err := r.table.Install(name, data); err != nil {
		return "", err
	}
	if prev, ok := r.names.Resolve(f); !ok || prev != name {
		r.names.Record(f, name)
	}
	return name, nil
}

// InstallBuiltins installs the embedded Go fonts.
func (r *Registrar) InstallBuiltins() error {
	for _, b := range fonts.All() {
		if _, err := r.Install(b.Font, b.TTF); err != nil {
			return err
		}
	}
	return nil
}

// Info is what the font file says about itself.
type Info struct {
	PostScriptName string
	Family         string
	Italic         bool
}

// Inspect reads the naming information of a TrueType or OpenType font.
func Inspect(data []byte) (*Info, error) {
	f, err := sfnt.Read(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFont, err, "read font")
	}
	return &Info{
		PostScriptName: f.PostScriptName(),
		Family:         f.FamilyName,
		Italic:         f.IsItalic,
	}, nil
}

// PostScriptName returns the font's PostScript name.
func PostScriptName(data []byte) (string, error) {
	info, err := Inspect(data)
	if err != nil {
		return "", err
	}
	return info.PostScriptName, nil
}

func fallbackName(f font.Font) string {
	return f.Family + "-" + f.Variant()
}
