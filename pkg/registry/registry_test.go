package registry

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/fontfetch/pkg/font"
	"github.com/matzehuels/fontfetch/pkg/fonts"
	"github.com/matzehuels/fontfetch/pkg/namecache"
	"github.com/matzehuels/fontfetch/pkg/storage"
)

func TestInspectGoRegular(t *testing.T) {
	info, err := Inspect(goregular.TTF)
	if err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}
	if info.PostScriptName == "" {
		t.Error("PostScriptName should not be empty")
	}
	if !strings.HasPrefix(info.Family, "Go") {
		t.Errorf("Family = %q, want a Go font family", info.Family)
	}
	if info.Italic {
		t.Error("Go Regular is not italic")
	}
}

func TestInspectGarbage(t *testing.T) {
	if _, err := Inspect([]byte("not a font")); err == nil {
		t.Error("Inspect() should reject garbage")
	}
}

func TestTableInstallInstantiate(t *testing.T) {
	table := NewTable()

	if err := table.Install("GoRegular", goregular.TTF); err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if !table.Has("GoRegular") {
		t.Error("Has() after Install should be true")
	}

	h, ok := table.Instantiate("GoRegular", 16)
	if !ok {
		t.Fatal("Instantiate() failed")
	}
	defer h.Close()
	if h.Name != "GoRegular" || h.Size != 16 {
		t.Errorf("handle = %q@%v", h.Name, h.Size)
	}
	if m := h.Face.Metrics(); m.Ascent <= 0 {
		t.Errorf("Ascent = %v, want > 0", m.Ascent)
	}

	if _, ok := table.Instantiate("Missing", 16); ok {
		t.Error("Instantiate() of unknown name should fail")
	}
	if _, ok := table.Instantiate("GoRegular", 0); ok {
		t.Error("Instantiate() with size 0 should fail")
	}
}

func TestTableInstallRejects(t *testing.T) {
	table := NewTable()
	if err := table.Install("", goregular.TTF); err == nil {
		t.Error("Install() with empty name should fail")
	}
	if err := table.Install("Bad", []byte("nope")); err == nil {
		t.Error("Install() with garbage should fail")
	}
	if len(table.Names()) != 0 {
		t.Errorf("Names() = %v, want empty", table.Names())
	}
}

func TestTableDPIScalesFace(t *testing.T) {
	lo := NewTable()
	hi := NewTable(WithDPI(144))
	lo.Install("GoRegular", goregular.TTF)
	hi.Install("GoRegular", goregular.TTF)

	a, _ := lo.Instantiate("GoRegular", 12)
	b, _ := hi.Instantiate("GoRegular", 12)
	if b.Face.Metrics().Height <= a.Face.Metrics().Height {
		t.Errorf("144 DPI height %v should exceed 72 DPI height %v", b.Face.Metrics().Height, a.Face.Metrics().Height)
	}
}

func newRegistrar(t *testing.T) (*Registrar, *storage.Storage, *namecache.Cache, *Table) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	names := namecache.New(store.NameDictionaryPath())
	table := NewTable()
	return NewRegistrar(store, names, table, nil), store, names, table
}

func TestRegisterFromStorage(t *testing.T) {
	r, store, names, table := newRegistrar(t)
	f := font.New("Go", font.Bold, false)

	if _, err := store.Put(context.Background(), f, strings.NewReader(string(gobold.TTF))); err != nil {
		t.Fatal(err)
	}
	r.Register(f)

	want, _ := PostScriptName(gobold.TTF)
	name, ok := names.Resolve(f)
	if !ok || name != want {
		t.Fatalf("Resolve() = %q, %v, want %q", name, ok, want)
	}
	if !table.Has(name) {
		t.Error("registered font should be in the table")
	}

	// The name survives a restart through the dictionary file.
	if got, ok := namecache.New(filepath.Join(store.Root(), "names.json")).Resolve(f); !ok || got != want {
		t.Errorf("persisted name = %q, %v", got, ok)
	}
}

func TestRegisterMissingFontIsSilent(t *testing.T) {
	r, _, names, _ := newRegistrar(t)
	f := font.New("Inter", font.Regular, false)

	r.Register(f)
	if _, ok := names.Resolve(f); ok {
		t.Error("failed registration should not record a name")
	}
}

func TestRegisterCorruptFont(t *testing.T) {
	r, store, names, table := newRegistrar(t)
	f := font.New("Inter", font.Regular, false)
	store.Put(context.Background(), f, strings.NewReader("garbage"))

	r.Register(f)
	if _, ok := names.Resolve(f); ok {
		t.Error("corrupt font should not record a name")
	}
	if len(table.Names()) != 0 {
		t.Errorf("table = %v, want empty", table.Names())
	}
}

func TestInstallBuiltins(t *testing.T) {
	r, _, names, table := newRegistrar(t)
	if err := r.InstallBuiltins(); err != nil {
		t.Fatalf("InstallBuiltins() error: %v", err)
	}
	for _, b := range fonts.All() {
		name, ok := names.Resolve(b.Font)
		if !ok {
			t.Errorf("no name recorded for %s", b.Font)
			continue
		}
		if _, ok := table.Instantiate(name, 12); !ok {
			t.Errorf("cannot instantiate builtin %s as %q", b.Font, name)
		}
	}
}

type failingReader struct{}

func (failingReader) Read(font.Font) ([]byte, error) { return nil, errors.New("disk on fire") }

func TestRegisterReadError(t *testing.T) {
	names := namecache.New(filepath.Join(t.TempDir(), "names.json"))
	r := NewRegistrar(failingReader{}, names, NewTable(), nil)
	f := font.New("Inter", font.Regular, false)
	r.Register(f)
	if _, ok := names.Resolve(f); ok {
		t.Error("read error should not record a name")
	}
}
