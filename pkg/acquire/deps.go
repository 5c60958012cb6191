package acquire

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fontfetch/pkg/errors"
	"github.com/matzehuels/fontfetch/pkg/font"
	"github.com/matzehuels/fontfetch/pkg/task"
)

// NameCache resolves a font to the name it was installed under.
type NameCache interface {
	Resolve(f font.Font) (string, bool)
}

// Storage reports whether a font file is on local disk.
type Storage interface {
	FileExists(f font.Font) bool
}

// Catalog is the remote font directory.
type Catalog interface {
	// Exist reports whether a directory is available without fetching.
	Exist() bool

	// Fetch retrieves the directory and calls done exactly once.
	Fetch(ctx context.Context, done func(font.FamilyDictionary, error)) task.Request

	// File returns the download URL for f in dir. A nil dir has no files.
	File(f font.Font, dir font.FamilyDictionary) (string, bool)
}

// Downloader fetches a font file into storage and calls done exactly once.
type Downloader interface {
	Download(ctx context.Context, f font.Font, url string, done func(path string, err error)) task.Request
}

// Registrar installs a stored font into the runtime table.
type Registrar interface {
	Register(f font.Font)
}

// Runtime instantiates installed fonts.
type Runtime interface {
	Instantiate(name string, size float64) (*font.Handle, bool)
}

// Deps are the collaborators of every operation. All but Logger are required.
type Deps struct {
	Names      NameCache
	Storage    Storage
	Catalog    Catalog
	Downloader Downloader
	Registrar  Registrar
	Runtime    Runtime
	Logger     *log.Logger
}

func (d *Deps) validate() error {
	switch {
	case d.Names == nil:
		return errors.New(errors.ErrCodeInvalidConfig, "acquire: name cache is required")
	case d.Storage == nil:
		return errors.New(errors.ErrCodeInvalidConfig, "acquire: storage is required")
	case d.Catalog == nil:
		return errors.New(errors.ErrCodeInvalidConfig, "acquire: catalog is required")
	case d.Downloader == nil:
		return errors.New(errors.ErrCodeInvalidConfig, "acquire: downloader is required")
	case d.Registrar == nil:
		return errors.New(errors.ErrCodeInvalidConfig, "acquire: registrar is required")
	case d.Runtime == nil:
		return errors.New(errors.ErrCodeInvalidConfig, "acquire: runtime is required")
	}
	if d.Logger == nil {
		d.Logger = log.Default()
	}
	return nil
}
