// Package fonts provides the Go font family compiled into the binary.
//
// These faces are installed in the runtime table at startup so requests for
// them resolve without storage or network access, and they serve as real
// TrueType fixtures in tests.
package fonts

import (
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/fontfetch/pkg/font"
)

// Family names under which the builtin faces are requested.
const (
	GoFamily     = "Go"
	GoMonoFamily = "Go Mono"
)

// Builtin is an embedded TrueType font and the request it answers.
type Builtin struct {
	Font font.Font
	TTF  []byte
}

// All returns every builtin face.
func All() []Builtin {
	return []Builtin{
		{font.New(GoFamily, font.Regular, false), goregular.TTF},
		{font.New(GoFamily, font.Regular, true), goitalic.TTF},
		{font.New(GoFamily, font.Medium, false), gomedium.TTF},
		{font.New(GoFamily, font.Medium, true), gomediumitalic.TTF},
		{font.New(GoFamily, font.Bold, false), gobold.TTF},
		{font.New(GoFamily, font.Bold, true), gobolditalic.TTF},
		{font.New(GoMonoFamily, font.Regular, false), gomono.TTF},
		{font.New(GoMonoFamily, font.Regular, true), gomonoitalic.TTF},
		{font.New(GoMonoFamily, font.Bold, false), gomonobold.TTF},
		{font.New(GoMonoFamily, font.Bold, true), gomonobolditalic.TTF},
	}
}

// Lookup returns the embedded data for f, if f is a builtin face.
func Lookup(f font.Font) ([]byte, bool) {
	for _, b := range All() {
		if b.Font == f {
			return b.TTF, true
		}
	}
	return nil, false
}

// Regular returns Go Regular, the face used when nothing else is available.
func Regular() []byte {
	return goregular.TTF
}
