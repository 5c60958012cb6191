// Package font defines the value types shared by every acquisition stage:
// the requested [Font], the catalog [FamilyDictionary] and the instantiated
// [Handle].
package font

import (
	"fmt"
	"strconv"
	"strings"

	xfont "golang.org/x/image/font"

	"github.com/matzehuels/fontfetch/pkg/errors"
)

// Weight is a CSS numeric font weight (100-900).
type Weight int

// Common weights.
const (
	Thin     Weight = 100
	Light    Weight = 300
	Regular  Weight = 400
	Medium   Weight = 500
	SemiBold Weight = 600
	Bold     Weight = 700
	Black    Weight = 900
)

// Font identifies a requested font family and style. Two Fonts are the same
// request iff they compare equal with ==.
type Font struct {
	Family string
	Weight Weight
	Italic bool
}

// New returns a Font with a trimmed family name and a normalised weight.
func New(family string, weight Weight, italic bool) Font {
	if weight == 0 {
		weight = Regular
	}
	return Font{Family: strings.TrimSpace(family), Weight: weight, Italic: italic}
}

// Validate rejects fonts that cannot be used as cache keys or storage paths.
func (f Font) Validate() error {
	if err := errors.ValidateFamily(f.Family); err != nil {
		return err
	}
	return errors.ValidateWeight(int(f.Weight))
}

// Style returns "italic" or "normal".
func (f Font) Style() string {
	if f.Italic {
		return "italic"
	}
	return "normal"
}

// Key is the canonical identity used by every cache: family:weight:style.
func (f Font) Key() string {
	return f.Family + ":" + strconv.Itoa(int(f.weight())) + ":" + f.Style()
}

// Variant returns the catalog variant token for this style, e.g. "regular",
// "italic", "700" or "700italic".
func (f Font) Variant() string {
	w := f.weight()
	switch {
	case w == Regular && f.Italic:
		return "italic"
	case w == Regular:
		return "regular"
	case f.Italic:
		return strconv.Itoa(int(w)) + "italic"
	default:
		return strconv.Itoa(int(w))
	}
}

func (f Font) String() string {
	return fmt.Sprintf("%s %d %s", f.Family, f.weight(), f.Style())
}

func (f Font) weight() Weight {
	if f.Weight == 0 {
		return Regular
	}
	return f.Weight
}

// ParseKey is the inverse of [Font.Key].
func ParseKey(key string) (Font, error) {
	i := strings.LastIndex(key, ":")
	if i < 0 {
		return Font{}, errors.New(errors.ErrCodeInvalidFont, "malformed font key %q", key)
	}
	rest, style := key[:i], key[i+1:]
	j := strings.LastIndex(rest, ":")
	if j < 0 {
		return Font{}, errors.New(errors.ErrCodeInvalidFont, "malformed font key %q", key)
	}
	w, err := strconv.Atoi(rest[j+1:])
	if err != nil {
		return Font{}, errors.Wrap(errors.ErrCodeInvalidFont, err, "malformed weight in font key %q", key)
	}
	if style != "normal" && style != "italic" {
		return Font{}, errors.New(errors.ErrCodeInvalidFont, "malformed style in font key %q", key)
	}
	return New(rest[:j], Weight(w), style == "italic"), nil
}

// ParseVariant converts a catalog variant token back into weight and italic.
func ParseVariant(v string) (Weight, bool, error) {
	switch v {
	case "regular":
		return Regular, false, nil
	case "italic":
		return Regular, true, nil
	}
	italic := strings.HasSuffix(v, "italic")
	w, err := strconv.Atoi(strings.TrimSuffix(v, "italic"))
	if err != nil {
		return 0, false, errors.Wrap(errors.ErrCodeInvalidFont, err, "unknown variant %q", v)
	}
	return Weight(w), italic, nil
}

// FamilyDictionary maps family name to variant token to file reference (an
// absolute URL or a path fragment relative to the catalog's file base).
// A nil dictionary means "absent".
type FamilyDictionary map[string]map[string]string

// Handle is an instantiated font: a runtime name bound to a sized face.
type Handle struct {
	Name string
	Size float64
	Face xfont.Face
}

// Close releases the face.
func (h *Handle) Close() error {
	if h == nil || h.Face == nil {
		return nil
	}
	return h.Face.Close()
}
