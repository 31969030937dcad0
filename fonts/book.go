package fonts

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/mathspan/internal/logging"
)

// Book is an immutable set of fonts queried by family and variant.
type Book struct {
	fonts []*Font
}

// NewBook returns a book over fonts. Nil entries are skipped.
func NewBook(fonts ...*Font) *Book {
	b := &Book{}
	for _, f := range fonts {
		if f != nil {
			b.fonts = append(b.fonts, f)
		}
	}
	return b
}

// Fonts returns the fonts in catalog order.
func (b *Book) Fonts() []*Font { return b.fonts }

// Len returns the number of fonts.
func (b *Book) Len() int { return len(b.fonts) }

// Families returns the distinct family names, sorted.
func (b *Book) Families() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range b.fonts {
		if !seen[f.info.Family] {
			seen[f.info.Family] = true
			out = append(out, f.info.Family)
		}
	}
	sort.Strings(out)
	return out
}

// Select returns the face of family closest to v. A matching style is
// preferred over weight; among equally distant weights the lighter wins.
// Family names compare case-insensitively.
func (b *Book) Select(family string, v Variant) (*Font, bool) {
	var best *Font
	for _, f := range b.fonts {
		if !strings.EqualFold(f.info.Family, family) {
			continue
		}
		if best == nil || closer(f.info.Variant, best.info.Variant, v) {
			best = f
		}
	}
	return best, best != nil
}

// closer reports whether a is a better match for want than b.
func closer(a, b, want Variant) bool {
	if (a.Style == want.Style) != (b.Style == want.Style) {
		return a.Style == want.Style
	}
	da, db := distance(a.Weight, want.Weight), distance(b.Weight, want.Weight)
	if da != db {
		return da < db
	}
	return a.Weight < b.Weight
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// SelectFirst walks families in order and returns the first match.
func (b *Book) SelectFirst(families []string, v Variant) (*Font, bool) {
	for _, family := range families {
		if f, ok := b.Select(family, v); ok {
			return f, true
		}
	}
	return nil, false
}

type bundled struct {
	data []byte
	info Info
}

var bundledFonts = []bundled{
	{goregular.TTF, Info{"Go", Variant{Normal, 400}}},
	{goitalic.TTF, Info{"Go", Variant{Italic, 400}}},
	{gomedium.TTF, Info{"Go", Variant{Normal, 500}}},
	{gomediumitalic.TTF, Info{"Go", Variant{Italic, 500}}},
	{gobold.TTF, Info{"Go", Variant{Normal, 700}}},
	{gobolditalic.TTF, Info{"Go", Variant{Italic, 700}}},
	{gomono.TTF, Info{"Go Mono", Variant{Normal, 400}}},
}

// Default returns the catalog of bundled Go fonts. It is built on first use
// and shared afterwards.
var Default = sync.OnceValue(func() *Book {
	fonts := make([]*Font, 0, len(bundledFonts))
	for _, b := range bundledFonts {
		f, err := Parse(b.data, b.info)
		if err != nil {
			logging.Logger().Warn("fonts: skipping bundled font",
				"family", b.info.Family,
				"weight", b.info.Variant.Weight,
				"style", b.info.Variant.Style.String(),
				"error", err)
			continue
		}
		fonts = append(fonts, f)
	}
	logging.Logger().Debug("fonts: catalog ready", "fonts", len(fonts))
	return NewBook(fonts...)
})
