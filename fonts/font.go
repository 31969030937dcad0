// Package fonts provides the font catalog used by math layout: the bundled Go
// font family, metric queries, run shaping and glyph outlines.
package fonts

import (
	"bytes"
	"errors"
	"fmt"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrGlyphNotFound is returned by Outline for glyph ids outside the font.
var ErrGlyphNotFound = errors.New("fonts: glyph not found")

// Style is the slant of a face.
type Style int

const (
	Normal Style = iota
	Italic
)

func (s Style) String() string {
	if s == Italic {
		return "italic"
	}
	return "normal"
}

// Variant identifies a face within a family.
type Variant struct {
	Style  Style
	Weight int
}

// Info describes a font in the catalog.
type Info struct {
	Family  string
	Variant Variant
}

// Metrics are the vertical metrics of a font in em units, y pointing up.
// Descender is negative.
type Metrics struct {
	Ascender   float64
	Descender  float64
	XHeight    float64
	CapHeight  float64
	AxisHeight float64
}

// Font is a parsed face. It is safe for concurrent use.
type Font struct {
	info    Info
	name    string
	sfnt    *sfnt.Font
	shaping *gotext.Font
	upem    float64
	metrics Metrics
}

// Parse parses TrueType or OpenType data into a Font described by info.
func Parse(data []byte, info Info) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fonts: failed to parse %s: %w", info.Family, err)
	}
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("fonts: failed to load %s for shaping: %w", info.Family, err)
	}

	out := &Font{
		info:    info,
		sfnt:    f,
		shaping: face.Font,
		upem:    float64(f.UnitsPerEm()),
	}
	if name, err := f.Name(nil, sfnt.NameIDFull); err == nil {
		out.name = name
	}

	// Query metrics at one pixel per font unit so results stay in font units.
	var buf sfnt.Buffer
	m, err := f.Metrics(&buf, fixed.Int26_6(out.upem*64), font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("fonts: failed to read metrics of %s: %w", info.Family, err)
	}
	out.metrics = Metrics{
		Ascender:  out.em(m.Ascent),
		Descender: -out.em(m.Descent),
		XHeight:   out.em(m.XHeight),
		CapHeight: out.em(m.CapHeight),
	}
	out.metrics.AxisHeight = out.metrics.XHeight / 2
	return out, nil
}

func (f *Font) em(v fixed.Int26_6) float64 {
	return float64(v) / 64 / f.upem
}

// Info returns the catalog entry of the font.
func (f *Font) Info() Info { return f.info }

// Name returns the full name recorded in the font, if any.
func (f *Font) Name() string { return f.name }

// UnitsPerEm returns the design grid size.
func (f *Font) UnitsPerEm() float64 { return f.upem }

// Metrics returns the vertical metrics in em units.
func (f *Font) Metrics() Metrics { return f.metrics }

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int { return f.sfnt.NumGlyphs() }

// GlyphIndex maps r to a glyph id. It reports false when the font has no
// glyph for r.
func (f *Font) GlyphIndex(r rune) (uint16, bool) {
	var buf sfnt.Buffer
	idx, err := f.sfnt.GlyphIndex(&buf, r)
	if err != nil || idx == 0 {
		return 0, false
	}
	return uint16(idx), true
}

// Has reports whether every rune of s has a glyph.
func (f *Font) Has(s string) bool {
	for _, r := range s {
		if _, ok := f.GlyphIndex(r); !ok {
			return false
		}
	}
	return true
}

// Advance returns the horizontal advance of gid in em units.
func (f *Font) Advance(gid uint16) float64 {
	var buf sfnt.Buffer
	adv, err := f.sfnt.GlyphAdvance(&buf, sfnt.GlyphIndex(gid), fixed.Int26_6(f.upem*64), font.HintingNone)
	if err != nil {
		return 0
	}
	return f.em(adv)
}

// Bounds returns the ink bounds of gid in em units, y pointing down.
func (f *Font) Bounds(gid uint16) (minX, minY, maxX, maxY float64, ok bool) {
	var buf sfnt.Buffer
	b, _, err := f.sfnt.GlyphBounds(&buf, sfnt.GlyphIndex(gid), fixed.Int26_6(f.upem*64), font.HintingNone)
	if err != nil {
		return 0, 0, 0, 0, false
	}
	return f.em(b.Min.X), f.em(b.Min.Y), f.em(b.Max.X), f.em(b.Max.Y), true
}
