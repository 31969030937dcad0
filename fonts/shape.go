package fonts

import (
	"sync"
	"unicode/utf8"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// Glyph is a shaped glyph. Advances and offsets are in em units; Cluster is
// the byte offset in the shaped text of the first character it covers.
type Glyph struct {
	ID       uint16
	XAdvance float64
	XOffset  float64
	YOffset  float64
	Cluster  int
}

// HarfbuzzShaper keeps internal buffers and is not safe for concurrent use.
var shaperPool = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

// shapeSize is the size runs are shaped at. Output is divided back to ems.
const shapeSize = 1000

// Shape shapes text left to right as a single run.
func (f *Font) Shape(text string) []Glyph {
	if text == "" {
		return nil
	}
	runes := []rune(text)

	// byteOffset[i] is the byte offset of runes[i].
	byteOffset := make([]int, len(runes)+1)
	off := 0
	for i, r := range runes {
		byteOffset[i] = off
		off += utf8.RuneLen(r)
	}
	byteOffset[len(runes)] = off

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gotext.NewFace(f.shaping),
		Size:      fixed.I(shapeSize),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	shaperPool.Put(hb)

	glyphs := make([]Glyph, len(output.Glyphs))
	for i, g := range output.Glyphs {
		idx := g.TextIndex()
		if idx < 0 || idx > len(runes) {
			idx = 0
		}
		glyphs[i] = Glyph{
			ID:       uint16(g.GlyphID), //nolint:gosec // glyph ids of sfnt fonts fit in 16 bits
			XAdvance: fromShape(g.Advance),
			XOffset:  fromShape(g.XOffset),
			YOffset:  fromShape(g.YOffset),
			Cluster:  byteOffset[idx],
		}
	}
	return glyphs
}

func fromShape(v fixed.Int26_6) float64 {
	return float64(v) / 64 / shapeSize
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
