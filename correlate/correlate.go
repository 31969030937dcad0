// Package correlate maps subexpressions of a math source to the regions they
// occupy in its rendered frame.
//
// Three passes feed the result. ExtractSpans lists the source ranges of the
// syntax tree's nodes, CollectFragments lists the ranges and boxes of the
// frame's glyph runs and shapes, and Correlate merges for every node all
// fragments whose range lies inside the node's range.
package correlate

import (
	"math"

	"github.com/gogpu/mathspan/layout"
	"github.com/gogpu/mathspan/syntax"
)

// Resolver maps spans to byte ranges of the source. It reports false for
// spans without a position, such as detached ones.
type Resolver interface {
	Range(span syntax.Span) (syntax.Range, bool)
}

// BoundingBox is an axis-aligned box in points with X0 <= X1 and Y0 <= Y1,
// y pointing down.
type BoundingBox struct {
	X0, Y0, X1, Y1 float64
}

// Merge returns the smallest box containing b and o.
func (b BoundingBox) Merge(o BoundingBox) BoundingBox {
	return BoundingBox{
		X0: math.Min(b.X0, o.X0),
		Y0: math.Min(b.Y0, o.Y0),
		X1: math.Max(b.X1, o.X1),
		Y1: math.Max(b.Y1, o.Y1),
	}
}

// Width returns X1-X0.
func (b BoundingBox) Width() float64 { return b.X1 - b.X0 }

// Height returns Y1-Y0.
func (b BoundingBox) Height() float64 { return b.Y1 - b.Y0 }

// Normalize translates both corners of r by offset and orders them per axis.
// Coordinates are never negative zero.
func Normalize(r layout.Rect, offset layout.Point) BoundingBox {
	r = r.Translate(offset)
	a, b := r.Min, r.Max
	return BoundingBox{
		X0: math.Min(a.X, b.X) + 0,
		Y0: math.Min(a.Y, b.Y) + 0,
		X1: math.Max(a.X, b.X) + 0,
		Y1: math.Max(a.Y, b.Y) + 0,
	}
}

// Record is one subexpression with the box of everything it rendered.
type Record struct {
	Text        string  `json:"text"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	SourceStart int     `json:"source_start"`
	SourceEnd   int     `json:"source_end"`
	// GlyphLines counts the fragments merged into the record.
	GlyphLines int `json:"glyph_lines"`
}

// Correlate builds one record per entry, in entry order, from the fragments
// whose range the entry's range contains. Entries without fragments are
// dropped.
func Correlate(entries []SpanEntry, frags []Fragment) []Record {
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		var (
			box   BoundingBox
			count int
		)
		for _, f := range frags {
			if !e.Range.Contains(f.Range) {
				continue
			}
			if count == 0 {
				box = f.Box
			} else {
				box = box.Merge(f.Box)
			}
			count++
		}
		if count == 0 {
			continue
		}
		records = append(records, Record{
			Text:        e.Text,
			X:           box.X0,
			Y:           box.Y0,
			Width:       box.Width(),
			Height:      box.Height(),
			SourceStart: e.Range.Start,
			SourceEnd:   e.Range.End,
			GlyphLines:  count,
		})
	}
	return records
}

// Subexpressions runs all passes over a numbered math tree and its frame.
func Subexpressions(root syntax.Node, src string, frame *layout.Frame, r Resolver) []Record {
	return Correlate(ExtractSpans(root, src, r), CollectFragments(frame, layout.Point{}, r))
}
