package layout

import (
	"github.com/gogpu/mathspan/fonts"
	"github.com/gogpu/mathspan/syntax"
)

// Frame is a finished piece of layout: a box of fixed size holding positioned
// items. Positions are relative to the frame's top-left corner.
type Frame struct {
	Size     Size
	Baseline float64
	Items    []Positioned
}

// Positioned is an item at a position within a frame.
type Positioned struct {
	Pos  Point
	Item Item
}

// Item is one of *Group, *TextItem, *Shape or *AlignMark.
type Item interface {
	item()
}

// NewFrame returns an empty frame of the given size with its baseline at the
// bottom edge.
func NewFrame(size Size) *Frame {
	return &Frame{Size: size, Baseline: size.H}
}

// Width returns the frame width.
func (f *Frame) Width() float64 { return f.Size.W }

// Height returns the frame height.
func (f *Frame) Height() float64 { return f.Size.H }

// Ascent is the distance from the top edge to the baseline.
func (f *Frame) Ascent() float64 { return f.Baseline }

// Descent is the distance from the baseline to the bottom edge.
func (f *Frame) Descent() float64 { return f.Size.H - f.Baseline }

// Push adds item at pos.
func (f *Frame) Push(pos Point, item Item) {
	f.Items = append(f.Items, Positioned{Pos: pos, Item: item})
}

// PushFrame inlines the items of sub, offset by pos.
func (f *Frame) PushFrame(pos Point, sub *Frame) {
	for _, p := range sub.Items {
		f.Items = append(f.Items, Positioned{Pos: pos.Add(p.Pos), Item: p.Item})
	}
}

// PushGroup adds sub as a nested group at pos.
func (f *Frame) PushGroup(pos Point, sub *Frame) {
	f.Push(pos, &Group{Frame: sub})
}

// Walk calls fn for every item in the frame tree with its absolute position.
// Groups are visited before their children.
func (f *Frame) Walk(fn func(pos Point, item Item)) {
	f.walk(Point{}, fn)
}

func (f *Frame) walk(offset Point, fn func(Point, Item)) {
	for _, p := range f.Items {
		pos := offset.Add(p.Pos)
		fn(pos, p.Item)
		if g, ok := p.Item.(*Group); ok {
			g.Frame.walk(pos, fn)
		}
	}
}

// Group is a nested frame.
type Group struct {
	Frame *Frame
}

// Glyph is a positioned glyph of a text run. Advances and offsets are in em
// units of the run's size.
type Glyph struct {
	ID       uint16
	XAdvance float64
	XOffset  float64
	YOffset  float64
	// Span is the syntax node the glyph was produced from and Offset the
	// byte offset of the glyph's characters within that node's text.
	Span   syntax.Span
	Offset int
}

// TextItem is a run of glyphs in one font. Its position is the left end of
// the baseline.
type TextItem struct {
	Font   *fonts.Font
	Size   float64
	Fill   Color
	Text   string
	Glyphs []Glyph
	// Ascender and Descender are the font's vertical metrics at Size, y
	// pointing up; Descender is negative.
	Ascender  float64
	Descender float64
}

// Width returns the advance width of the run.
func (t *TextItem) Width() float64 {
	w := 0.0
	for _, g := range t.Glyphs {
		w += g.XAdvance
	}
	return w * t.Size
}

// BBox returns the run's box relative to its position. The box spans the
// font's descender to its ascender, with corners taken from the y-up metrics
// and flipped, so Min.Y lies below Max.Y.
func (t *TextItem) BBox() Rect {
	return Rect{
		Min: Point{X: 0, Y: -t.Descender},
		Max: Point{X: t.Width(), Y: -t.Ascender},
	}
}

// Geometry is the outline of a shape.
type Geometry interface {
	// BBoxSize returns the extent of the geometry from its origin.
	BBoxSize() Size
}

// RectGeom is an axis-aligned rectangle with its top-left at the origin.
type RectGeom struct {
	Size Size
}

// BBoxSize implements Geometry.
func (g RectGeom) BBoxSize() Size { return g.Size }

// Shape is a filled geometry. A nil Fill leaves it unpainted.
type Shape struct {
	Geometry Geometry
	Fill     *Color
	Span     syntax.Span
}

// BBox returns the shape's box relative to its position.
func (s *Shape) BBox() Rect {
	sz := s.Geometry.BBoxSize()
	return Rect{Max: Point{X: sz.W, Y: sz.H}}
}

// AlignMark records an alignment point. It has no extent.
type AlignMark struct{}

func (*Group) item()     {}
func (*TextItem) item()  {}
func (*Shape) item()     {}
func (*AlignMark) item() {}
