package fonts

import (
	"fmt"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Point is an outline point in em units, y pointing down.
type Point struct {
	X, Y float64
}

// SegmentOp is the kind of an outline segment.
type SegmentOp uint8

const (
	MoveTo SegmentOp = iota
	LineTo
	QuadTo
	CubicTo
)

func (op SegmentOp) String() string {
	switch op {
	case MoveTo:
		return "MoveTo"
	case LineTo:
		return "LineTo"
	case QuadTo:
		return "QuadTo"
	case CubicTo:
		return "CubicTo"
	default:
		return "Unknown"
	}
}

// Segment is one path command of a glyph outline.
//   - MoveTo, LineTo: Points[0] is the target
//   - QuadTo: Points[0] is the control, Points[1] the target
//   - CubicTo: Points[0] and Points[1] are controls, Points[2] the target
type Segment struct {
	Op     SegmentOp
	Points [3]Point
}

// Outline returns the contours of gid in em units. Glyphs without ink, such
// as spaces, return no segments.
func (f *Font) Outline(gid uint16) ([]Segment, error) {
	if int(gid) >= f.NumGlyphs() {
		return nil, fmt.Errorf("%w: %d", ErrGlyphNotFound, gid)
	}
	var buf sfnt.Buffer
	segs, err := f.sfnt.LoadGlyph(&buf, sfnt.GlyphIndex(gid), fixed.Int26_6(f.upem*64), nil)
	if err != nil {
		return nil, fmt.Errorf("fonts: loading glyph %d: %w", gid, err)
	}

	out := make([]Segment, 0, len(segs))
	for _, seg := range segs {
		var s Segment
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			s.Op = MoveTo
			s.Points[0] = f.point(seg.Args[0])
		case sfnt.SegmentOpLineTo:
			s.Op = LineTo
			s.Points[0] = f.point(seg.Args[0])
		case sfnt.SegmentOpQuadTo:
			s.Op = QuadTo
			s.Points[0] = f.point(seg.Args[0])
			s.Points[1] = f.point(seg.Args[1])
		case sfnt.SegmentOpCubeTo:
			s.Op = CubicTo
			s.Points[0] = f.point(seg.Args[0])
			s.Points[1] = f.point(seg.Args[1])
			s.Points[2] = f.point(seg.Args[2])
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *Font) point(p fixed.Point26_6) Point {
	return Point{X: f.em(p.X), Y: f.em(p.Y)}
}

// PointCount returns how many entries of Points op uses.
func (op SegmentOp) PointCount() int {
	switch op {
	case QuadTo:
		return 2
	case CubicTo:
		return 3
	default:
		return 1
	}
}
