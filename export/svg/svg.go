// Package svg renders frames as SVG with glyphs converted to paths, so the
// output does not depend on fonts being installed where it is shown.
package svg

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/mathspan/export"
	"github.com/gogpu/mathspan/fonts"
	"github.com/gogpu/mathspan/internal/logging"
	"github.com/gogpu/mathspan/layout"
)

func init() {
	export.Register("svg", func() export.Exporter { return Exporter{} })
}

// Exporter is the registered SVG exporter.
type Exporter struct{}

// Export implements export.Exporter.
func (Exporter) Export(frame *layout.Frame) string { return Frame(frame) }

// MediaType implements export.Exporter.
func (Exporter) MediaType() string { return "image/svg+xml" }

// Frame renders frame as a standalone SVG document. Equal frames give
// byte-identical output.
func Frame(frame *layout.Frame) string {
	if frame == nil {
		frame = &layout.Frame{}
	}
	w := &writer{outlines: make(map[glyphKey][]fonts.Segment)}
	w.WriteString(`<svg class="mathspan" width="`)
	w.num(frame.Width())
	w.WriteString(`pt" height="`)
	w.num(frame.Height())
	w.WriteString(`pt" viewBox="0 0 `)
	w.num(frame.Width())
	w.WriteByte(' ')
	w.num(frame.Height())
	w.WriteString(`" xmlns="http://www.w3.org/2000/svg">` + "\n")
	w.frame(frame, 1)
	w.WriteString("</svg>\n")
	return w.String()
}

type glyphKey struct {
	font *fonts.Font
	id   uint16
}

type writer struct {
	strings.Builder
	outlines map[glyphKey][]fonts.Segment
}

func (w *writer) indent(depth int) {
	for range depth {
		w.WriteString("  ")
	}
}

// num writes v rounded to three decimals without trailing zeros.
func (w *writer) num(v float64) {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // drop negative zero
	}
	w.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
}

func (w *writer) translate(p layout.Point) {
	w.WriteString(`transform="translate(`)
	w.num(p.X)
	w.WriteByte(' ')
	w.num(p.Y)
	w.WriteString(`)"`)
}

func (w *writer) frame(f *layout.Frame, depth int) {
	for _, p := range f.Items {
		switch item := p.Item.(type) {
		case *layout.Group:
			w.indent(depth)
			w.WriteString(`<g class="group" `)
			w.translate(p.Pos)
			w.WriteString(">\n")
			w.frame(item.Frame, depth+1)
			w.indent(depth)
			w.WriteString("</g>\n")
		case *layout.TextItem:
			w.text(p.Pos, item, depth)
		case *layout.Shape:
			w.shape(p.Pos, item, depth)
		}
	}
}

func (w *writer) text(pos layout.Point, t *layout.TextItem, depth int) {
	w.indent(depth)
	w.WriteString(`<g class="text" fill="`)
	w.WriteString(t.Fill.Hex())
	w.WriteString(`" `)
	w.translate(pos)
	w.WriteString(">\n")
	x := 0.0
	for _, g := range t.Glyphs {
		segs := w.outline(t.Font, g.ID)
		if len(segs) > 0 {
			w.indent(depth + 1)
			w.WriteString(`<path d="`)
			w.path(segs, x+g.XOffset*t.Size, -g.YOffset*t.Size, t.Size)
			w.WriteString(`"/>` + "\n")
		}
		x += g.XAdvance * t.Size
	}
	w.indent(depth)
	w.WriteString("</g>\n")
}

func (w *writer) outline(f *fonts.Font, id uint16) []fonts.Segment {
	if f == nil {
		return nil
	}
	key := glyphKey{font: f, id: id}
	if segs, ok := w.outlines[key]; ok {
		return segs
	}
	segs, err := f.Outline(id)
	if err != nil {
		logging.Logger().Debug("svg: glyph without outline", "glyph", id, "error", err)
	}
	w.outlines[key] = segs
	return segs
}

// path writes segs scaled by size and moved by (dx, dy).
func (w *writer) path(segs []fonts.Segment, dx, dy, size float64) {
	pt := func(p fonts.Point) {
		w.num(dx + p.X*size)
		w.WriteByte(' ')
		w.num(dy + p.Y*size)
	}
	open := false
	for i, s := range segs {
		if i > 0 {
			w.WriteByte(' ')
		}
		switch s.Op {
		case fonts.MoveTo:
			if open {
				w.WriteString("Z ")
			}
			w.WriteByte('M')
			pt(s.Points[0])
			open = true
		case fonts.LineTo:
			w.WriteByte('L')
			pt(s.Points[0])
		case fonts.QuadTo:
			w.WriteByte('Q')
			pt(s.Points[0])
			w.WriteByte(' ')
			pt(s.Points[1])
		case fonts.CubicTo:
			w.WriteByte('C')
			pt(s.Points[0])
			w.WriteByte(' ')
			pt(s.Points[1])
			w.WriteByte(' ')
			pt(s.Points[2])
		}
	}
	if open {
		w.WriteString(" Z")
	}
}

func (w *writer) shape(pos layout.Point, s *layout.Shape, depth int) {
	w.indent(depth)
	w.WriteString(`<path class="shape" `)
	w.translate(pos)
	w.WriteString(` d="`)
	switch g := s.Geometry.(type) {
	case layout.RectGeom:
		w.WriteString("M0 0 H")
		w.num(g.Size.W)
		w.WriteString(" V")
		w.num(g.Size.H)
		w.WriteString(" H0 Z")
	}
	w.WriteString(`" fill="`)
	if s.Fill != nil {
		w.WriteString(s.Fill.Hex())
	} else {
		w.WriteString("none")
	}
	w.WriteString(`"/>\n`)
}
