// Package tree dumps frames as indented text, one item per line.
package tree

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/mathspan/export"
	"github.com/gogpu/mathspan/layout"
)

func init() {
	export.Register("tree", func() export.Exporter { return Exporter{} })
}

// Exporter is the registered text dump exporter.
type Exporter struct{}

// Export implements export.Exporter.
func (Exporter) Export(frame *layout.Frame) string { return Dump(frame) }

// MediaType implements export.Exporter.
func (Exporter) MediaType() string { return "text/plain" }

// Dump returns the frame tree with positions relative to the parent frame.
func Dump(frame *layout.Frame) string {
	var b strings.Builder
	if frame == nil {
		b.WriteString("frame <nil>\n")
		return b.String()
	}
	fmt.Fprintf(&b, "frame %gx%g baseline %g\n", r(frame.Width()), r(frame.Height()), r(frame.Baseline))
	dump(&b, frame, 1)
	return b.String()
}

func dump(b *strings.Builder, f *layout.Frame, depth int) {
	pad := strings.Repeat("  ", depth)
	for _, p := range f.Items {
		at := layout.Pt(r(p.Pos.X), r(p.Pos.Y))
		switch item := p.Item.(type) {
		case *layout.Group:
			fmt.Fprintf(b, "%sgroup %s %gx%g\n", pad, at, r(item.Frame.Width()), r(item.Frame.Height()))
			dump(b, item.Frame, depth+1)
		case *layout.TextItem:
			name := "?"
			if item.Font != nil {
				name = item.Font.Name()
			}
			clusters := make([]string, len(item.Glyphs))
			for i, g := range item.Glyphs {
				clusters[i] = strconv.Itoa(g.Offset)
			}
			fmt.Fprintf(b, "%stext %q %s %s %gpt glyphs=%d clusters=%s\n",
				pad, item.Text, at, name, r(item.Size), len(item.Glyphs), strings.Join(clusters, ","))
		case *layout.Shape:
			kind := "shape"
			switch g := item.Geometry.(type) {
			case layout.RectGeom:
				kind = fmt.Sprintf("rect %gx%g", r(g.Size.W), r(g.Size.H))
			}
			fmt.Fprintf(b, "%s%s %s\n", pad, kind, at)
		case *layout.AlignMark:
			fmt.Fprintf(b, "%salign %s\n", pad, at)
		}
	}
}

// r rounds to hundredths so dumps stay stable across float noise.
func r(v float64) float64 {
	v = math.Round(v*100) / 100
	if v == 0 {
		return 0
	}
	return v
}
