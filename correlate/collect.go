package correlate

import (
	"github.com/gogpu/mathspan/internal/logging"
	"github.com/gogpu/mathspan/layout"
	"github.com/gogpu/mathspan/syntax"
)

// Fragment is the range and absolute box of one glyph run or shape.
type Fragment struct {
	Range syntax.Range
	Box   BoundingBox
}

// CollectFragments walks frame, whose top-left corner sits at offset, and
// returns a fragment per attributable glyph run and shape in traversal order.
// A run's range spans its resolvable glyphs; runs and shapes that resolve to
// nothing are dropped. Other items are ignored.
func CollectFragments(frame *layout.Frame, offset layout.Point, r Resolver) []Fragment {
	if frame == nil {
		return nil
	}
	return collect(frame, offset, r, nil)
}

func collect(frame *layout.Frame, offset layout.Point, r Resolver, out []Fragment) []Fragment {
	for _, p := range frame.Items {
		pos := offset.Add(p.Pos)
		switch item := p.Item.(type) {
		case *layout.Group:
			out = collect(item.Frame, pos, r, out)
		case *layout.TextItem:
			rng, ok := glyphRange(item.Glyphs, r)
			if !ok {
				logging.Logger().Debug("correlate: dropping unattributed text run", "text", item.Text)
				continue
			}
			out = append(out, Fragment{Range: rng, Box: Normalize(item.BBox(), pos)})
		case *layout.Shape:
			rng, ok := r.Range(item.Span)
			if !ok {
				logging.Logger().Debug("correlate: dropping unattributed shape")
				continue
			}
			out = append(out, Fragment{Range: rng, Box: Normalize(item.BBox(), pos)})
		}
	}
	return out
}

// glyphRange returns the smallest range covering every resolvable glyph.
func glyphRange(glyphs []layout.Glyph, r Resolver) (syntax.Range, bool) {
	var (
		rng   syntax.Range
		found bool
	)
	for _, g := range glyphs {
		gr, ok := r.Range(g.Span)
		if !ok {
			continue
		}
		if !found {
			rng, found = gr, true
			continue
		}
		rng = rng.Union(gr)
	}
	return rng, found
}
