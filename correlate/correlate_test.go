package correlate

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/mathspan/layout"
	"github.com/gogpu/mathspan/syntax"
)

// fakeResolver resolves spans from a fixed table.
type fakeResolver map[syntax.Span]syntax.Range

func (f fakeResolver) Range(span syntax.Span) (syntax.Range, bool) {
	r, ok := f[span]
	return r, ok
}

// filterResolver hides some ranges of a real source.
type filterResolver struct {
	src  *syntax.Source
	hide func(syntax.Range) bool
}

func (f filterResolver) Range(span syntax.Span) (syntax.Range, bool) {
	r, ok := f.src.Range(span)
	if !ok || f.hide(r) {
		return syntax.Range{}, false
	}
	return r, true
}

// shiftResolver moves every range by delta.
type shiftResolver struct {
	src   *syntax.Source
	delta int
}

func (s shiftResolver) Range(span syntax.Span) (syntax.Range, bool) {
	r, ok := s.src.Range(span)
	return syntax.Range{Start: r.Start + s.delta, End: r.End + s.delta}, ok
}

func source(t *testing.T, text string) (*syntax.Source, *syntax.Math) {
	t.Helper()
	root := syntax.ParseMath(text)
	require.Empty(t, root.Errors)
	require.NoError(t, root.Numberize(1, syntax.Full))
	m, ok := root.Cast()
	require.True(t, ok)
	return syntax.NewSource(1, text, root), m
}

func texts(entries []SpanEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

func span(n uint64) syntax.Span { return syntax.Span(1<<48 | n) }

func TestExtractSpans(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"a+b", []string{"a+b", "a", "+", "b"}},
		{"a/b", []string{"a/b", "a", "b"}},
		{"x^(y+1)", []string{"x^(y+1)", "x", "(y+1)", "y", "+", "1"}},
		{"x_i^2", []string{"x_i^2", "x", "i", "2"}},
		{"√x", []string{"√x", "x"}},
		{"frac(a, b)", []string{"frac(a, b)", "frac", "a", "b"}},
		{"vec(1, 2, delim: \"[\")", []string{"vec(1, 2, delim: \"[\")", "vec", "1", "2"}},
		{"#(1 + 2)", []string{"#(1 + 2)", "(1 + 2)", "1 + 2", "1", "2"}},
		{"#(1, ..(2,))", []string{"#(1, ..(2,))", "(1, ..(2,))", "1", "(2,)", "2"}},
		{"#(a: 1, \"k\": 2)", []string{"#(a: 1, \"k\": 2)", "(a: 1, \"k\": 2)", "1", "\"k\"", "2"}},
		{"#[hi $x$]", []string{"#[hi $x$]", "[hi $x$]", "hi", " ", "$x$"}},
		{"#(-1)", []string{"#(-1)", "(-1)", "-1", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			src, m := source(t, tt.src)
			entries := ExtractSpans(m, tt.src, src)
			assert.Equal(t, tt.want, texts(entries))
		})
	}
}

func TestExtractSpansRootFirstAndUnique(t *testing.T) {
	text := "(a+b)/(c) + sqrt(x)"
	src, m := source(t, text)
	entries := ExtractSpans(m, text, src)
	require.NotEmpty(t, entries)
	assert.Equal(t, syntax.Range{Start: 0, End: len(text)}, entries[0].Range)

	seen := make(map[syntax.Range]bool)
	for _, e := range entries {
		assert.False(t, seen[e.Range], "duplicate range %s", e.Range)
		seen[e.Range] = true
		assert.Equal(t, text[e.Range.Start:e.Range.End], e.Text)
	}
}

func TestExtractSpansDedupKeepsFirst(t *testing.T) {
	// Equations inside content are leaves.
	text := "#[$x$]"
	src, m := source(t, text)
	entries := ExtractSpans(m, text, src)
	assert.Equal(t, []string{"#[$x$]", "[$x$]", "$x$"}, texts(entries))

	text = "x"
	src, m = source(t, text)
	entries = ExtractSpans(m, text, src)
	require.Len(t, entries, 1)
	assert.Equal(t, m.Span(), entries[0].Span, "the root wins over its only child")
}

func TestExtractSpansSkipsUnresolvable(t *testing.T) {
	text := "a+b"
	src, m := source(t, text)
	hideB := filterResolver{src: src, hide: func(r syntax.Range) bool { return r.Start == 2 }}
	assert.Equal(t, []string{"a+b", "a", "+"}, texts(ExtractSpans(m, text, hideB)))

	// Ranges past the end of the source are skipped.
	assert.Equal(t, []string{"a", "+"}, texts(ExtractSpans(m, "a+", src)))
	assert.Empty(t, ExtractSpans(m, text, shiftResolver{src: src, delta: 10}))
	assert.Empty(t, ExtractSpans(m, text, fakeResolver{}))
	assert.Nil(t, ExtractSpans(nil, text, src))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		rect   layout.Rect
		offset layout.Point
		want   BoundingBox
	}{
		{"ordered", layout.Rect{Min: layout.Pt(0, 0), Max: layout.Pt(2, 3)}, layout.Pt(1, 1), BoundingBox{1, 1, 3, 4}},
		{"flipped y", layout.Rect{Min: layout.Pt(0, 2), Max: layout.Pt(5, -8)}, layout.Pt(10, 20), BoundingBox{10, 12, 15, 22}},
		{"flipped both", layout.Rect{Min: layout.Pt(4, 4), Max: layout.Pt(1, 1)}, layout.Point{}, BoundingBox{1, 1, 4, 4}},
		{"degenerate", layout.Rect{}, layout.Pt(3, 3), BoundingBox{3, 3, 3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.rect, tt.offset)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.Width(), 0.0)
			assert.GreaterOrEqual(t, got.Height(), 0.0)
		})
	}
}

func TestNormalizeClearsNegativeZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	got := Normalize(layout.Rect{Min: layout.Pt(negZero, negZero), Max: layout.Pt(negZero, 2)}, layout.Point{})
	for _, v := range []float64{got.X0, got.Y0, got.X1} {
		assert.False(t, math.Signbit(v), "got %v", v)
	}

	rec := Correlate(
		[]SpanEntry{{Range: syntax.Range{Start: 0, End: 1}, Text: "a"}},
		[]Fragment{{Range: syntax.Range{Start: 0, End: 1}, Box: got}},
	)
	require.Len(t, rec, 1)
	data, err := json.Marshal(rec[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "-0")
}

func TestMerge(t *testing.T) {
	a := BoundingBox{X0: 0, Y0: 5, X1: 2, Y1: 6}
	b := BoundingBox{X0: 1, Y0: 1, X1: 4, Y1: 3}
	assert.Equal(t, BoundingBox{X0: 0, Y0: 1, X1: 4, Y1: 6}, a.Merge(b))
	assert.Equal(t, a.Merge(b), b.Merge(a))
	assert.Equal(t, a, a.Merge(a))
}

func run(size float64, ascender, descender float64, spans ...syntax.Span) *layout.TextItem {
	glyphs := make([]layout.Glyph, len(spans))
	for i, s := range spans {
		glyphs[i] = layout.Glyph{XAdvance: 0.5, Span: s}
	}
	return &layout.TextItem{Size: size, Glyphs: glyphs, Ascender: ascender, Descender: descender}
}

func TestCollectFragments(t *testing.T) {
	r := fakeResolver{
		span(1): {Start: 0, End: 1},
		span(2): {Start: 2, End: 3},
		span(3): {Start: 4, End: 7},
	}

	inner := &layout.Frame{}
	inner.Push(layout.Pt(1, 10), run(10, 8, -2, span(2)))
	inner.Push(layout.Pt(0, 0), &layout.AlignMark{})

	nested := &layout.Frame{}
	nested.PushGroup(layout.Pt(5, 5), inner)

	root := &layout.Frame{}
	root.Push(layout.Pt(0, 10), run(10, 8, -2, span(1), syntax.Detached))
	root.PushGroup(layout.Pt(100, 0), nested)
	root.Push(layout.Pt(3, 4), &layout.Shape{Geometry: layout.RectGeom{Size: layout.Size{W: 6, H: 1}}, Span: span(3)})
	root.Push(layout.Pt(0, 0), run(10, 8, -2, syntax.Detached))
	root.Push(layout.Pt(0, 0), &layout.Shape{Geometry: layout.RectGeom{}, Span: span(99)})

	frags := CollectFragments(root, layout.Point{}, r)
	require.Len(t, frags, 3)

	assert.Equal(t, syntax.Range{Start: 0, End: 1}, frags[0].Range)
	assert.Equal(t, BoundingBox{X0: 0, Y0: 2, X1: 10, Y1: 12}, frags[0].Box)

	// Offsets of both groups accumulate.
	assert.Equal(t, syntax.Range{Start: 2, End: 3}, frags[1].Range)
	assert.Equal(t, BoundingBox{X0: 106, Y0: 7, X1: 111, Y1: 17}, frags[1].Box)

	assert.Equal(t, syntax.Range{Start: 4, End: 7}, frags[2].Range)
	assert.Equal(t, BoundingBox{X0: 3, Y0: 4, X1: 9, Y1: 5}, frags[2].Box)

	shifted := CollectFragments(root, layout.Pt(1, 1), r)
	assert.Equal(t, BoundingBox{X0: 1, Y0: 3, X1: 11, Y1: 13}, shifted[0].Box)

	assert.Nil(t, CollectFragments(nil, layout.Point{}, r))
}

func TestCollectFragmentsUnionsGlyphRanges(t *testing.T) {
	r := fakeResolver{
		span(1): {Start: 5, End: 6},
		span(2): {Start: 1, End: 2},
		span(3): {Start: 3, End: 9},
	}
	root := &layout.Frame{}
	root.Push(layout.Point{}, run(10, 8, -2, span(1), span(2), syntax.Detached, span(3)))

	frags := CollectFragments(root, layout.Point{}, r)
	require.Len(t, frags, 1)
	assert.Equal(t, syntax.Range{Start: 1, End: 9}, frags[0].Range)
}

func TestCorrelate(t *testing.T) {
	entries := []SpanEntry{
		{Range: syntax.Range{Start: 0, End: 3}, Text: "a+b"},
		{Range: syntax.Range{Start: 0, End: 1}, Text: "a"},
		{Range: syntax.Range{Start: 1, End: 2}, Text: "+"},
		{Range: syntax.Range{Start: 2, End: 3}, Text: "b"},
		{Range: syntax.Range{Start: 1, End: 3}, Text: "+b"},
	}
	frags := []Fragment{
		{Range: syntax.Range{Start: 0, End: 1}, Box: BoundingBox{0, 0, 1, 1}},
		{Range: syntax.Range{Start: 2, End: 3}, Box: BoundingBox{3, -1, 4, 2}},
		{Range: syntax.Range{Start: 0, End: 3}, Box: BoundingBox{0, 0, 0.5, 0.5}},
	}

	records := Correlate(entries, frags)
	require.Len(t, records, 4, "the operator renders nothing and is dropped")
	assert.Equal(t, Record{Text: "a+b", X: 0, Y: -1, Width: 4, Height: 3, SourceStart: 0, SourceEnd: 3, GlyphLines: 3}, records[0])
	assert.Equal(t, Record{Text: "a", X: 0, Y: 0, Width: 1, Height: 1, SourceStart: 0, SourceEnd: 1, GlyphLines: 1}, records[1])
	assert.Equal(t, Record{Text: "b", X: 3, Y: -1, Width: 1, Height: 3, SourceStart: 2, SourceEnd: 3, GlyphLines: 1}, records[2])
	assert.Equal(t, Record{Text: "+b", X: 3, Y: -1, Width: 1, Height: 3, SourceStart: 1, SourceEnd: 3, GlyphLines: 1}, records[3])
}

func TestCorrelateContainmentLaw(t *testing.T) {
	text := "(a+b)/c + x^(y_1) - sqrt(z)"
	src, m := source(t, text)
	entries := ExtractSpans(m, text, src)

	frags := make([]Fragment, 0, len(entries))
	for i, e := range entries {
		if e.Range.Len() == 1 {
			frags = append(frags, Fragment{Range: e.Range, Box: BoundingBox{X0: float64(i), Y0: 0, X1: float64(i) + 1, Y1: 1}})
		}
	}
	records := Correlate(entries, frags)
	require.NotEmpty(t, records)
	assert.Equal(t, 0, records[0].SourceStart)
	assert.Equal(t, len(text), records[0].SourceEnd)
	assert.Equal(t, len(frags), records[0].GlyphLines)

	for _, rec := range records {
		assert.LessOrEqual(t, 0, rec.SourceStart)
		assert.LessOrEqual(t, rec.SourceStart, rec.SourceEnd)
		assert.LessOrEqual(t, rec.SourceEnd, len(text))
		assert.GreaterOrEqual(t, rec.Width, 0.0)
		assert.GreaterOrEqual(t, rec.Height, 0.0)
		n := 0
		for _, f := range frags {
			if f.Range.Start >= rec.SourceStart && f.Range.End <= rec.SourceEnd {
				n++
			}
		}
		assert.Equal(t, n, rec.GlyphLines)
	}
}

func TestCorrelateEmpty(t *testing.T) {
	assert.Empty(t, Correlate(nil, nil))
	assert.Empty(t, Correlate([]SpanEntry{{Range: syntax.Range{Start: 0, End: 1}}}, nil))
}
