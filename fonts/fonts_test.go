package fonts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	book := Default()
	require.Equal(t, len(bundledFonts), book.Len())
	assert.Equal(t, []string{"Go", "Go Mono"}, book.Families())
	assert.Same(t, book, Default(), "catalog is built once")
}

func TestSelect(t *testing.T) {
	book := Default()
	tests := []struct {
		name       string
		family     string
		want       Variant
		wantWeight int
		wantStyle  Style
	}{
		{"exact regular", "Go", Variant{Normal, 400}, 400, Normal},
		{"tie goes lighter", "Go", Variant{Normal, 450}, 400, Normal},
		{"closest heavier", "Go", Variant{Normal, 650}, 700, Normal},
		{"italic preferred", "Go", Variant{Italic, 700}, 700, Italic},
		{"case insensitive", "go mono", Variant{Italic, 900}, 400, Normal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := book.Select(tt.family, tt.want)
			require.True(t, ok)
			assert.Equal(t, tt.wantWeight, f.Info().Variant.Weight)
			assert.Equal(t, tt.wantStyle, f.Info().Variant.Style)
		})
	}

	_, ok := book.Select("Times", Variant{Normal, 400})
	assert.False(t, ok)
}

func TestSelectFirst(t *testing.T) {
	book := Default()
	f, ok := book.SelectFirst([]string{"Missing", "Go Mono", "Go"}, Variant{Normal, 400})
	require.True(t, ok)
	assert.Equal(t, "Go Mono", f.Info().Family)

	_, ok = book.SelectFirst([]string{"Missing"}, Variant{})
	assert.False(t, ok)

	_, ok = NewBook().SelectFirst([]string{"Go"}, Variant{})
	assert.False(t, ok)
}

func regular(t *testing.T) *Font {
	t.Helper()
	f, ok := Default().Select("Go", Variant{Normal, 400})
	require.True(t, ok)
	return f
}

func TestMetrics(t *testing.T) {
	m := regular(t).Metrics()
	assert.Greater(t, m.Ascender, 0.5)
	assert.Less(t, m.Ascender, 1.5)
	assert.Less(t, m.Descender, 0.0)
	assert.Greater(t, m.XHeight, 0.0)
	assert.InDelta(t, m.XHeight/2, m.AxisHeight, 1e-9)
}

func TestGlyphIndex(t *testing.T) {
	f := regular(t)
	gid, ok := f.GlyphIndex('a')
	require.True(t, ok)
	assert.NotZero(t, gid)
	assert.Greater(t, f.Advance(gid), 0.0)
	assert.True(t, f.Has("abc"))

	_, ok = f.GlyphIndex('\U0001F600')
	assert.False(t, ok)
}

func TestOutline(t *testing.T) {
	f := regular(t)
	gid, ok := f.GlyphIndex('o')
	require.True(t, ok)
	segs, err := f.Outline(gid)
	require.NoError(t, err)
	require.NotEmpty(t, segs)
	assert.Equal(t, MoveTo, segs[0].Op)

	space, ok := f.GlyphIndex(' ')
	require.True(t, ok)
	segs, err = f.Outline(space)
	require.NoError(t, err)
	assert.Empty(t, segs)

	_, err = f.Outline(uint16(f.NumGlyphs()))
	assert.ErrorIs(t, err, ErrGlyphNotFound)
}

func TestShape(t *testing.T) {
	f := regular(t)
	assert.Nil(t, f.Shape(""))

	glyphs := f.Shape("aπb")
	require.Len(t, glyphs, 3)
	assert.Equal(t, []int{0, 1, 3}, []int{glyphs[0].Cluster, glyphs[1].Cluster, glyphs[2].Cluster})
	for _, g := range glyphs {
		assert.Greater(t, g.XAdvance, 0.0)
	}

	a, _ := f.GlyphIndex('a')
	assert.Equal(t, a, glyphs[0].ID)
	assert.InDelta(t, f.Advance(a), glyphs[0].XAdvance, 0.01)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("not a font"), Info{Family: "Broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken")
}

func TestSegmentOp(t *testing.T) {
	assert.Equal(t, "QuadTo", QuadTo.String())
	assert.Equal(t, 3, CubicTo.PointCount())
	assert.Equal(t, 1, MoveTo.PointCount())
	assert.Equal(t, "italic", Italic.String())
}
