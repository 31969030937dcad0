package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/mathspan/export"
	"github.com/gogpu/mathspan/layout"
)

func TestRegistered(t *testing.T) {
	e, err := export.New("tree")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", e.MediaType())
}

func TestDump(t *testing.T) {
	inner := layout.NewFrame(layout.Size{W: 4, H: 2})
	inner.Push(layout.Pt(0, 1.5), &layout.TextItem{Text: "xé", Size: 7.7, Glyphs: []layout.Glyph{{ID: 3}, {ID: 9, Offset: 1}}})

	f := layout.NewFrame(layout.Size{W: 10.004, H: 12})
	f.Baseline = 9
	f.PushGroup(layout.Pt(1, 2), inner)
	f.Push(layout.Pt(0, 5), &layout.Shape{Geometry: layout.RectGeom{Size: layout.Size{W: 10, H: 0.5}}})
	f.Push(layout.Pt(4, 9), &layout.AlignMark{})

	want := `frame 10x12 baseline 9
  group (1, 2) 4x2
    text "xé" (0, 1.5) ? 7.7pt glyphs=2 clusters=0,1
  rect 10x0.5 (0, 5)
  align (4, 9)
`
	assert.Equal(t, want, Dump(f))
}

func TestDumpNil(t *testing.T) {
	assert.Equal(t, "frame <nil>\n", Dump(nil))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, r(1.2345))
	assert.Equal(t, -1.23, r(-1.2345))
	assert.Equal(t, 0.0, r(-0.001))
}
