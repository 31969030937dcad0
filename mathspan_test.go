package mathspan

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/mathspan/correlate"
	"github.com/gogpu/mathspan/fonts"
)

func compile(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Compile(src)
	require.NoError(t, err, "Compile(%q)", src)
	return res
}

func texts(records []correlate.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text
	}
	return out
}

func find(t *testing.T, records []correlate.Record, text string) correlate.Record {
	t.Helper()
	for _, r := range records {
		if r.Text == text {
			return r
		}
	}
	t.Fatalf("no record for %q in %q", text, texts(records))
	return correlate.Record{}
}

func TestCompileSum(t *testing.T) {
	res := compile(t, "a+b")

	assert.Equal(t, []string{"a+b", "a", "+", "b"}, texts(res.Subexpressions))
	root := res.Subexpressions[0]
	assert.Equal(t, 0, root.SourceStart)
	assert.Equal(t, 3, root.SourceEnd)
	assert.Equal(t, 3, root.GlyphLines)

	a := find(t, res.Subexpressions, "a")
	b := find(t, res.Subexpressions, "b")
	assert.Less(t, a.X, b.X)
	assert.True(t, strings.HasPrefix(res.SVG, "<svg"))
}

func TestCompileFraction(t *testing.T) {
	res := compile(t, "a/b")

	assert.Equal(t, []string{"a/b", "a", "b"}, texts(res.Subexpressions))
	num := find(t, res.Subexpressions, "a")
	den := find(t, res.Subexpressions, "b")
	assert.LessOrEqual(t, num.Y+num.Height, den.Y, "numerator must sit above denominator")

	// The fraction bar belongs to the whole fraction only.
	assert.Equal(t, 3, res.Subexpressions[0].GlyphLines)
}

func TestCompileAttachment(t *testing.T) {
	res := compile(t, "x^(y+1)")

	assert.Equal(t, []string{"x^(y+1)", "x", "(y+1)", "y", "+", "1"}, texts(res.Subexpressions))
	sup := find(t, res.Subexpressions, "(y+1)")
	assert.Equal(t, 2, sup.SourceStart)
	assert.Equal(t, 7, sup.SourceEnd)
	assert.Equal(t, 3, sup.GlyphLines)

	x := find(t, res.Subexpressions, "x")
	assert.Less(t, sup.Y, x.Y, "superscript must be raised")
	assert.GreaterOrEqual(t, sup.X+1e-6, x.X+x.Width, "superscript must follow the base")
}

func TestCompileCodeArguments(t *testing.T) {
	res := compile(t, "#frac(1,2)")

	assert.Equal(t, []string{"#frac(1,2)", "frac(1,2)", "1", "2"}, texts(res.Subexpressions))
	one := find(t, res.Subexpressions, "1")
	two := find(t, res.Subexpressions, "2")
	assert.Equal(t, 6, one.SourceStart)
	assert.Equal(t, 7, one.SourceEnd)
	assert.Equal(t, 8, two.SourceStart)
	assert.Equal(t, 1, one.GlyphLines)
	assert.LessOrEqual(t, one.Y+one.Height, two.Y, "numerator must sit above denominator")
}

func TestCompileEmpty(t *testing.T) {
	assert.NotPanics(t, func() {
		res, err := Compile("")
		if err != nil {
			assert.True(t, strings.HasPrefix(err.Error(), "Parse error: "))
			return
		}
		assert.Empty(t, res.Subexpressions)
	})
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		kind   ErrorKind
		prefix string
	}{
		{"dangling operator", "a +", KindParse, "Parse error: "},
		{"unclosed delimiter", "(a", KindParse, "Parse error: "},
		{"unknown variable", "foo", KindEval, "Eval error: unknown variable: foo"},
		{"no date", "today()", KindEval, "Eval error: unable to get the current date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile(tt.src)
			require.Error(t, err)
			assert.Nil(t, res)

			var ce *CompileError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.kind, ce.Kind)
			assert.True(t, strings.HasPrefix(ce.Message, tt.prefix), "got %q", ce.Message)
		})
	}
}

func TestCompileLayoutError(t *testing.T) {
	_, err := Compile("a", WithFontBook(fonts.NewBook()))
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindLayout, ce.Kind)
	assert.True(t, strings.HasPrefix(ce.Message, "Layout error: no font could be found"))
}

func TestCompileFormat(t *testing.T) {
	res, err := Compile("a", WithFormat("tree"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.SVG, "frame "))

	res, err = Compile("a", WithFormat("bogus"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.SVG, "<svg"))
}

func TestCompileMissingExporter(t *testing.T) {
	gone := func(o *options) { o.format = "gone" }

	var res *Result
	var err error
	require.NotPanics(t, func() { res, err = Compile("a", gone) })
	assert.Nil(t, res)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindExport, ce.Kind)
	assert.Equal(t, "export", ce.Kind.String())
	assert.True(t, strings.HasPrefix(ce.Message, `Export error: export: unknown format "gone"`), "got %q", ce.Message)

	var doc map[string]string
	require.NoError(t, json.Unmarshal([]byte(CompileJSON("a", gone)), &doc))
	assert.Contains(t, doc["error"], "Export error: ")
}

func TestRecordInvariants(t *testing.T) {
	inputs := []string{
		"a+b",
		"a/b",
		"x^(y+1)",
		"sqrt(x) + frac(1, 2)",
		"sum_(i=0)^n i^2",
		"abs(x) <= 1",
		"vec(1, 2, 3)",
		"(a+b)/(c-d)",
		"f'(x)",
		"alpha beta",
		`"text" x`,
		"#(1 + 2)",
	}
	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			res := compile(t, src)
			require.NotEmpty(t, res.Subexpressions)

			seen := make(map[[2]int]bool)
			for _, r := range res.Subexpressions {
				require.LessOrEqual(t, 0, r.SourceStart)
				require.LessOrEqual(t, r.SourceStart, r.SourceEnd)
				require.LessOrEqual(t, r.SourceEnd, len(src))
				assert.Equal(t, src[r.SourceStart:r.SourceEnd], r.Text)
				assert.GreaterOrEqual(t, r.Width, 0.0)
				assert.GreaterOrEqual(t, r.Height, 0.0)
				assert.GreaterOrEqual(t, r.GlyphLines, 1)

				key := [2]int{r.SourceStart, r.SourceEnd}
				assert.False(t, seen[key], "duplicate range %v", key)
				seen[key] = true
			}

			// A record nested inside another in the source is nested in the
			// picture too.
			const eps = 1e-9
			for _, outer := range res.Subexpressions {
				for _, inner := range res.Subexpressions {
					if inner.SourceStart < outer.SourceStart || inner.SourceEnd > outer.SourceEnd {
						continue
					}
					assert.LessOrEqual(t, outer.X, inner.X+eps)
					assert.LessOrEqual(t, outer.Y, inner.Y+eps)
					assert.GreaterOrEqual(t, outer.X+outer.Width, inner.X+inner.Width-eps)
					assert.GreaterOrEqual(t, outer.Y+outer.Height, inner.Y+inner.Height-eps)
				}
			}
		})
	}
}

func TestRootIncluded(t *testing.T) {
	for _, src := range []string{"a+b", "x^2", "a/b"} {
		res := compile(t, src)
		root := res.Subexpressions[0]
		assert.Equal(t, src, root.Text)
		assert.Equal(t, 0, root.SourceStart)
		assert.Equal(t, len(src), root.SourceEnd)
	}
}

func TestCompileJSON(t *testing.T) {
	var ok map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(CompileJSON("a+b")), &ok))
	assert.Contains(t, ok, "svg")
	assert.Contains(t, ok, "subexpressions")
	assert.NotContains(t, ok, "error")

	var records []map[string]any
	require.NoError(t, json.Unmarshal(ok["subexpressions"], &records))
	require.Len(t, records, 4)
	for _, key := range []string{"text", "x", "y", "width", "height", "source_start", "source_end", "glyph_lines"} {
		assert.Contains(t, records[0], key)
	}

	var failed map[string]any
	require.NoError(t, json.Unmarshal([]byte(CompileJSON("a +")), &failed))
	assert.NotContains(t, failed, "subexpressions")
	assert.NotContains(t, failed, "svg")
	assert.True(t, strings.HasPrefix(failed["error"].(string), "Parse error: "))
}

func TestCompileJSONDeterministic(t *testing.T) {
	for _, src := range []string{"a+b", "x^(y+1)", "sqrt(a/b)"} {
		assert.Equal(t, CompileJSON(src), CompileJSON(src))
	}
}

func TestCompileJSONFallback(t *testing.T) {
	orig := marshal
	marshal = func(any) ([]byte, error) { return nil, errors.New("boom") }
	defer func() { marshal = orig }()

	assert.Equal(t, `{"error":"JSON serialization failed"}`, CompileJSON("a"))
	assert.Equal(t, `{"error":"JSON serialization failed"}`, CompileJSON("a +"))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "parse", KindParse.String())
	assert.Equal(t, "layout", KindLayout.String())
	assert.Equal(t, "unknown", ErrorKind(42).String())
}
