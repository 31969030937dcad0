package syntax

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dump lists every node in pre-order as "Kind text".
func dump(src string, root *Root) []string {
	var out []string
	Inspect(root.Node, func(n Node) bool {
		kind := strings.TrimPrefix(fmt.Sprintf("%T", n), "*syntax.")
		r := rangeOf(n)
		out = append(out, kind+" "+src[r.Start:r.End])
		return true
	})
	return out
}

func parseOK(t *testing.T, src string) *Root {
	t.Helper()
	root := ParseMath(src)
	require.Empty(t, root.Errors, "ParseMath(%q)", src)
	return root
}

func TestParseMathTrees(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"a+b", []string{"Math a+b", "Text a", "Text +", "Text b"}},
		{"a/b", []string{"Math a/b", "MathFrac a/b", "Text a", "Text b"}},
		{"x^(y+1)", []string{
			"Math x^(y+1)", "MathAttach x^(y+1)", "Text x",
			"MathDelimited (y+1)", "Text (", "Math y+1", "Text y", "Text +", "Text 1", "Text )",
		}},
		{"x_i^2", []string{"Math x_i^2", "MathAttach x_i^2", "Text x", "Text i", "Text 2"}},
		{"f''", []string{"Math f''", "MathAttach f''", "Text f", "MathPrimes ''"}},
		{"12.5", []string{"Math 12.5", "Text 12.5"}},
		{"alpha", []string{"Math alpha", "MathIdent alpha"}},
		{"a -> b", []string{"Math a -> b", "Text a", "MathShorthand ->", "Text b"}},
		{"a & b", []string{"Math a & b", "Text a", "MathAlignPoint &", "Text b"}},
		{`\$ "hi"`, []string{`Math \$ "hi"`, `Escape \$`, `Str "hi"`}},
		{"√x", []string{"Math √x", "MathRoot √x", "Text x"}},
		{"frac(a, b)", []string{"Math frac(a, b)", "FuncCall frac(a, b)", "MathIdent frac", "Args (a, b)", "Text a", "Text b"}},
		{"vec(1, delim: \"[\")", []string{
			"Math vec(1, delim: \"[\")", "FuncCall vec(1, delim: \"[\")", "MathIdent vec",
			"Args (1, delim: \"[\")", "Text 1", "Named delim: \"[\"", "Ident delim", "Str \"[\"",
		}},
		{"#(1 + 2)", []string{"Math #(1 + 2)", "Parenthesized (1 + 2)", "Binary 1 + 2", "Int 1", "Int 2"}},
		{"#(a: 1, ..b)", []string{"Math #(a: 1, ..b)", "Dict (a: 1, ..b)", "Named a: 1", "Ident a", "Int 1", "Spread ..b", "Ident b"}},
		{"#(1, 2.5)", []string{"Math #(1, 2.5)", "Array (1, 2.5)", "Int 1", "Float 2.5"}},
		{"#[hi $x$]", []string{
			"Math #[hi $x$]", "ContentBlock [hi $x$]", "Markup hi $x$",
			"Text hi", "Space  ", "Equation $x$", "Math x", "Text x",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			root := parseOK(t, tt.src)
			assert.Equal(t, tt.want, dump(tt.src, root))
		})
	}
}

func TestParseRootSpansSource(t *testing.T) {
	for _, src := range []string{"  a + b  ", "", "x"} {
		root := ParseMath(src)
		m, ok := root.Cast()
		require.True(t, ok)
		assert.Equal(t, Range{Start: 0, End: len(src)}, rangeOf(m), "src %q", src)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a +", `expected expression after "+"`},
		{"a =", `expected expression after "="`},
		{"a ->", `expected expression after "->"`},
		{"a/", `expected expression after "/"`},
		{"x^", `expected expression after "^"`},
		{"(a", "unclosed delimiter"},
		{"frac(a", "unclosed delimiter"},
		{`"abc`, "unclosed string"},
		{"#", `expected expression after "#"`},
		{"#(1 +)", `expected expression after "+"`},
		{"#(1 2)", "expected comma or closing parenthesis"},
		{"#[$x]", "unclosed equation"},
		{"x^a^b", "duplicate superscript"},
		{"/a", `unexpected "/"`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			root := ParseMath(tt.src)
			require.NotEmpty(t, root.Errors)
			var msgs []string
			for _, e := range root.Errors {
				msgs = append(msgs, e.Message)
			}
			assert.Contains(t, msgs, tt.want)
		})
	}
}

func TestParseTrailingEllipsisIsFine(t *testing.T) {
	parseOK(t, "1, 2, ...")
}

func TestParseCombiningMarksStayTogether(t *testing.T) {
	src := "x̂ + 1"
	root := parseOK(t, src)
	assert.Equal(t, "Text x̂", dump(src, root)[1])
}

func TestParseCodePrecedence(t *testing.T) {
	src := "#(1 + 2 * 3 == 7 and not false)"
	root := parseOK(t, src)

	var ops []string
	Inspect(root.Node, func(n Node) bool {
		if b, ok := n.(*Binary); ok {
			ops = append(ops, b.Op.String())
		}
		return true
	})
	assert.Equal(t, []string{"and", "==", "+", "*"}, ops)
}

func TestNumberize(t *testing.T) {
	src := "a+b"
	root := parseOK(t, src)
	require.NoError(t, root.Numberize(7, Full))

	var spans []Span
	Inspect(root.Node, func(n Node) bool {
		spans = append(spans, n.Span())
		return true
	})
	require.Len(t, spans, 4)
	for i, s := range spans {
		assert.Equal(t, FileID(7), s.File())
		assert.Equal(t, uint64(i+1), s.Number(), "pre-order numbering")
		assert.False(t, s.IsDetached())
	}
}

func TestNumberizeTooSmall(t *testing.T) {
	root := parseOK(t, "a+b")
	err := root.Numberize(1, Interval{Lo: 1, Hi: 3})
	require.ErrorIs(t, err, ErrNumberize)

	Inspect(root.Node, func(n Node) bool {
		assert.True(t, n.Span().IsDetached(), "failed numbering leaves spans untouched")
		return true
	})

	assert.ErrorIs(t, root.Numberize(1, Interval{Lo: 0, Hi: 10}), ErrNumberize)
}

func TestSourceRange(t *testing.T) {
	src := "x^(y+1)"
	root := parseOK(t, src)
	require.NoError(t, root.Numberize(1, Full))
	s := NewSource(1, src, root)

	var got []string
	Inspect(root.Node, func(n Node) bool {
		r, ok := s.Range(n.Span())
		require.True(t, ok)
		got = append(got, src[r.Start:r.End])
		return true
	})
	assert.Equal(t, []string{"x^(y+1)", "x^(y+1)", "x", "(y+1)", "(", "y+1", "y", "+", "1", ")"}, got)

	_, ok := s.Range(Detached)
	assert.False(t, ok)
	_, ok = s.Range(newSpan(2, 1))
	assert.False(t, ok, "other files do not resolve")
	_, ok = s.Range(newSpan(1, 999))
	assert.False(t, ok, "unknown numbers do not resolve")

	assert.Equal(t, FileID(1), s.ID())
	assert.Equal(t, src, s.Text())
}

func TestRange(t *testing.T) {
	r := Range{Start: 2, End: 7}
	assert.Equal(t, 5, r.Len())
	assert.True(t, r.Contains(Range{Start: 2, End: 7}))
	assert.True(t, r.Contains(Range{Start: 3, End: 4}))
	assert.False(t, r.Contains(Range{Start: 1, End: 4}))
	assert.False(t, r.Contains(Range{Start: 6, End: 8}))
	assert.Equal(t, Range{Start: 0, End: 7}, r.Union(Range{Start: 0, End: 1}))
}

func TestSpanEncoding(t *testing.T) {
	s := newSpan(3, 42)
	assert.Equal(t, FileID(3), s.File())
	assert.Equal(t, uint64(42), s.Number())
	assert.True(t, Detached.IsDetached())
}

func TestCast(t *testing.T) {
	_, ok := (&Root{Node: &Ident{Name: "x"}}).Cast()
	assert.False(t, ok)
	_, ok = (&Root{}).Cast()
	assert.False(t, ok)
}
