package correlate

import "github.com/gogpu/mathspan/syntax"

// SpanEntry is a syntax node's span with its resolved range and text.
type SpanEntry struct {
	Span  syntax.Span
	Range syntax.Range
	Text  string
}

type extractor struct {
	src     string
	r       Resolver
	seen    map[syntax.Range]bool
	entries []SpanEntry
}

// ExtractSpans lists the spans of root and its meaningful descendants in
// pre-order, root first. Spans that do not resolve, or resolve past the end
// of src, are skipped. Of several nodes with the same range only the first
// is kept.
func ExtractSpans(root syntax.Node, src string, r Resolver) []SpanEntry {
	if root == nil {
		return nil
	}
	x := &extractor{src: src, r: r, seen: make(map[syntax.Range]bool)}
	x.visit(root)
	return x.entries
}

func (x *extractor) record(n syntax.Node) {
	rng, ok := x.r.Range(n.Span())
	if !ok || rng.Start < 0 || rng.Start > rng.End || rng.End > len(x.src) {
		return
	}
	if x.seen[rng] {
		return
	}
	x.seen[rng] = true
	x.entries = append(x.entries, SpanEntry{
		Span:  n.Span(),
		Range: rng,
		Text:  x.src[rng.Start:rng.End],
	})
}

func (x *extractor) visitExprs(exprs []syntax.Expr) {
	for _, e := range exprs {
		x.visit(e)
	}
}

// visit records n and descends into the children that carry subexpressions.
// Kinds without a case are recorded but not descended into.
func (x *extractor) visit(n syntax.Node) {
	x.record(n)
	switch n := n.(type) {
	case *syntax.Math:
		x.visitExprs(n.Exprs)
	case *syntax.MathFrac:
		x.visit(n.Num)
		x.visit(n.Denom)
	case *syntax.MathAttach:
		x.visit(n.Base)
		if n.Bottom != nil {
			x.visit(n.Bottom)
		}
		if n.Top != nil {
			x.visit(n.Top)
		}
	case *syntax.MathRoot:
		x.visit(n.Radicand)
	case *syntax.MathDelimited:
		x.visitExprs(n.Body.Exprs)
	case *syntax.FuncCall:
		x.visit(n.Callee)
		for _, arg := range n.Args.Items {
			if e, ok := arg.(syntax.Expr); ok {
				x.visit(e)
			}
		}
	case *syntax.Parenthesized:
		x.visit(n.Expr)
	case *syntax.Array:
		for _, item := range n.Items {
			switch item := item.(type) {
			case *syntax.Spread:
				x.visit(item.Expr)
			case syntax.Expr:
				x.visit(item)
			}
		}
	case *syntax.Dict:
		for _, item := range n.Items {
			switch item := item.(type) {
			case *syntax.Named:
				x.visit(item.Expr)
			case *syntax.Keyed:
				x.visit(item.Key)
				x.visit(item.Expr)
			case *syntax.Spread:
				x.visit(item.Expr)
			}
		}
	case *syntax.ContentBlock:
		x.visitExprs(n.Body.Exprs)
	case *syntax.Binary:
		x.visit(n.Lhs)
		x.visit(n.Rhs)
	case *syntax.Unary:
		x.visit(n.Expr)
	}
}
