package syntax

// Inspect traverses the tree rooted at n in depth-first pre-order, calling
// fn for every non-nil node. If fn returns false, the children of that node
// are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if isNil(n) || !fn(n) {
		return
	}
	for _, c := range children(n) {
		Inspect(c, fn)
	}
}

// children lists the direct children of n in source order.
func children(n Node) []Node {
	switch n := n.(type) {
	case *Math:
		return exprNodes(n.Exprs)
	case *MathFrac:
		return []Node{n.Num, n.Denom}
	case *MathAttach:
		out := []Node{n.Base}
		if n.Bottom != nil {
			out = append(out, n.Bottom)
		}
		if n.Top != nil {
			out = append(out, n.Top)
		}
		if n.Primes != nil {
			out = append(out, n.Primes)
		}
		return out
	case *MathRoot:
		return []Node{n.Radicand}
	case *MathDelimited:
		return []Node{n.Open, n.Body, n.Close}
	case *Parenthesized:
		return []Node{n.Expr}
	case *Array:
		return n.Items
	case *Dict:
		return n.Items
	case *Named:
		return []Node{n.Name, n.Expr}
	case *Keyed:
		return []Node{n.Key, n.Expr}
	case *Spread:
		return []Node{n.Expr}
	case *FuncCall:
		return []Node{n.Callee, n.Args}
	case *Args:
		return n.Items
	case *ContentBlock:
		return []Node{n.Body}
	case *Markup:
		return exprNodes(n.Exprs)
	case *Equation:
		return []Node{n.Body}
	case *Unary:
		return []Node{n.Expr}
	case *Binary:
		return []Node{n.Lhs, n.Rhs}
	default:
		return nil
	}
}

func exprNodes(exprs []Expr) []Node {
	out := make([]Node, len(exprs))
	for i, e := range exprs {
		out[i] = e
	}
	return out
}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch n := n.(type) {
	case *Text:
		return n == nil
	case *Math:
		return n == nil
	case *MathPrimes:
		return n == nil
	case *Args:
		return n == nil
	case *Ident:
		return n == nil
	case *Markup:
		return n == nil
	}
	return false
}
