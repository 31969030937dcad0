package syntax

// Node is implemented by every syntax tree node.
type Node interface {
	// Span returns the node's span. It is Detached until the tree is numbered.
	Span() Span
	base() *node
}

// Expr is a node that evaluates to a value or to content.
type Expr interface {
	Node
	exprNode()
}

// node holds the data shared by all nodes. rng is only reachable through a
// Source, so consumers go through span resolution.
type node struct {
	span Span
	rng  Range
}

func (n *node) Span() Span  { return n.span }
func (n *node) base() *node { return n }

// ----------------------------------------------------------------------------
// Math mode

// Math is a sequence of math expressions.
type Math struct {
	node
	Exprs []Expr
}

// Text is a single-letter identifier, a number or an operator symbol.
type Text struct {
	node
	Text string
}

// MathIdent is a multi-letter identifier looked up in scope (pi, sin, arrow.r).
type MathIdent struct {
	node
	Name string
}

// MathShorthand is an ASCII sequence standing for a symbol, such as "->".
type MathShorthand struct {
	node
	Text   string
	Symbol string
}

// MathAlignPoint is the "&" alignment marker.
type MathAlignPoint struct {
	node
}

// MathPrimes is a run of prime marks.
type MathPrimes struct {
	node
	Count int
}

// MathFrac is a fraction written with "/".
type MathFrac struct {
	node
	Num   Expr
	Denom Expr
}

// MathAttach is a base with optional sub- and superscripts and primes.
type MathAttach struct {
	node
	Base   Expr
	Bottom Expr
	Top    Expr
	Primes *MathPrimes
}

// MathRoot is a radical written with a root glyph. Index is 0 for a square
// root, 3 or 4 otherwise.
type MathRoot struct {
	node
	Index    int
	Radicand Expr
}

// MathDelimited is a body enclosed in matching delimiters.
type MathDelimited struct {
	node
	Open  *Text
	Body  *Math
	Close *Text
}

// Escape is a backslash escape such as "\_".
type Escape struct {
	node
	Char rune
}

// Str is a quoted string.
type Str struct {
	node
	Value string
}

// Space is whitespace inside markup.
type Space struct {
	node
}

// ----------------------------------------------------------------------------
// Code mode

// Ident is an identifier in code.
type Ident struct {
	node
	Name string
}

// Int is an integer literal.
type Int struct {
	node
	Value int64
}

// Float is a floating point literal.
type Float struct {
	node
	Value float64
}

// Bool is a boolean literal.
type Bool struct {
	node
	Value bool
}

// None is the none literal.
type None struct {
	node
}

// Auto is the auto literal.
type Auto struct {
	node
}

// Parenthesized is an expression in parentheses.
type Parenthesized struct {
	node
	Expr Expr
}

// Array is an array literal. Items are Expr or *Spread.
type Array struct {
	node
	Items []Node
}

// Dict is a dictionary literal. Items are *Named, *Keyed or *Spread.
type Dict struct {
	node
	Items []Node
}

// Named is a "name: value" pair in a dictionary or argument list.
type Named struct {
	node
	Name *Ident
	Expr Expr
}

// Keyed is a "expr: value" pair in a dictionary.
type Keyed struct {
	node
	Key  Expr
	Expr Expr
}

// Spread is a "..expr" item.
type Spread struct {
	node
	Expr Expr
}

// FuncCall is a call of Callee with Args.
type FuncCall struct {
	node
	Callee Expr
	Args   *Args
}

// Args holds call arguments. Items are Expr (positional), *Named or *Spread.
type Args struct {
	node
	Items []Node
}

// ContentBlock is markup in square brackets.
type ContentBlock struct {
	node
	Body *Markup
}

// Markup is a sequence of text, spaces and inline equations.
type Markup struct {
	node
	Exprs []Expr
}

// Equation is an inline "$...$" equation inside markup.
type Equation struct {
	node
	Body *Math
}

// UnOp is a unary operator.
type UnOp int

const (
	OpPos UnOp = iota
	OpNeg
	OpNot
)

func (op UnOp) String() string {
	switch op {
	case OpPos:
		return "+"
	case OpNeg:
		return "-"
	case OpNot:
		return "not"
	default:
		return "?"
	}
}

// Unary is a unary operation.
type Unary struct {
	node
	Op   UnOp
	Expr Expr
}

// BinOp is a binary operator.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNeq
	OpLt
	OpLeq
	OpGt
	OpGeq
	OpAnd
	OpOr
)

var binOpText = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpEq:  "==",
	OpNeq: "!=",
	OpLt:  "<",
	OpLeq: "<=",
	OpGt:  ">",
	OpGeq: ">=",
	OpAnd: "and",
	OpOr:  "or",
}

func (op BinOp) String() string {
	if int(op) < len(binOpText) {
		return binOpText[op]
	}
	return "?"
}

// precedence returns the binding power of op. Higher binds tighter.
func (op BinOp) precedence() int {
	switch op {
	case OpMul, OpDiv:
		return 5
	case OpAdd, OpSub:
		return 4
	case OpEq, OpNeq, OpLt, OpLeq, OpGt, OpGeq:
		return 3
	case OpAnd:
		return 2
	case OpOr:
		return 1
	default:
		return 0
	}
}

// Binary is a binary operation.
type Binary struct {
	node
	Op  BinOp
	Lhs Expr
	Rhs Expr
}

func (*Math) exprNode()           {}
func (*Text) exprNode()           {}
func (*MathIdent) exprNode()      {}
func (*MathShorthand) exprNode()  {}
func (*MathAlignPoint) exprNode() {}
func (*MathPrimes) exprNode()     {}
func (*MathFrac) exprNode()       {}
func (*MathAttach) exprNode()     {}
func (*MathRoot) exprNode()       {}
func (*MathDelimited) exprNode()  {}
func (*Escape) exprNode()         {}
func (*Str) exprNode()            {}
func (*Space) exprNode()          {}
func (*Ident) exprNode()          {}
func (*Int) exprNode()            {}
func (*Float) exprNode()          {}
func (*Bool) exprNode()           {}
func (*None) exprNode()           {}
func (*Auto) exprNode()           {}
func (*Parenthesized) exprNode()  {}
func (*Array) exprNode()          {}
func (*Dict) exprNode()           {}
func (*FuncCall) exprNode()       {}
func (*ContentBlock) exprNode()   {}
func (*Equation) exprNode()       {}
func (*Unary) exprNode()          {}
func (*Binary) exprNode()         {}
