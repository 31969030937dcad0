package syntax

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ParseMath parses text as a math-mode expression. It always returns a tree;
// syntax problems are reported in Root.Errors.
func ParseMath(text string) *Root {
	p := &parser{src: text}
	m := p.parseMathSeq(stopNever)
	m.rng = Range{Start: 0, End: len(text)}
	return &Root{Node: m, Errors: p.errors}
}

type parser struct {
	src    string
	pos    int
	errors []*SyntaxError
}

// stopFunc reports whether r ends the current math sequence.
type stopFunc func(r rune) bool

func stopNever(rune) bool { return false }

func stopAtCloser(r rune) bool { return isCloser(r) }

func stopAtArgEnd(r rune) bool { return r == ',' || r == ';' || r == ')' }

func stopAtDollar(r rune) bool { return r == '$' }

var closers = map[rune]rune{
	'(': ')',
	'[': ']',
	'{': '}',
	'⟨': '⟩',
	'⌊': '⌋',
	'⌈': '⌉',
	'‖': '‖',
}

func isOpener(r rune) bool {
	_, ok := closers[r]
	return ok && r != '‖'
}

func isCloser(r rune) bool {
	switch r {
	case ')', ']', '}', '⟩', '⌋', '⌉':
		return true
	}
	return false
}

// shorthands are matched longest first.
var shorthands = []struct{ text, symbol string }{
	{"|->", "↦"},
	{"...", "…"},
	{"->", "→"},
	{"=>", "⇒"},
	{"<-", "←"},
	{"<=", "≤"},
	{">=", "≥"},
	{"!=", "≠"},
	{":=", "≔"},
}

// danglingOps must be followed by an operand within their sequence.
var danglingOps = map[string]bool{
	"+": true, "-": true, "−": true, "*": true, "∗": true, "=": true,
	"<": true, ">": true, "±": true, "×": true, "·": true, "÷": true,
	"≠": true, "≤": true, "≥": true, "→": true, "⇒": true, "≈": true,
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *parser) peekIs(r rune) bool {
	return !p.eof() && p.peek() == r
}

func (p *parser) skipSpace() bool {
	start := p.pos
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		p.pos += size
	}
	return p.pos > start
}

// segment returns the byte length of the normalization segment at the
// current position, so a base letter and its combining marks stay together.
func (p *parser) segment() int {
	n := norm.NFC.NextBoundaryInString(p.src[p.pos:], true)
	if n <= 0 {
		_, n = utf8.DecodeRuneInString(p.src[p.pos:])
	}
	return n
}

func (p *parser) errorf(rng Range, format string, args ...any) {
	p.errors = append(p.errors, &SyntaxError{Message: fmt.Sprintf(format, args...), Range: rng})
}

func rangeOf(n Node) Range { return n.base().rng }

func at(n Node, rng Range) {
	n.base().rng = rng
}

// ----------------------------------------------------------------------------
// Math mode

func (p *parser) parseMathSeq(stop stopFunc) *Math {
	start := p.pos
	var exprs []Expr
	for {
		p.skipSpace()
		if p.eof() || stop(p.peek()) {
			break
		}
		before := p.pos
		e := p.parseMathFrac(stop)
		if e != nil {
			exprs = append(exprs, e)
		} else if p.pos == before {
			// Guarantee progress on unparsable input.
			p.pos += p.segment()
		}
	}

	m := &Math{Exprs: exprs}
	if len(exprs) == 0 {
		at(m, Range{Start: start, End: start})
		return m
	}
	at(m, Range{Start: rangeOf(exprs[0]).Start, End: rangeOf(exprs[len(exprs)-1]).End})

	switch last := exprs[len(exprs)-1].(type) {
	case *Text:
		if danglingOps[last.Text] {
			p.errorf(rangeOf(last), "expected expression after %q", last.Text)
		}
	case *MathShorthand:
		if last.Text != "..." {
			p.errorf(rangeOf(last), "expected expression after %q", last.Text)
		}
	}
	return m
}

func (p *parser) parseMathFrac(stop stopFunc) Expr {
	lhs := p.parseMathAttach(stop)
	for lhs != nil {
		save := p.pos
		p.skipSpace()
		if !p.peekIs('/') || stop('/') {
			p.pos = save
			break
		}
		slash := Range{Start: p.pos, End: p.pos + 1}
		p.pos++
		p.skipSpace()
		if p.eof() || stop(p.peek()) {
			p.errorf(slash, "expected expression after %q", "/")
			break
		}
		rhs := p.parseMathAttach(stop)
		if rhs == nil {
			p.errorf(slash, "expected expression after %q", "/")
			break
		}
		f := &MathFrac{Num: lhs, Denom: rhs}
		at(f, Range{Start: rangeOf(lhs).Start, End: rangeOf(rhs).End})
		lhs = f
	}
	return lhs
}

func (p *parser) parseMathAttach(stop stopFunc) Expr {
	base := p.parseMathPrimary(stop)
	if base == nil {
		return nil
	}
	var (
		bottom, top Expr
		primes      *MathPrimes
		end         = rangeOf(base).End
	)
	if p.peekIs('\'') || p.peekIs('′') {
		primes = p.parsePrimes()
		end = rangeOf(primes).End
	}
	for {
		save := p.pos
		p.skipSpace()
		if p.eof() {
			p.pos = save
			break
		}
		c := p.peek()
		if (c != '_' && c != '^') || stop(c) {
			p.pos = save
			break
		}
		op := Range{Start: p.pos, End: p.pos + 1}
		p.pos++
		p.skipSpace()
		if p.eof() || stop(p.peek()) || p.peekIs('_') || p.peekIs('^') {
			p.errorf(op, "expected expression after %q", string(c))
			break
		}
		arg := p.parseMathPrimary(stop)
		if arg == nil {
			p.errorf(op, "expected expression after %q", string(c))
			break
		}
		if c == '_' {
			if bottom != nil {
				p.errorf(op, "duplicate subscript")
			}
			bottom = arg
		} else {
			if top != nil {
				p.errorf(op, "duplicate superscript")
			}
			top = arg
		}
		end = rangeOf(arg).End
	}
	if bottom == nil && top == nil && primes == nil {
		return base
	}
	a := &MathAttach{Base: base, Bottom: bottom, Top: top, Primes: primes}
	at(a, Range{Start: rangeOf(base).Start, End: end})
	return a
}

func (p *parser) parsePrimes() *MathPrimes {
	start := p.pos
	n := 0
	for p.peekIs('\'') || p.peekIs('′') {
		_, size := utf8.DecodeRuneInString(p.src[p.pos:])
		p.pos += size
		n++
	}
	pr := &MathPrimes{Count: n}
	at(pr, Range{Start: start, End: p.pos})
	return pr
}

func (p *parser) parseMathPrimary(stop stopFunc) Expr {
	start := p.pos
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])

	switch {
	case r == '#':
		p.pos += size
		return p.parseEmbedded()
	case r == '"':
		return p.parseStr()
	case r == '\\':
		return p.parseEscape()
	case r == '&':
		p.pos += size
		a := &MathAlignPoint{}
		at(a, Range{Start: start, End: p.pos})
		return a
	case r == '\'' || r == '′':
		return p.parsePrimes()
	case r == '√' || r == '∛' || r == '∜':
		return p.parseRoot(stop)
	case r == '_' || r == '^' || r == '/':
		p.pos += size
		p.errorf(Range{Start: start, End: p.pos}, "unexpected %q", string(r))
		return nil
	case isOpener(r):
		return p.parseDelimited()
	}

	for _, sh := range shorthands {
		if strings.HasPrefix(p.src[p.pos:], sh.text) {
			p.pos += len(sh.text)
			s := &MathShorthand{Text: sh.text, Symbol: sh.symbol}
			at(s, Range{Start: start, End: p.pos})
			return s
		}
	}

	switch {
	case unicode.IsLetter(r):
		return p.parseMathIdent()
	case unicode.IsDigit(r):
		return p.parseNumber()
	}

	p.pos += p.segment()
	t := &Text{Text: p.src[start:p.pos]}
	at(t, Range{Start: start, End: p.pos})
	return t
}

func (p *parser) parseRoot(stop stopFunc) Expr {
	start := p.pos
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	index := 0
	switch r {
	case '∛':
		index = 3
	case '∜':
		index = 4
	}
	p.skipSpace()
	if p.eof() || stop(p.peek()) {
		p.errorf(Range{Start: start, End: start + size}, "expected expression after %q", string(r))
		return nil
	}
	radicand := p.parseMathPrimary(stop)
	if radicand == nil {
		return nil
	}
	root := &MathRoot{Index: index, Radicand: radicand}
	at(root, Range{Start: start, End: rangeOf(radicand).End})
	return root
}

func (p *parser) parseDelimited() Expr {
	start := p.pos
	_, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	open := &Text{Text: p.src[start:p.pos]}
	at(open, Range{Start: start, End: p.pos})

	body := p.parseMathSeq(stopAtCloser)
	d := &MathDelimited{Open: open, Body: body}
	if p.eof() {
		p.errorf(rangeOf(open), "unclosed delimiter")
		at(d, Range{Start: start, End: p.pos})
		return d
	}
	closeStart := p.pos
	_, size = utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	d.Close = &Text{Text: p.src[closeStart:p.pos]}
	at(d.Close, Range{Start: closeStart, End: p.pos})
	at(d, Range{Start: start, End: p.pos})
	return d
}

// parseMathIdent parses a letter run. One letter is Text; more letters form
// an identifier, which becomes a call when directly followed by "(".
func (p *parser) parseMathIdent() Expr {
	start := p.pos
	letters := p.scanLetters()
	if letters == 1 {
		t := &Text{Text: p.src[start:p.pos]}
		at(t, Range{Start: start, End: p.pos})
		return t
	}
	// Dotted names such as arrow.r.
	for p.peekIs('.') && p.pos+1 < len(p.src) {
		r, _ := utf8.DecodeRuneInString(p.src[p.pos+1:])
		if !unicode.IsLetter(r) {
			break
		}
		p.pos++
		p.scanLetters()
	}
	ident := &MathIdent{Name: p.src[start:p.pos]}
	at(ident, Range{Start: start, End: p.pos})
	if p.peekIs('(') {
		args := p.parseMathArgs()
		call := &FuncCall{Callee: ident, Args: args}
		at(call, Range{Start: start, End: rangeOf(args).End})
		return call
	}
	return ident
}

// scanLetters consumes letter segments and returns how many it consumed.
func (p *parser) scanLetters() int {
	n := 0
	for !p.eof() && unicode.IsLetter(p.peek()) {
		p.pos += p.segment()
		n++
	}
	return n
}

func (p *parser) parseNumber() Expr {
	start := p.pos
	p.scanDigits()
	if p.peekIs('.') && p.pos+1 < len(p.src) && isASCIIDigit(p.src[p.pos+1]) {
		p.pos++
		p.scanDigits()
	}
	t := &Text{Text: p.src[start:p.pos]}
	at(t, Range{Start: start, End: p.pos})
	return t
}

func (p *parser) scanDigits() {
	for !p.eof() && unicode.IsDigit(p.peek()) {
		_, size := utf8.DecodeRuneInString(p.src[p.pos:])
		p.pos += size
	}
}

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

func (p *parser) parseEscape() Expr {
	start := p.pos
	p.pos++ // backslash
	if p.eof() {
		p.errorf(Range{Start: start, End: p.pos}, "expected escape sequence")
		return nil
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	e := &Escape{Char: r}
	at(e, Range{Start: start, End: p.pos})
	return e
}

func (p *parser) parseStr() Expr {
	start := p.pos
	p.pos++ // opening quote
	var b strings.Builder
	for {
		if p.eof() {
			p.errorf(Range{Start: start, End: p.pos}, "unclosed string")
			break
		}
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		p.pos += size
		if r == '"' {
			break
		}
		if r == '\\' && !p.eof() {
			e, esize := utf8.DecodeRuneInString(p.src[p.pos:])
			p.pos += esize
			switch e {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				b.WriteRune(e)
			}
			continue
		}
		b.WriteRune(r)
	}
	s := &Str{Value: b.String()}
	at(s, Range{Start: start, End: p.pos})
	return s
}

func (p *parser) parseMathArgs() *Args {
	start := p.pos
	p.pos++ // (
	var items []Node
	for {
		p.skipSpace()
		if p.eof() {
			p.errorf(Range{Start: start, End: start + 1}, "unclosed delimiter")
			break
		}
		if p.peekIs(')') {
			p.pos++
			break
		}
		items = append(items, p.parseMathArg())
		p.skipSpace()
		if p.peekIs(',') || p.peekIs(';') {
			p.pos++
		}
	}
	args := &Args{Items: items}
	at(args, Range{Start: start, End: p.pos})
	return args
}

func (p *parser) parseMathArg() Node {
	start := p.pos
	if name, ok := p.scanNamedPrefix(); ok {
		value := p.parseMathArgValue()
		ident := &Ident{Name: name.text}
		at(ident, name.rng)
		n := &Named{Name: ident, Expr: value}
		at(n, Range{Start: start, End: max(rangeOf(value).End, name.rng.End)})
		return n
	}
	return p.parseMathArgValue()
}

func (p *parser) parseMathArgValue() Expr {
	seq := p.parseMathSeq(stopAtArgEnd)
	if len(seq.Exprs) == 1 {
		return seq.Exprs[0]
	}
	return seq
}

type namedPrefix struct {
	text string
	rng  Range
}

// scanNamedPrefix consumes "ident:" if present (but not "ident:=").
func (p *parser) scanNamedPrefix() (namedPrefix, bool) {
	save := p.pos
	start := p.pos
	for !p.eof() {
		r := p.peek()
		if !(unicode.IsLetter(r) || r == '_' || r == '-' && p.pos > start || unicode.IsDigit(r) && p.pos > start) {
			break
		}
		_, size := utf8.DecodeRuneInString(p.src[p.pos:])
		p.pos += size
	}
	end := p.pos
	if end == start {
		p.pos = save
		return namedPrefix{}, false
	}
	p.skipSpace()
	if !p.peekIs(':') || strings.HasPrefix(p.src[p.pos:], ":=") {
		p.pos = save
		return namedPrefix{}, false
	}
	p.pos++
	return namedPrefix{text: p.src[start:end], rng: Range{Start: start, End: end}}, true
}

// ----------------------------------------------------------------------------
// Code mode

// parseEmbedded parses the expression after "#": an atom with optional calls.
func (p *parser) parseEmbedded() Expr {
	if p.eof() || unicode.IsSpace(p.peek()) {
		p.errorf(Range{Start: p.pos - 1, End: p.pos}, "expected expression after %q", "#")
		return nil
	}
	return p.parseCodePostfix()
}

func (p *parser) parseCodeExpr(minPrec int) Expr {
	p.skipSpace()
	start := p.pos
	var lhs Expr
	switch {
	case p.peekIs('-') || p.peekIs('+'):
		op := OpNeg
		if p.peekIs('+') {
			op = OpPos
		}
		p.pos++
		operand := p.parseCodeExpr(6)
		if operand == nil {
			return nil
		}
		u := &Unary{Op: op, Expr: operand}
		at(u, Range{Start: start, End: rangeOf(operand).End})
		lhs = u
	case p.peekKeyword("not"):
		p.pos += len("not")
		operand := p.parseCodeExpr(3)
		if operand == nil {
			return nil
		}
		u := &Unary{Op: OpNot, Expr: operand}
		at(u, Range{Start: start, End: rangeOf(operand).End})
		lhs = u
	default:
		lhs = p.parseCodePostfix()
	}
	if lhs == nil {
		return nil
	}

	for {
		save := p.pos
		p.skipSpace()
		op, size, ok := p.peekBinOp()
		if !ok || op.precedence() < minPrec {
			p.pos = save
			break
		}
		opRange := Range{Start: p.pos, End: p.pos + size}
		p.pos += size
		p.skipSpace()
		if p.eof() || p.peekIs(')') || p.peekIs(',') || p.peekIs(']') {
			p.errorf(opRange, "expected expression after %q", op.String())
			return lhs
		}
		rhs := p.parseCodeExpr(op.precedence() + 1)
		if rhs == nil {
			return lhs
		}
		b := &Binary{Op: op, Lhs: lhs, Rhs: rhs}
		at(b, Range{Start: rangeOf(lhs).Start, End: rangeOf(rhs).End})
		lhs = b
	}
	return lhs
}

func (p *parser) peekKeyword(kw string) bool {
	if !strings.HasPrefix(p.src[p.pos:], kw) {
		return false
	}
	rest := p.src[p.pos+len(kw):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !isIdentContinue(r)
}

func (p *parser) peekBinOp() (BinOp, int, bool) {
	rest := p.src[p.pos:]
	for _, cand := range []struct {
		text string
		op   BinOp
	}{
		{"==", OpEq}, {"!=", OpNeq}, {"<=", OpLeq}, {">=", OpGeq},
		{"<", OpLt}, {">", OpGt}, {"+", OpAdd}, {"-", OpSub},
		{"*", OpMul}, {"/", OpDiv},
	} {
		if strings.HasPrefix(rest, cand.text) {
			return cand.op, len(cand.text), true
		}
	}
	if p.peekKeyword("and") {
		return OpAnd, len("and"), true
	}
	if p.peekKeyword("or") {
		return OpOr, len("or"), true
	}
	return 0, 0, false
}

func isIdentStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }

func isIdentContinue(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}

func (p *parser) parseCodePostfix() Expr {
	e := p.parseCodePrimary()
	for e != nil && p.peekIs('(') {
		args := p.parseCodeArgs()
		call := &FuncCall{Callee: e, Args: args}
		at(call, Range{Start: rangeOf(e).Start, End: rangeOf(args).End})
		e = call
	}
	return e
}

func (p *parser) parseCodePrimary() Expr {
	if p.eof() {
		p.errorf(Range{Start: p.pos, End: p.pos}, "expected expression")
		return nil
	}
	start := p.pos
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	switch {
	case unicode.IsDigit(r):
		return p.parseCodeNumber()
	case r == '"':
		return p.parseStr()
	case r == '(':
		return p.parseParen()
	case r == '[':
		return p.parseContentBlock()
	case r == '$':
		return p.parseEquation()
	case isIdentStart(r):
		for !p.eof() && isIdentContinue(p.peek()) {
			_, n := utf8.DecodeRuneInString(p.src[p.pos:])
			p.pos += n
		}
		word := p.src[start:p.pos]
		rng := Range{Start: start, End: p.pos}
		var e Expr
		switch word {
		case "true", "false":
			e = &Bool{Value: word == "true"}
		case "none":
			e = &None{}
		case "auto":
			e = &Auto{}
		default:
			e = &Ident{Name: word}
		}
		at(e, rng)
		return e
	}
	p.pos += size
	p.errorf(Range{Start: start, End: p.pos}, "expected expression, found %q", string(r))
	return nil
}

func (p *parser) parseCodeNumber() Expr {
	start := p.pos
	p.scanDigits()
	isFloat := false
	if p.peekIs('.') && p.pos+1 < len(p.src) && isASCIIDigit(p.src[p.pos+1]) {
		isFloat = true
		p.pos++
		p.scanDigits()
	}
	if p.peekIs('e') || p.peekIs('E') {
		save := p.pos
		p.pos++
		if p.peekIs('+') || p.peekIs('-') {
			p.pos++
		}
		if !p.eof() && isASCIIDigit(p.src[p.pos]) {
			isFloat = true
			p.scanDigits()
		} else {
			p.pos = save
		}
	}
	text := p.src[start:p.pos]
	rng := Range{Start: start, End: p.pos}
	if isFloat {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.errorf(rng, "invalid float literal %q", text)
		}
		f := &Float{Value: v}
		at(f, rng)
		return f
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		p.errorf(rng, "integer literal %q is too large", text)
	}
	i := &Int{Value: v}
	at(i, rng)
	return i
}

// parseParen parses a parenthesized expression, an array or a dictionary.
func (p *parser) parseParen() Expr {
	start := p.pos
	p.pos++ // (
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], ":)") {
		p.pos += 2
		d := &Dict{}
		at(d, Range{Start: start, End: p.pos})
		return d
	}

	var (
		items     []Node
		sawComma  bool
		hasPairs  bool
		hasSingle bool
	)
	for {
		p.skipSpace()
		if p.eof() || p.peekIs(')') {
			break
		}
		item := p.parseParenItem()
		if item == nil {
			p.skipTo(')')
			break
		}
		switch item.(type) {
		case *Named, *Keyed:
			hasPairs = true
		case Expr:
			hasSingle = true
		}
		items = append(items, item)
		p.skipSpace()
		if p.peekIs(',') {
			sawComma = true
			p.pos++
			continue
		}
		if !p.eof() && !p.peekIs(')') {
			p.errorf(Range{Start: p.pos, End: p.pos + 1}, "expected comma or closing parenthesis")
			p.skipTo(')')
		}
		break
	}
	if p.eof() {
		p.errorf(Range{Start: start, End: start + 1}, "unclosed delimiter")
	} else {
		p.pos++ // )
	}
	rng := Range{Start: start, End: p.pos}

	if len(items) == 1 && !sawComma {
		if e, ok := items[0].(Expr); ok {
			paren := &Parenthesized{Expr: e}
			at(paren, rng)
			return paren
		}
	}
	if hasPairs {
		if hasSingle {
			p.errorf(rng, "expected named or keyed pair")
		}
		d := &Dict{Items: items}
		at(d, rng)
		return d
	}
	a := &Array{Items: items}
	at(a, rng)
	return a
}

func (p *parser) parseParenItem() Node {
	start := p.pos
	if strings.HasPrefix(p.src[p.pos:], "..") {
		p.pos += 2
		e := p.parseCodeExpr(0)
		if e == nil {
			return nil
		}
		s := &Spread{Expr: e}
		at(s, Range{Start: start, End: rangeOf(e).End})
		return s
	}
	key := p.parseCodeExpr(0)
	if key == nil {
		return nil
	}
	save := p.pos
	p.skipSpace()
	if !p.peekIs(':') {
		p.pos = save
		return key
	}
	p.pos++
	value := p.parseCodeExpr(0)
	if value == nil {
		return nil
	}
	rng := Range{Start: start, End: rangeOf(value).End}
	if ident, ok := key.(*Ident); ok {
		n := &Named{Name: ident, Expr: value}
		at(n, rng)
		return n
	}
	k := &Keyed{Key: key, Expr: value}
	at(k, rng)
	return k
}

func (p *parser) skipTo(r rune) {
	for !p.eof() && !p.peekIs(r) {
		_, size := utf8.DecodeRuneInString(p.src[p.pos:])
		p.pos += size
	}
}

func (p *parser) parseCodeArgs() *Args {
	start := p.pos
	p.pos++ // (
	var items []Node
	for {
		p.skipSpace()
		if p.eof() {
			p.errorf(Range{Start: start, End: start + 1}, "unclosed delimiter")
			break
		}
		if p.peekIs(')') {
			p.pos++
			break
		}
		item := p.parseCodeArg()
		if item == nil {
			p.skipTo(')')
			continue
		}
		items = append(items, item)
		p.skipSpace()
		if p.peekIs(',') {
			p.pos++
			continue
		}
		if !p.eof() && !p.peekIs(')') {
			p.errorf(Range{Start: p.pos, End: p.pos + 1}, "expected comma or closing parenthesis")
			p.skipTo(')')
		}
	}
	args := &Args{Items: items}
	at(args, Range{Start: start, End: p.pos})
	return args
}

func (p *parser) parseCodeArg() Node {
	start := p.pos
	if strings.HasPrefix(p.src[p.pos:], "..") {
		p.pos += 2
		e := p.parseCodeExpr(0)
		if e == nil {
			return nil
		}
		s := &Spread{Expr: e}
		at(s, Range{Start: start, End: rangeOf(e).End})
		return s
	}
	if name, ok := p.scanNamedPrefix(); ok {
		value := p.parseCodeExpr(0)
		if value == nil {
			return nil
		}
		ident := &Ident{Name: name.text}
		at(ident, name.rng)
		n := &Named{Name: ident, Expr: value}
		at(n, Range{Start: start, End: rangeOf(value).End})
		return n
	}
	return p.parseCodeExpr(0)
}

func (p *parser) parseContentBlock() Expr {
	start := p.pos
	p.pos++ // [
	bodyStart := p.pos
	var exprs []Expr
	for !p.eof() && !p.peekIs(']') {
		s := p.pos
		r := p.peek()
		switch {
		case unicode.IsSpace(r):
			p.skipSpace()
			sp := &Space{}
			at(sp, Range{Start: s, End: p.pos})
			exprs = append(exprs, sp)
		case r == '$':
			if e := p.parseEquation(); e != nil {
				exprs = append(exprs, e)
			}
		case r == '\\':
			if e := p.parseEscape(); e != nil {
				exprs = append(exprs, e)
			}
		default:
			for !p.eof() {
				c := p.peek()
				if unicode.IsSpace(c) || c == ']' || c == '$' || c == '\\' {
					break
				}
				_, size := utf8.DecodeRuneInString(p.src[p.pos:])
				p.pos += size
			}
			t := &Text{Text: p.src[s:p.pos]}
			at(t, Range{Start: s, End: p.pos})
			exprs = append(exprs, t)
		}
	}
	body := &Markup{Exprs: exprs}
	at(body, Range{Start: bodyStart, End: p.pos})
	if p.eof() {
		p.errorf(Range{Start: start, End: start + 1}, "unclosed delimiter")
	} else {
		p.pos++ // ]
	}
	cb := &ContentBlock{Body: body}
	at(cb, Range{Start: start, End: p.pos})
	return cb
}

func (p *parser) parseEquation() Expr {
	start := p.pos
	p.pos++ // $
	body := p.parseMathSeq(stopAtDollar)
	if p.eof() {
		p.errorf(Range{Start: start, End: start + 1}, "unclosed equation")
	} else {
		p.pos++ // $
	}
	eq := &Equation{Body: body}
	at(eq, Range{Start: start, End: p.pos})
	return eq
}
