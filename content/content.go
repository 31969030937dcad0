// Package content defines the typeset math elements produced by evaluation
// and consumed by layout. Every element remembers the span of the syntax
// node it was created from, so rendered glyphs can be traced back to source.
package content

import (
	"errors"

	"github.com/gogpu/mathspan/syntax"
)

// ErrEmptyEquation is returned by Pack when there is no body to wrap.
var ErrEmptyEquation = errors.New("content: equation body is missing")

// Content is implemented by every element.
type Content interface {
	Span() syntax.Span
	contentNode()
}

// Elem carries the span shared by all elements.
type Elem struct {
	span syntax.Span
}

// Span returns the span of the syntax node the element came from.
func (e Elem) Span() syntax.Span { return e.span }

// At returns an Elem for span.
func At(span syntax.Span) Elem { return Elem{span: span} }

// Variant selects the glyph style of a text atom.
type Variant int

const (
	// Auto uses italic for single letters and upright for everything else.
	Auto Variant = iota
	Upright
	Italic
	Bold
)

func (v Variant) String() string {
	switch v {
	case Auto:
		return "auto"
	case Upright:
		return "upright"
	case Italic:
		return "italic"
	case Bold:
		return "bold"
	default:
		return "unknown"
	}
}

// Sequence is a horizontal run of elements.
type Sequence struct {
	Elem
	Children []Content
}

// Text is an atom: a letter, number, operator or word.
type Text struct {
	Elem
	Text    string
	Variant Variant
	// Op marks upright operator names such as sin, laid out as ordinary atoms
	// with thin spacing around them.
	Op bool
}

// Frac is a fraction.
type Frac struct {
	Elem
	Num   Content
	Denom Content
}

// Binom is a binomial coefficient.
type Binom struct {
	Elem
	Upper Content
	Lower Content
}

// Attach is a base with optional attachments.
type Attach struct {
	Elem
	Base   Content
	Top    Content
	Bottom Content
	Primes Content
}

// Root is a radical. Index may be nil.
type Root struct {
	Elem
	Index    Content
	Radicand Content
}

// LR is a body with delimiters scaled to its height. Open and Close may be nil.
type LR struct {
	Elem
	Open  *Text
	Body  Content
	Close *Text
}

// Vec is a column vector.
type Vec struct {
	Elem
	Children []Content
	Open     *Text
	Close    *Text
}

// Styled applies a variant to every atom of Child.
type Styled struct {
	Elem
	Child   Content
	Variant Variant
}

// Line draws a rule over or under Child.
type Line struct {
	Elem
	Child Content
	Over  bool
}

// AlignPoint marks an alignment position.
type AlignPoint struct {
	Elem
}

// Equation wraps a math body for layout.
type Equation struct {
	Elem
	Body  Content
	Block bool
}

// Pack wraps body into an equation.
func Pack(body Content, block bool) (*Equation, error) {
	if body == nil {
		return nil, ErrEmptyEquation
	}
	return &Equation{Elem: At(body.Span()), Body: body, Block: block}, nil
}

// Empty returns an empty sequence at span.
func Empty(span syntax.Span) *Sequence {
	return &Sequence{Elem: At(span)}
}

func (*Sequence) contentNode()   {}
func (*Text) contentNode()       {}
func (*Frac) contentNode()       {}
func (*Binom) contentNode()      {}
func (*Attach) contentNode()     {}
func (*Root) contentNode()       {}
func (*LR) contentNode()         {}
func (*Vec) contentNode()        {}
func (*Styled) contentNode()     {}
func (*Line) contentNode()       {}
func (*AlignPoint) contentNode() {}
func (*Equation) contentNode()   {}
