package syntax

import "fmt"

// SyntaxError is a diagnostic produced while parsing.
type SyntaxError struct {
	Message string
	Range   Range
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Range)
}

// Root is the result of parsing: the tree plus any syntax errors.
type Root struct {
	Node   Node
	Errors []*SyntaxError
}

// Cast returns the root as a math node.
func (r *Root) Cast() (*Math, bool) {
	m, ok := r.Node.(*Math)
	return m, ok && m != nil
}

// Numberize assigns a span to every node of the tree, in pre-order, using
// numbers from within. It fails when the tree has more nodes than within
// can number; in that case no span is modified.
func (r *Root) Numberize(file FileID, within Interval) error {
	if within.Lo == 0 || within.Hi > 1<<numberBits || within.Lo >= within.Hi {
		return fmt.Errorf("%w: invalid interval [%d, %d)", ErrNumberize, within.Lo, within.Hi)
	}
	var count uint64
	Inspect(r.Node, func(Node) bool {
		count++
		return true
	})
	if count > within.Hi-within.Lo {
		return fmt.Errorf("%w: %d nodes, %d numbers", ErrNumberize, count, within.Hi-within.Lo)
	}
	next := within.Lo
	Inspect(r.Node, func(n Node) bool {
		n.base().span = newSpan(file, next)
		next++
		return true
	})
	return nil
}

// Source is a numbered source file. It resolves spans to byte ranges.
type Source struct {
	id     FileID
	text   string
	root   *Root
	ranges map[Span]Range
}

// NewSource builds a source from text and its numbered tree.
func NewSource(id FileID, text string, root *Root) *Source {
	s := &Source{
		id:     id,
		text:   text,
		root:   root,
		ranges: make(map[Span]Range),
	}
	Inspect(root.Node, func(n Node) bool {
		b := n.base()
		if !b.span.IsDetached() && b.span.File() == id {
			s.ranges[b.span] = b.rng
		}
		return true
	})
	return s
}

// ID returns the source's file id.
func (s *Source) ID() FileID { return s.id }

// Text returns the full source text.
func (s *Source) Text() string { return s.text }

// Root returns the parsed tree.
func (s *Source) Root() *Root { return s.root }

// Range resolves span to the byte range of the node it was assigned to.
// Detached spans and spans of other files do not resolve.
func (s *Source) Range(span Span) (Range, bool) {
	if span.IsDetached() || span.File() != s.id {
		return Range{}, false
	}
	r, ok := s.ranges[span]
	return r, ok
}
