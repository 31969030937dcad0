package syntax

import (
	"errors"
	"fmt"
)

// FileID identifies the virtual file a span belongs to.
type FileID uint16

// Span is an opaque identity token attached to every syntax node. It does not
// carry a byte range itself: resolve it through a Source.
//
// The upper 16 bits hold the file id, the lower 48 bits the node number.
type Span uint64

// Detached is the span of nodes that were never numbered. It never resolves.
const Detached Span = 0

const (
	numberBits = 48
	numberMask = 1<<numberBits - 1
)

// ErrNumberize is returned when a tree does not fit into the number interval
// given to Numberize.
var ErrNumberize = errors.New("syntax: not enough span numbers")

func newSpan(file FileID, number uint64) Span {
	return Span(uint64(file)<<numberBits | number&numberMask)
}

// File returns the file id encoded in the span.
func (s Span) File() FileID { return FileID(uint64(s) >> numberBits) }

// Number returns the node number encoded in the span.
func (s Span) Number() uint64 { return uint64(s) & numberMask }

// IsDetached reports whether the span carries no position information.
func (s Span) IsDetached() bool { return s.Number() == 0 }

// Interval is the half-open range of node numbers available to Numberize.
type Interval struct {
	Lo, Hi uint64
}

// Full is the widest interval of node numbers.
var Full = Interval{Lo: 1, Hi: 1 << numberBits}

// Range is a half-open byte range [Start, End) into source text.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by r.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether o lies fully inside r. Equal ranges contain each other.
func (r Range) Contains(o Range) bool {
	return o.Start >= r.Start && o.End <= r.End
}

// Union returns the smallest range covering r and o.
func (r Range) Union(o Range) Range {
	return Range{Start: min(r.Start, o.Start), End: max(r.End, o.End)}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}
