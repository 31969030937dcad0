// Package layout turns typeset math content into positioned frames of glyph
// runs and shapes.
package layout

import (
	"strings"

	"github.com/gogpu/mathspan/fonts"
	"github.com/gogpu/mathspan/syntax"
)

// World supplies fonts to layout.
type World interface {
	Book() *fonts.Book
}

// Styles are the properties every equation is laid out with.
type Styles struct {
	// Families is the font family preference list.
	Families []string
	Weight   int
	// Size is the base font size in points.
	Size    float64
	Fill    Color
	Display bool
}

// DefaultStyles returns display math at 11pt in the Go family, weight 450,
// filled white.
func DefaultStyles() Styles {
	return Styles{
		Families: []string{"Go", "Go Mono"},
		Weight:   450,
		Size:     11,
		Fill:     White,
		Display:  true,
	}
}

// Error is a layout failure tied to a span.
type Error struct {
	Span    syntax.Span
	Message string
}

// Errors is the list of failures of a layout run.
type Errors []Error

func (e Errors) Error() string {
	return strings.Join(e.Messages(), "\n")
}

// Messages returns the messages in report order.
func (e Errors) Messages() []string {
	out := make([]string, len(e))
	for i, err := range e {
		out[i] = err.Message
	}
	return out
}
