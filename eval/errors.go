package eval

import (
	"errors"
	"strings"

	"github.com/gogpu/mathspan/syntax"
)

// ErrNoDate is reported by today() when the world cannot supply a date.
var ErrNoDate = errors.New("unable to get the current date")

// Diagnostic is a single evaluation error tied to a span.
type Diagnostic struct {
	Span    syntax.Span
	Message string
}

// Errors is the list of diagnostics of a failed evaluation.
type Errors []Diagnostic

func (e Errors) Error() string {
	return strings.Join(e.Messages(), "\n")
}

// Messages returns the diagnostic messages in report order.
func (e Errors) Messages() []string {
	out := make([]string, len(e))
	for i, d := range e {
		out[i] = d.Message
	}
	return out
}
