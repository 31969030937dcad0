package mathspan

import (
	"github.com/gogpu/mathspan/export"
	"github.com/gogpu/mathspan/fonts"
)

// Option configures a compilation.
//
// Example:
//
//	// Default: bundled Go fonts, SVG output
//	res, err := mathspan.Compile("a/b")
//
//	// Text dump of the frame tree instead of SVG
//	res, err := mathspan.Compile("a/b", mathspan.WithFormat("tree"))
type Option func(*options)

type options struct {
	book   *fonts.Book
	format string
}

func defaultOptions() options {
	return options{
		book:   nil, // fonts.Default() on first use
		format: "svg",
	}
}

// WithFontBook lays out with book instead of the bundled catalog.
func WithFontBook(book *fonts.Book) Option {
	return func(o *options) {
		o.book = book
	}
}

// WithFormat selects the exporter used for Result.SVG. The name must be
// registered with the export package; unknown names fall back to "svg".
func WithFormat(name string) Option {
	return func(o *options) {
		if export.IsRegistered(name) {
			o.format = name
		}
	}
}
