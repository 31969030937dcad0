// Package mathspan renders math expressions and reports where each
// subexpression ended up in the picture.
//
// # Overview
//
// A compile call parses a standalone math expression, evaluates it, lays it
// out with the bundled Go fonts and serializes the result as SVG. Alongside
// the SVG it returns one record per subexpression of the source: the exact
// source text, its byte range, and the bounding box of everything it
// rendered, in the coordinate space of the SVG.
//
// # Quick Start
//
//	res, err := mathspan.Compile("x^(y+1)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range res.Subexpressions {
//	    fmt.Printf("%-8s [%d,%d) at (%.1f, %.1f)\n",
//	        r.Text, r.SourceStart, r.SourceEnd, r.X, r.Y)
//	}
//
// Hosts that speak JSON use [CompileJSON], which never fails and encodes
// errors as {"error": "..."}.
//
// # Architecture
//
// The pipeline is organized into:
//   - syntax: parser, spans and the span resolver
//   - eval, content: evaluation into typeset content
//   - fonts, layout: font catalog and math layout into frames
//   - correlate: span extraction, fragment collection and correlation
//   - export: SVG and text serializers for frames
//
// # Logging
//
// mathspan produces no log output by default. See [SetLogger].
package mathspan
