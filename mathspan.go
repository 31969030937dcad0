package mathspan

import (
	"strings"
	"time"

	"github.com/gogpu/mathspan/content"
	"github.com/gogpu/mathspan/correlate"
	"github.com/gogpu/mathspan/eval"
	"github.com/gogpu/mathspan/export"
	"github.com/gogpu/mathspan/fonts"
	"github.com/gogpu/mathspan/internal/logging"
	"github.com/gogpu/mathspan/layout"
	"github.com/gogpu/mathspan/syntax"

	// Registers the default exporters.
	_ "github.com/gogpu/mathspan/export/svg"
	_ "github.com/gogpu/mathspan/export/tree"
)

// mathFile is the virtual file id every compiled source is numbered under.
const mathFile syntax.FileID = 1

// Result is a successful compilation.
type Result struct {
	// SVG is the rendered expression. Its coordinate space is the one the
	// record boxes are expressed in.
	SVG string
	// Subexpressions lists the records in syntax tree pre-order, root first.
	Subexpressions []correlate.Record
}

// world is the environment a compilation sees: the font catalog and no
// current date.
type world struct {
	book *fonts.Book
}

func (w world) Book() *fonts.Book {
	if w.book == nil {
		return fonts.Default()
	}
	return w.book
}

func (world) Today() (time.Time, bool) { return time.Time{}, false }

// Compile renders src and correlates its subexpressions with the rendered
// geometry. Failures are *CompileError values; no partial result is returned.
func Compile(src string, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := logging.Logger()
	w := world{book: o.book}
	start := time.Now()

	root := syntax.ParseMath(src)
	if err := root.Numberize(mathFile, syntax.Full); err != nil {
		return nil, &CompileError{Kind: KindNumberize, Message: "Failed to numberize spans", Err: err}
	}
	if len(root.Errors) > 0 {
		msgs := make([]string, len(root.Errors))
		for i, e := range root.Errors {
			msgs[i] = e.Message
		}
		return nil, &CompileError{Kind: KindParse, Message: "Parse error: " + strings.Join(msgs, "\n")}
	}
	math, ok := root.Cast()
	if !ok {
		return nil, &CompileError{Kind: KindCast, Message: "Failed to cast to Math"}
	}
	log.Debug("mathspan: parsed", "bytes", len(src), "elapsed", time.Since(start))

	body, err := eval.Eval(math, w)
	if err != nil {
		return nil, &CompileError{Kind: KindEval, Message: "Eval error: " + err.Error(), Err: err}
	}
	eq, err := content.Pack(body, true)
	if err != nil {
		return nil, &CompileError{Kind: KindPack, Message: "Failed to pack equation", Err: err}
	}
	log.Debug("mathspan: evaluated", "elapsed", time.Since(start))

	frame, err := layout.LayoutEquation(eq, w, layout.DefaultStyles())
	if err != nil {
		return nil, &CompileError{Kind: KindLayout, Message: "Layout error: " + err.Error(), Err: err}
	}
	log.Debug("mathspan: laid out", "width", frame.Width(), "height", frame.Height(), "elapsed", time.Since(start))

	exporter, err := export.New(o.format)
	if err != nil {
		return nil, &CompileError{Kind: KindExport, Message: "Export error: " + err.Error(), Err: err}
	}
	source := syntax.NewSource(mathFile, src, root)
	records := correlate.Subexpressions(math, src, frame, source)
	out := exporter.Export(frame)
	log.Debug("mathspan: compiled", "records", len(records), "elapsed", time.Since(start))

	return &Result{SVG: out, Subexpressions: records}, nil
}
