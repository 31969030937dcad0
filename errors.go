package mathspan

// ErrorKind is the pipeline stage a compilation failed in.
type ErrorKind int

const (
	// KindNumberize means span numbers ran out for the syntax tree.
	KindNumberize ErrorKind = iota
	// KindParse means the source has syntax errors.
	KindParse
	// KindCast means the parsed tree is not a math node.
	KindCast
	// KindEval means evaluation produced diagnostics.
	KindEval
	// KindPack means the evaluated content could not become an equation.
	KindPack
	// KindLayout means layout produced diagnostics.
	KindLayout
	// KindExport means the output format has no registered exporter.
	KindExport
)

var kindNames = [...]string{
	KindNumberize: "numberize",
	KindParse:     "parse",
	KindCast:      "cast",
	KindEval:      "eval",
	KindPack:      "pack",
	KindLayout:    "layout",
	KindExport:    "export",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// CompileError reports a failed compilation. Message is the text surfaced
// to JSON callers, for example "Parse error: unclosed delimiter".
type CompileError struct {
	Kind    ErrorKind
	Message string
	// Err is the underlying stage error, if any.
	Err error
}

func (e *CompileError) Error() string { return e.Message }

func (e *CompileError) Unwrap() error { return e.Err }
