package mathspan

import (
	"encoding/json"

	"github.com/gogpu/mathspan/correlate"
)

// fallbackJSON is returned when a response cannot be encoded.
const fallbackJSON = `{"error":"JSON serialization failed"}`

type successResponse struct {
	SVG            string             `json:"svg"`
	Subexpressions []correlate.Record `json:"subexpressions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// marshal is swapped in tests to exercise the fallback.
var marshal = json.Marshal

// CompileJSON is Compile for JSON hosts. It always returns a well-formed
// JSON object: {"svg": ..., "subexpressions": [...]} on success and
// {"error": ...} otherwise.
func CompileJSON(src string, opts ...Option) string {
	res, err := Compile(src, opts...)
	if err != nil {
		return encode(errorResponse{Error: err.Error()})
	}
	subs := res.Subexpressions
	if subs == nil {
		subs = []correlate.Record{}
	}
	return encode(successResponse{SVG: res.SVG, Subexpressions: subs})
}

func encode(v any) string {
	b, err := marshal(v)
	if err != nil {
		Logger().Warn("mathspan: encoding response", "error", err)
		return fallbackJSON
	}
	return string(b)
}
