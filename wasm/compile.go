//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/gogpu/mathspan"
	"github.com/gogpu/mathspan/export"
	"github.com/gogpu/mathspan/serve"
)

const missingSource = `{"error":"source argument required"}`

// compileMathWithSubexpressions compiles one expression. The optional second
// argument names the exporter for the image field.
// JS: compileMathWithSubexpressions(source, format?) -> JSON string, either
// {"svg", "subexpressions"} or {"error"}
func compileMathWithSubexpressions(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return missingSource
	}
	var opts []mathspan.Option
	if len(args) > 1 && args[1].Type() == js.TypeString {
		opts = append(opts, mathspan.WithFormat(args[1].String()))
	}
	return mathspan.CompileJSON(args[0].String(), opts...)
}

// formats lists the registered exporter names.
// JS: mathspanFormats() -> JSON array string
func formats(this js.Value, args []js.Value) any {
	b, _ := json.Marshal(export.Names())
	return string(b)
}

// protocolVersion reports the JSON protocol version shared with the server.
// JS: mathspanProtocolVersion() -> string
func protocolVersion(this js.Value, args []js.Value) any {
	return serve.Version
}
