//go:build js && wasm

// Command wasm exposes the compiler to JavaScript hosts.
//
// It installs one global function per entry of exports and then parks, since
// the functions stay callable only while the Go program is alive.
package main

import (
	"syscall/js"
)

// exports maps global JavaScript names to their implementations.
var exports = map[string]func(this js.Value, args []js.Value) any{
	"compileMathWithSubexpressions": compileMathWithSubexpressions,
	"mathspanFormats":               formats,
	"mathspanProtocolVersion":       protocolVersion,
}

func main() {
	global := js.Global()
	for name, fn := range exports {
		global.Set(name, js.FuncOf(fn))
	}
	select {}
}
