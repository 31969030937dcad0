package serve

import "encoding/json"

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "compile" | "compile_batch" | "close"
	Payload json.RawMessage `json:"payload"`
}

// CompilePayload is the payload for "compile" requests
type CompilePayload struct {
	Source string `json:"source"`
}

// CompileBatchPayload is the payload for "compile_batch" requests
type CompileBatchPayload struct {
	Sources []string `json:"sources"`
}

// Response represents an outgoing NDJSON response. For compile requests Data
// holds the compiler's JSON document unchanged and Success reports whether
// that document is a result rather than an error.
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"` // "ready" | "compile" | "compile_batch" | "error"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version string `json:"version"`
}
