// Package serve runs the compiler behind a newline-delimited JSON protocol,
// for hosts that keep one process around for many compilations.
//
// Every request is one line. The server answers each line with one response
// line, in request order, after announcing itself with a "ready" response.
package serve

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/mathspan/internal/logging"
)

// Version is the server protocol version
const Version = "1.0.0"

// Defaults for the request limits.
const (
	DefaultMaxRequestBytes = 1 << 20
	DefaultMaxBatch        = 256
	DefaultWorkers         = 4
)

// CompileFunc compiles one source into a JSON document, either a result or
// {"error": ...}. It must always return valid JSON and be safe for
// concurrent use.
type CompileFunc func(src string) string

// Option configures a Server. Non-positive values keep the default.
type Option func(*Server)

// WithMaxRequestBytes caps the length of a request line.
func WithMaxRequestBytes(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxRequestBytes = n
		}
	}
}

// WithMaxBatch caps the number of sources in one compile_batch request.
func WithMaxBatch(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

// WithWorkers sets how many sources of a batch compile at once.
func WithWorkers(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.workers = n
		}
	}
}

// Server answers compile requests read from one stream on another.
type Server struct {
	compile CompileFunc
	in      io.Reader
	encoder *json.Encoder

	maxRequestBytes int
	maxBatch        int
	workers         int
}

// NewServer creates a server reading requests from in and writing responses
// to out.
func NewServer(compile CompileFunc, in io.Reader, out io.Writer, opts ...Option) *Server {
	s := &Server{
		compile:         compile,
		in:              in,
		encoder:         json.NewEncoder(out),
		maxRequestBytes: DefaultMaxRequestBytes,
		maxBatch:        DefaultMaxBatch,
		workers:         DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// line is one request line, or the error that ended reading.
type line struct {
	data []byte
	err  error
}

// Run answers requests until input ends or a close request arrives, and
// then returns nil. It returns the context error when ctx is cancelled.
// A line longer than the request limit ends the session, since the stream
// cannot be resynchronized.
func (s *Server) Run(ctx context.Context) error {
	s.sendReady()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan line)
	go s.read(ctx, lines)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ln, ok := <-lines:
			if !ok {
				return nil
			}
			if ln.err != nil {
				s.sendError("decode", ln.err.Error())
				return nil
			}
			if s.handle(ctx, ln.data) {
				return nil
			}
		}
	}
}

// read feeds non-blank lines to lines and closes it at end of input.
func (s *Server) read(ctx context.Context, lines chan<- line) {
	defer close(lines)

	sc := bufio.NewScanner(s.in)
	sc.Buffer(make([]byte, 0, min(64*1024, s.maxRequestBytes)), s.maxRequestBytes)
	emit := func(ln line) bool {
		select {
		case lines <- ln:
			return true
		case <-ctx.Done():
			return false
		}
	}
	for sc.Scan() {
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		if !emit(line{data: bytes.Clone(data)}) {
			return
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			err = fmt.Errorf("request exceeds %d bytes", s.maxRequestBytes)
		}
		emit(line{err: err})
	}
}

// handle answers one request line and reports whether the session is over.
// Malformed lines are answered with a decode error and skipped.
func (s *Server) handle(ctx context.Context, data []byte) bool {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendError("decode", err.Error())
		return false
	}
	logging.Logger().Debug("serve: request", "type", req.Type)

	switch req.Type {
	case "compile":
		s.handleCompile(req.Payload)
	case "compile_batch":
		s.handleCompileBatch(ctx, req.Payload)
	case "close":
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
	}
	return false
}

func (s *Server) sendReady() {
	data, _ := json.Marshal(ReadyData{Version: Version})
	s.send(Response{
		Success: true,
		Type:    "ready",
		Data:    data,
	})
}

func (s *Server) handleCompile(payload json.RawMessage) {
	var p CompilePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("compile", err.Error())
		return
	}

	doc := s.compile(p.Source)
	s.send(Response{
		Success: !isError(doc),
		Type:    "compile",
		Data:    json.RawMessage(doc),
	})
}

func (s *Server) handleCompileBatch(ctx context.Context, payload json.RawMessage) {
	var p CompileBatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("compile_batch", err.Error())
		return
	}
	if len(p.Sources) > s.maxBatch {
		s.sendError("compile_batch", fmt.Sprintf("batch of %d sources exceeds limit of %d", len(p.Sources), s.maxBatch))
		return
	}

	docs, err := s.compileAll(ctx, p.Sources)
	if err != nil {
		s.sendError("compile_batch", err.Error())
		return
	}
	ok := true
	for _, doc := range docs {
		ok = ok && !isError(string(doc))
	}

	data, _ := json.Marshal(docs)
	s.send(Response{
		Success: ok,
		Type:    "compile_batch",
		Data:    data,
	})
}

// compileAll compiles sources on up to s.workers goroutines, keeping order.
func (s *Server) compileAll(ctx context.Context, sources []string) ([]json.RawMessage, error) {
	docs := make([]json.RawMessage, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs[i] = json.RawMessage(s.compile(src))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Server) sendError(reqType, msg string) {
	s.send(Response{
		Success: false,
		Type:    reqType,
		Error:   msg,
	})
}

func (s *Server) send(resp Response) {
	if err := s.encoder.Encode(resp); err != nil {
		logging.Logger().Warn("serve: writing response", "type", resp.Type, "error", err)
	}
}

// isError reports whether doc is an {"error": ...} document.
func isError(doc string) bool {
	var v struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return true
	}
	return v.Error != nil
}
