package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/mathspan"
	"github.com/gogpu/mathspan/internal/config"
)

// newTestCmd returns a bare command wired to buffers, with stdin set to in.
func newTestCmd(in string) (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(in))
	return cmd, &out
}

func resetConfig(t *testing.T) {
	t.Helper()
	cfg = config.Default()
	renderFormat, inspectColor, batchWorkers = "", "", 0
}

func TestRunVersion(t *testing.T) {
	cmd, out := newTestCmd("")
	require.NoError(t, runVersion(cmd, nil))

	assert.Contains(t, out.String(), "mathspan dev")
	assert.Contains(t, out.String(), "Protocol: 1.0.0")
	assert.Contains(t, out.String(), "OS/Arch:")
}

func TestRunRender(t *testing.T) {
	resetConfig(t)
	cmd, out := newTestCmd("")
	require.NoError(t, runRender(cmd, []string{"a+b"}))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Contains(t, doc, "svg")
	assert.Contains(t, doc, "subexpressions")
	assert.Equal(t, 1, strings.Count(out.String(), "\n"), "compact output is one line")
}

func TestRunRenderStdinIndented(t *testing.T) {
	resetConfig(t)
	cfg.Output.Indent = true
	cmd, out := newTestCmd("a +\n")
	require.NoError(t, runRender(cmd, nil))

	var doc map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.True(t, strings.HasPrefix(doc["error"], "Parse error: "))
	assert.Contains(t, out.String(), "{\n  \"error\"")
}

func TestRunRenderTree(t *testing.T) {
	resetConfig(t)
	renderFormat = "tree"
	cmd, out := newTestCmd("")
	require.NoError(t, runRender(cmd, []string{"x"}))

	var doc struct {
		SVG string `json:"svg"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.True(t, strings.HasPrefix(doc.SVG, "frame "))
}

func TestRunInspect(t *testing.T) {
	resetConfig(t)
	inspectColor = "never"
	cmd, out := newTestCmd("")
	require.NoError(t, runInspect(cmd, []string{"a/b"}))

	text := out.String()
	assert.Contains(t, text, `source "a/b"`)
	assert.Contains(t, text, "(3 subexpressions)")
	assert.Contains(t, text, "RANGE")
	assert.Contains(t, text, "[0,3)")
	assert.Contains(t, text, "[2,3)")
}

func TestRunInspectError(t *testing.T) {
	resetConfig(t)
	inspectColor = "never"
	cmd, out := newTestCmd("")
	err := runInspect(cmd, []string{"foo"})
	require.Error(t, err)
	assert.Contains(t, out.String(), "error: Eval error: unknown variable: foo")
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, colorEnabled("always", &buf))
	assert.False(t, colorEnabled("never", &buf))
	assert.False(t, colorEnabled("auto", &buf), "buffers are not terminals")
}

func TestRunBatchKeepsOrder(t *testing.T) {
	resetConfig(t)
	batchWorkers = 3
	cmd, out := newTestCmd("a+b\n\nx^2\r\na +\nfoo\n")
	require.NoError(t, runBatch(cmd, nil))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"text":"a+b"`)
	assert.Contains(t, lines[1], `"text":"x^2"`)
	assert.Contains(t, lines[2], `"error":"Parse error: `)
	assert.Contains(t, lines[3], `"error":"Eval error: unknown variable: foo"`)
}

func TestRunBatchFiles(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("a\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("b\nc\n"), 0o600))

	cmd, out := newTestCmd("")
	require.NoError(t, runBatch(cmd, []string{a, b}))
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 3)

	require.Error(t, runBatch(cmd, []string{filepath.Join(dir, "missing.txt")}))
}

func TestCompileAll(t *testing.T) {
	var inFlight, peak atomic.Int32
	compile := func(src string) string {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer inFlight.Add(-1)
		return strings.ToUpper(src)
	}
	docs, err := compileAll(context.Background(), []string{"a", "b", "c", "d"}, 2, compile)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, docs)
	assert.LessOrEqual(t, peak.Load(), int32(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = compileAll(ctx, []string{"a"}, 1, compile)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadSource(t *testing.T) {
	cmd, _ := newTestCmd("x^2\r\n")
	src, err := readSource(cmd, []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "x^2", src)

	src, err = readSource(cmd, []string{"a/b"})
	require.NoError(t, err)
	assert.Equal(t, "a/b", src)
}

func TestRunServeUsesConfigLimits(t *testing.T) {
	resetConfig(t)
	cfg.Serve.MaxBatch = 1
	cmd, out := newTestCmd(
		`{"type":"compile","payload":{"source":"a+b"}}` + "\n" +
			`{"type":"compile_batch","payload":{"sources":["a","b"]}}` + "\n")
	require.NoError(t, runServe(cmd, nil))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"type":"ready"`)
	assert.Contains(t, lines[1], `"success":true`)
	assert.Contains(t, lines[2], "batch of 2 sources exceeds limit of 1")
}

func TestRunFonts(t *testing.T) {
	cmd, out := newTestCmd("")
	require.NoError(t, runFonts(cmd, nil))
	assert.Contains(t, out.String(), "Go Mono")
	assert.Contains(t, out.String(), "italic")
}

func TestLoadConfigFlags(t *testing.T) {
	resetConfig(t)
	t.Chdir(t.TempDir())
	for _, k := range []string{config.EnvLogLevel, config.EnvLogFormat, config.EnvFormat, config.EnvIndent, config.EnvColor, config.EnvWorkers, config.EnvMaxBytes, config.EnvMaxBatch} {
		t.Setenv(k, "")
	}
	t.Setenv(config.EnvWorkers, "7")
	cfgPath = ""
	defer func() {
		verbose = false
		mathspan.SetLogger(nil)
	}()
	verbose = true

	cmd, _ := newTestCmd("")
	require.NoError(t, loadConfig(cmd, nil))
	assert.Equal(t, 7, cfg.Batch.Workers)

	cfgPath = filepath.Join(t.TempDir(), "missing.yaml")
	defer func() { cfgPath = "" }()
	assert.Error(t, loadConfig(cmd, nil))
}
