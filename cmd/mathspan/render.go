package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gogpu/mathspan"
)

var renderFormat string

var renderCmd = &cobra.Command{
	Use:   "render [expression]",
	Short: "Render an expression and print the JSON result",
	Long: `Render an expression and print {"svg": ..., "subexpressions": [...]}
or {"error": ...}. The expression is read from stdin when omitted or "-".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderFormat, "format", "", "Image format: svg or tree (default from config)")
}

func runRender(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	format := renderFormat
	if format == "" {
		format = cfg.Output.Format
	}
	doc := mathspan.CompileJSON(src, mathspan.WithFormat(format))
	return writeJSON(cmd.OutOrStdout(), doc, cfg.Output.Indent)
}

// writeJSON writes doc on one line, or indented when indent is set.
func writeJSON(w io.Writer, doc string, indent bool) error {
	if indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(doc), "", "  "); err != nil {
			return err
		}
		doc = buf.String()
	}
	_, err := fmt.Fprintln(w, doc)
	return err
}
