package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gogpu/mathspan"
	"github.com/gogpu/mathspan/correlate"
)

var inspectColor string

var inspectCmd = &cobra.Command{
	Use:   "inspect [expression]",
	Short: "Show the subexpressions of an expression as a table",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectColor, "color", "", "Color output: auto, always, never (default from config)")
}

// styles holds color formatters for inspect output
type styles struct {
	heading *color.Color
	rng     *color.Color
	match   *color.Color
	dim     *color.Color
	err     *color.Color
}

// newStyles creates color formatters; enabled=false disables all of them.
func newStyles(enabled bool) *styles {
	s := &styles{
		heading: color.New(color.Bold),
		rng:     color.New(color.FgHiGreen),
		match:   color.New(color.Bold, color.FgYellow),
		dim:     color.New(color.Faint),
		err:     color.New(color.Bold, color.FgHiRed),
	}
	for _, c := range []*color.Color{s.heading, s.rng, s.match, s.dim, s.err} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// colorEnabled resolves a color mode against the terminal and NO_COLOR.
func colorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	return os.Getenv("NO_COLOR") == ""
}

func runInspect(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	mode := inspectColor
	if mode == "" {
		mode = cfg.Output.Color
	}
	s := newStyles(colorEnabled(mode, out))

	res, err := mathspan.Compile(src)
	if err != nil {
		s.err.Fprint(out, "error: ")
		fmt.Fprintln(out, err)
		return err
	}

	s.heading.Fprint(out, "source ")
	fmt.Fprintf(out, "%q  ", src)
	s.dim.Fprintf(out, "(%d subexpressions)\n\n", len(res.Subexpressions))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANGE\tSOURCE\tX\tY\tW\tH\tGLYPHS\n")
	for _, r := range res.Subexpressions {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%d\n",
			s.rng.Sprintf("[%d,%d)", r.SourceStart, r.SourceEnd),
			highlight(s, src, r),
			r.X, r.Y, r.Width, r.Height, r.GlyphLines)
	}
	return w.Flush()
}

// highlight renders src with the record's range emphasized.
func highlight(s *styles, src string, r correlate.Record) string {
	return s.dim.Sprint(src[:r.SourceStart]) +
		s.match.Sprint(src[r.SourceStart:r.SourceEnd]) +
		s.dim.Sprint(src[r.SourceEnd:])
}
