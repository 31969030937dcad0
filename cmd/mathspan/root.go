package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/mathspan"
	"github.com/gogpu/mathspan/internal/config"
)

var (
	cfgPath string
	verbose bool
	quiet   bool

	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "mathspan",
	Short: "mathspan - render math and locate its subexpressions",
	Long: `mathspan renders a math expression to SVG and reports, for every
subexpression of the source, the byte range it came from and the box it
occupies in the picture.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default ./"+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(fontsCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg = c
	mathspan.SetLogger(newLogger(cmd.ErrOrStderr(), c))
	return nil
}

// newLogger builds the stderr logger. --verbose and --quiet win over the
// configured level.
func newLogger(w io.Writer, c *config.Config) *slog.Logger {
	level, _ := c.Level()
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// readSource returns the expression from args, or from stdin when no
// argument or "-" is given. One trailing newline is dropped.
func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	s := strings.TrimSuffix(string(b), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}
