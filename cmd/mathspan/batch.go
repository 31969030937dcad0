package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/mathspan"
)

var batchWorkers int

var batchCmd = &cobra.Command{
	Use:   "batch [file...]",
	Short: "Render one expression per line and print one JSON result per line",
	Long: `Render every non-empty line of the given files (stdin when none) and
print the results as NDJSON in input order. Lines are compiled concurrently.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Concurrent compilations (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	sources, err := readLines(cmd, args)
	if err != nil {
		return err
	}
	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Batch.Workers
	}
	docs, err := compileAll(cmd.Context(), sources, workers, func(src string) string {
		return mathspan.CompileJSON(src, mathspan.WithFormat(cfg.Output.Format))
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, doc := range docs {
		if _, err := fmt.Fprintln(out, doc); err != nil {
			return err
		}
	}
	return nil
}

// compileAll runs compile over sources with at most workers in flight and
// returns the documents in source order.
func compileAll(ctx context.Context, sources []string, workers int, compile func(string) string) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	docs := make([]string, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs[i] = compile(src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// readLines collects the non-blank lines of files, or of stdin.
func readLines(cmd *cobra.Command, files []string) ([]string, error) {
	if len(files) == 0 {
		return scanLines(cmd.InOrStdin())
	}
	var lines []string
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		ls, err := scanLines(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		lines = append(lines, ls...)
	}
	return lines, nil
}

func scanLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}
