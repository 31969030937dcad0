package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gogpu/mathspan"
	"github.com/gogpu/mathspan/serve"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as streaming server for host integration",
	Long: `Run mathspan as a long-lived streaming server that accepts compile
requests via stdin and writes results to stdout using NDJSON format.

The font catalog is loaded once and shared by all requests. Request limits
come from the serve config section and batch parallelism from the batch
section. The server runs until stdin closes, a close request arrives or
SIGTERM is received.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	compile := func(src string) string {
		return mathspan.CompileJSON(src, mathspan.WithFormat(cfg.Output.Format))
	}
	srv := serve.NewServer(compile, cmd.InOrStdin(), cmd.OutOrStdout(),
		serve.WithMaxRequestBytes(cfg.Serve.MaxRequestBytes),
		serve.WithMaxBatch(cfg.Serve.MaxBatch),
		serve.WithWorkers(cfg.Batch.Workers),
	)
	return srv.Run(ctx)
}
