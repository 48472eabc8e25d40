package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/searchstims/internal/server"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Serve the searchstims tools over the MCP protocol (JSON-RPC on stdin/stdout).
Logs go to stderr; configure the server in your MCP client.

Environment variables:
  SEARCHSTIMS_LOG_LEVEL=debug    Enable debug logging
  SEARCHSTIMS_LOG_FILE=path      Also write JSON logs to a rotated file`,
		RunE: runServe,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(nil)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Debug("starting MCP server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(logger, Version).Run(ctx)
}
