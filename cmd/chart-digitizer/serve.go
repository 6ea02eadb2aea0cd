package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/chart-digitizer-mcp/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Serve the chart digitization tools over the MCP protocol.

Requests are read from stdin and responses written to stdout, one JSON-RPC
message per line. Logs go to stderr. Configure the command in your MCP
client, e.g.:

  {"command": "chart-digitizer", "args": ["serve"]}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("ocr-language", "eng", "Tesseract language list for diagram_ocr")
	addHeuristicFlags(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Debugw("MCP server starting", "version", version, "build_time", buildTime, "commit", gitCommit)

	srv := server.New(server.Options{
		Digitizer:   cfg.Options(),
		OCRLanguage: cfg.OCRLanguage,
		Version:     version,
	}, log)
	return srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
}
