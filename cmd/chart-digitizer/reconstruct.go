package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/digitizer"
)

// reconstructCmd represents the reconstruct command
var reconstructCmd = &cobra.Command{
	Use:   "reconstruct <diagram.json>",
	Short: "Reconstruct one diagram",
	Long: `Reconstruct a digital diagram from one unified detection document.

The document holds the detection regions (labels, legend_boxes), the traced
polylines (lines) and the associated OCR fragments (ocr_results). Use "-" to
read it from stdin.

Examples:
  # Print the digital diagram as JSON
  chart-digitizer reconstruct diagram_1.json

  # Write YAML to a file with a stricter log-scale test
  chart-digitizer reconstruct diagram_1.json --format yaml -o digital.yaml --log-step-tolerance 0.1`,
	Args: cobra.ExactArgs(1),
	RunE: runReconstruct,
}

func init() {
	rootCmd.AddCommand(reconstructCmd)

	reconstructCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	reconstructCmd.Flags().String("format", "json", "output format (json, yaml)")
	addHeuristicFlags(reconstructCmd.Flags())
}

func runReconstruct(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	in, err := readInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	out, err := digitizer.New(cfg.Options(), log).Reconstruct(in)
	if err != nil {
		return err
	}

	data, err := encode(out, cfg.OutputFormat)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Infow("Digital diagram written", "path", path)
	return nil
}

// readInput loads a detection document from path, or from stdin for "-".
func readInput(path string, stdin io.Reader) (*diagram.Input, error) {
	if path != "-" {
		return diagram.LoadInput(path)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return diagram.DecodeInput(data)
}
