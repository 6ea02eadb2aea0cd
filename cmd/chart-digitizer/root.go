package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ironsheep/chart-digitizer-mcp/internal/config"
	"github.com/ironsheep/chart-digitizer-mcp/internal/digitizer"
	"github.com/ironsheep/chart-digitizer-mcp/internal/logger"
)

// Version information - set by ldflags during build
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "chart-digitizer",
	Short: "Reconstruct calibrated data from detected chart elements",
	Long: `chart-digitizer turns the detection output of a scanned datasheet chart
(regions, OCR text and traced curves) into a digital diagram: axes with
parsed ticks and titles, every curve in data coordinates with its label,
and structured legends.

Commands:
  - reconstruct: one detection document to a digital diagram
  - batch: every diagram_*.json in a directory
  - ocr: read a diagram image and produce ocr_results
  - annotate: draw the detections onto the diagram image
  - serve: run the MCP server on stdio`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.chart-digitizer.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")
	pf.String("log-file", "", "also append logs to this file")
}

// addHeuristicFlags registers the reconstruction tuning flags.
func addHeuristicFlags(fs *pflag.FlagSet) {
	d := digitizer.DefaultOptions()
	fs.Float64("log-step-tolerance", d.Axis.LogStepTolerance, "max spread of log10 tick steps for a log axis")
	fs.Int("value-decimals", d.Axis.ValueDecimals, "decimals used when de-duplicating tick values")
	fs.Float64("pixel-bucket", d.Axis.PixelBucket, "pixel bucket size used when de-duplicating ticks")
	fs.Float64("distance-ratio", d.Series.DistanceRatio, "label-to-curve threshold as a fraction of the shorter plot side")
	fs.Float64("fallback-distance", d.Series.FallbackDistance, "label-to-curve threshold without a plot box (px)")
	fs.Float64("containment-ratio", d.Legend.ContainmentRatio, "min overlap of a fragment with a legend box")
	fs.Float64("merge-vertical-ratio", d.Legend.MergeVerticalRatio, "max vertical center offset of merged legend fragments, as a fraction of the first fragment's height")
	fs.Float64("merge-min-gap", d.Legend.MergeMinGap, "min horizontal gap for merging legend fragments (px)")
	fs.Float64("merge-max-gap", d.Legend.MergeMaxGap, "max horizontal gap for merging legend fragments (px)")
}

// setup loads the configuration for cmd and creates the logger it asks for.
func setup(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		OutputPath: cfg.LogFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, log, nil
}
