package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/imaging"
	"github.com/ironsheep/chart-digitizer-mcp/internal/overlay"
)

// annotateCmd represents the annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate <image> <diagram.json> <output.png>",
	Short: "Draw the detections onto a diagram image",
	Long: `Render a copy of the diagram image with the detection regions outlined
by class, the OCR fragment boxes in gray and every traced polyline in its
own color, moved from plot-area into image coordinates.`,
	Args: cobra.ExactArgs(3),
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	_, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	img, err := imaging.NewImageCache().Load(args[0])
	if err != nil {
		return err
	}
	in, err := diagram.LoadInput(args[1])
	if err != nil {
		return err
	}

	if err := overlay.Save(args[2], overlay.Render(img, in)); err != nil {
		return err
	}
	log.Infow("Overlay written", "path", args[2], "regions", len(in.Labels)+len(in.LegendBoxes), "lines", len(in.Lines))
	return nil
}
