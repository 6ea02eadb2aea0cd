package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/imaging"
	"github.com/ironsheep/chart-digitizer-mcp/internal/ocr"
)

// ocrCmd represents the ocr command
var ocrCmd = &cobra.Command{
	Use:   "ocr <image> <diagram.json>",
	Short: "Fill a detection document with OCR results",
	Long: `Read a diagram image with Tesseract and store the line fragments as the
ocr_results of a detection document. Each fragment is tagged with the first
region containing its center, legend boxes before labels.

Unknown image dimensions in the document are taken from the image. The
completed document is written to --output, or back over the input with
--in-place, or to stdout.

Requires Tesseract and its language data to be installed.

Examples:
  chart-digitizer ocr diagram_1.png diagram_1.json --in-place
  chart-digitizer ocr diagram_1.png diagram_1.json --ocr-language eng+deu -o unified.json`,
	Args: cobra.ExactArgs(2),
	RunE: runOCR,
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().String("ocr-language", "eng", "Tesseract language list")
	ocrCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	ocrCmd.Flags().Bool("in-place", false, "overwrite the input document")
}

func runOCR(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	imgPath, docPath := args[0], args[1]

	in, err := diagram.LoadInput(docPath)
	if err != nil {
		return err
	}
	img, err := imaging.NewImageCache().Load(imgPath)
	if err != nil {
		return err
	}
	imaging.FillDimensions(in, img)

	fragments, err := ocr.NewEngine(cfg.OCRLanguage, log).Recognize(img)
	if err != nil {
		return err
	}
	ocr.AssociateInput(in, fragments)
	log.Infow("OCR complete", "image", imgPath, "fragments", len(fragments))

	data, err := encode(in, "json")
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("output")
	if inPlace, _ := cmd.Flags().GetBool("in-place"); inPlace {
		path = docPath
	}
	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
