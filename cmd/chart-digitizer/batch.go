package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/digitizer"
	"github.com/ironsheep/chart-digitizer-mcp/internal/imaging"
	"github.com/ironsheep/chart-digitizer-mcp/internal/logger"
	"github.com/ironsheep/chart-digitizer-mcp/internal/overlay"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Reconstruct every diagram in a directory",
	Long: `Reconstruct every detection document matching --pattern in a directory.

Each diagram_<n>.json is reconstructed independently and written next to it
as digital_diagram_<n>.json (or .yaml). A diagram that fails is logged and
skipped; the others are still processed. The command exits with an error
when any diagram failed.

With --overlay, a diagram_<n>.png next to the document is annotated with
its detections and saved as overlay_diagram_<n>.png.

Examples:
  # Reconstruct a page directory with 4 workers
  chart-digitizer batch out/page_4 --workers 4

  # Also render detection overlays
  chart-digitizer batch out/page_4 --overlay`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("format", "json", "output format (json, yaml)")
	batchCmd.Flags().Int("workers", 0, "diagrams reconstructed concurrently (default number of CPUs)")
	batchCmd.Flags().String("pattern", "diagram_*.json", "glob selecting detection documents")
	batchCmd.Flags().Bool("overlay", false, "render detection overlays for diagrams with an image")
	addHeuristicFlags(batchCmd.Flags())
}

// batchJob holds the outcome of one diagram.
type batchJob struct {
	Input   string
	Output  string
	Overlay string
	Err     error
}

// batchRun is the outcome of a whole directory.
type batchRun struct {
	ID   string
	Jobs []batchJob
}

// Failed counts the diagrams that could not be reconstructed.
func (r *batchRun) Failed() int {
	n := 0
	for _, j := range r.Jobs {
		if j.Err != nil {
			n++
		}
	}
	return n
}

// batchOptions configures reconstructDir.
type batchOptions struct {
	Pattern string
	Format  string
	Workers int
	Overlay bool
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	pattern, _ := cmd.Flags().GetString("pattern")
	withOverlay, _ := cmd.Flags().GetBool("overlay")

	run, err := reconstructDir(cmd.Context(), args[0], digitizer.New(cfg.Options(), log), batchOptions{
		Pattern: pattern,
		Format:  cfg.OutputFormat,
		Workers: cfg.Workers,
		Overlay: withOverlay,
	}, log)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, j := range run.Jobs {
		if j.Err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", j.Input, j.Err)
			continue
		}
		fmt.Fprintf(w, "ok   %s -> %s\n", j.Input, j.Output)
	}
	fmt.Fprintf(w, "run %s: %d diagrams, %d failed\n", run.ID, len(run.Jobs), run.Failed())

	if n := run.Failed(); n > 0 {
		return fmt.Errorf("%d of %d diagrams failed", n, len(run.Jobs))
	}
	return nil
}

// reconstructDir reconstructs every matching document in dir with a bounded
// worker pool. Per-diagram failures are recorded in the run, not returned;
// the error result is reserved for an unusable directory or pattern and for
// cancellation.
func reconstructDir(ctx context.Context, dir string, d *digitizer.Digitizer, opts batchOptions, log *logger.Logger) (*batchRun, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, opts.Pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", opts.Pattern, err)
	}
	sort.Strings(paths)

	run := &batchRun{ID: uuid.NewString(), Jobs: make([]batchJob, len(paths))}
	log = log.WithFields("run_id", run.ID)
	log.Infow("Batch started", "dir", dir, "diagrams", len(paths), "workers", opts.Workers)

	cache := imaging.NewImageCache()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			job := reconstructFile(path, d, opts, cache)
			if job.Err != nil {
				log.WithError(job.Err).Warnw("Diagram failed", "input", path)
			} else {
				log.Debugw("Diagram reconstructed", "input", path, "output", job.Output)
			}
			run.Jobs[i] = job
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Infow("Batch finished", "diagrams", len(paths), "failed", run.Failed())
	return run, nil
}

// reconstructFile processes one document and writes its outputs.
func reconstructFile(path string, d *digitizer.Digitizer, opts batchOptions, cache *imaging.ImageCache) batchJob {
	job := batchJob{Input: path}

	in, err := diagram.LoadInput(path)
	if err != nil {
		job.Err = err
		return job
	}

	out, err := d.Reconstruct(in)
	if err != nil {
		job.Err = err
		return job
	}

	data, err := encode(out, opts.Format)
	if err != nil {
		job.Err = err
		return job
	}

	dir, name := filepath.Split(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	job.Output = filepath.Join(dir, "digital_"+stem+extension(opts.Format))
	if err := os.WriteFile(job.Output, data, 0o644); err != nil {
		job.Err = fmt.Errorf("failed to write %s: %w", job.Output, err)
		return job
	}

	if opts.Overlay {
		imgPath := filepath.Join(dir, stem+".png")
		if _, err := os.Stat(imgPath); err == nil {
			img, err := cache.Load(imgPath)
			if err != nil {
				job.Err = err
				return job
			}
			// Each image is used once per run.
			defer cache.Evict(imgPath)

			job.Overlay = filepath.Join(dir, "overlay_"+stem+".png")
			if err := overlay.Save(job.Overlay, overlay.Render(img, in)); err != nil {
				job.Err = err
				return job
			}
		}
	}

	return job
}
