package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/txwater/studymap/pkg/basemap"
	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/observability"
	"github.com/txwater/studymap/pkg/pipeline"
	"github.com/txwater/studymap/pkg/scene"
)

// defaultScene is rendered when no scene argument is given.
const defaultScene = "belton"

// renderOpts holds the command-line flags for the render command. Zero
// values leave the scene's own setting in place.
type renderOpts struct {
	output   string
	dpi      float64
	fontSize float64
	basemap  string
	dataDir  string
	refresh  bool
	dryRun   bool
	timeout  time.Duration
	cache    cacheFlags
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render a scene to PNG",
		Long: `Render a scene to PNG.

The scene is a built-in preset name (see "studymap scenes") or a path to a
TOML scene file. Relative dataset paths in the scene are resolved against
--data-dir.`,
		Example: `  studymap render belton
  studymap render texas -o texas.png --dpi 300
  studymap render ./my_scene.toml --basemap none`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeScenes,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := defaultScene
			if len(args) == 1 {
				name = args[0]
			}
			return c.runRender(cmd.Context(), name, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output PNG path (default from scene)")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", 0, "output resolution in dots per inch (default from scene)")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", 0, "base font size in points (default from scene)")
	cmd.Flags().StringVar(&opts.basemap, "basemap", "", "override basemap kind: arcgis, xyz, mbtiles or none")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "base directory for relative dataset paths")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "refetch basemap imagery even if cached")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "run every stage but do not write the PNG or fetch imagery")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "HTTP request timeout (default 30s)")
	opts.cache.register(cmd)

	return cmd
}

// applyOverrides copies set flags onto the scene.
func applyOverrides(s *scene.Scene, opts renderOpts) error {
	if opts.dpi < 0 {
		return errors.New(errors.ErrCodeInvalidScene, "--dpi must be positive, got %g", opts.dpi)
	}
	if opts.fontSize < 0 {
		return errors.New(errors.ErrCodeInvalidScene, "--font-size must be positive, got %g", opts.fontSize)
	}
	if opts.dpi > 0 {
		s.Figure.DPI = opts.dpi
	}
	if opts.fontSize > 0 {
		s.Style.FontSize = opts.fontSize
	}
	if opts.basemap != "" {
		s.Basemap.Kind = opts.basemap
		if opts.basemap == basemap.KindNone {
			s.Basemap = basemap.Config{Kind: basemap.KindNone}
		}
	}
	return nil
}

func (c *CLI) runRender(ctx context.Context, name string, opts renderOpts) error {
	s, err := scene.Resolve(name)
	if err != nil {
		return err
	}
	if err := applyOverrides(s, opts); err != nil {
		return err
	}

	logger := c.Logger
	if !c.verbose() {
		logger = quieter(c.Logger)
	}
	runner, err := c.newRunner(ctx, opts.cache, logger)
	if err != nil {
		return err
	}
	defer runner.Close()
	if opts.timeout > 0 {
		runner.Client.SetTimeout(opts.timeout)
	}

	prog := newProgress(c.Logger)
	var sp *Spinner
	if !c.verbose() {
		sp = newSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s", s.Name))
		observability.SetPipelineHooks(stageMessages(sp, s.Name))
		defer observability.Reset()
		sp.Start()
	}

	result, err := runner.Execute(ctx, pipeline.Options{
		Scene:   s,
		DataDir: opts.dataDir,
		Output:  opts.output,
		Refresh: opts.refresh,
		DryRun:  opts.dryRun,
	})
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return err
	}

	printResult(result)
	prog.done(fmt.Sprintf("Rendered %s", s.Name))
	return nil
}

// stageMessages shows the running stage next to the spinner.
func stageMessages(sp *Spinner, name string) observability.Funcs {
	return observability.Funcs{
		StageStart: func(_ context.Context, _, stage string) {
			sp.SetMessage(fmt.Sprintf("Rendering %s: %s", name, stage))
		},
	}
}

// printResult prints the per-layer counts and the outcome message.
func printResult(r *pipeline.Result) {
	for _, l := range r.Layers {
		switch {
		case l.Absent:
			printDetail("%s: not found, skipped", l.Name)
		case l.Filtered:
			printDetail("%s: %d of %d features in box", l.Name, l.Kept, l.Total)
		default:
			printDetail("%s: %d features", l.Name, l.Total)
		}
	}
	if r.Basemap != "" {
		printDetail("basemap: %s", r.Basemap)
	}

	switch {
	case r.Empty:
		printWarning("%s", r.Message)
	case r.Output == "":
		printInfo("%s", r.Message)
	default:
		printSuccess("%s", r.Message)
		printFile(r.Output)
		printStats(r.Width, r.Height, r.Render.Skipped())
	}
}
