package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/txwater/studymap/pkg/basemap"
	"github.com/txwater/studymap/pkg/cache"
	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo"
	"github.com/txwater/studymap/pkg/httputil"
	"github.com/txwater/studymap/pkg/observability"
	"github.com/txwater/studymap/pkg/render"
	"github.com/txwater/studymap/pkg/render/sink"
	"github.com/txwater/studymap/pkg/scene"
)

// Runner executes scenes. It holds the imagery cache, key scheme, HTTP
// client and logger; it keeps no per-run state, so one Runner can serve
// several renders.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Client *httputil.Client
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer means DefaultKeyer, a nil cache
// disables caching and a nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Client: httputil.NewClient(c, DefaultImageryTTL, nil),
		Logger: logger,
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// run is the state of one Execute call.
type run struct {
	*Runner
	opts   Options
	scene  *scene.Scene
	result *Result
	logger *log.Logger

	overlays      map[string]*geo.Collection
	contextLayers map[string]*geo.Collection
	img           *basemap.Image
	surf          sink.Surface
	renderer      *render.Renderer
}

// Execute runs every stage of opts.Scene.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	s := opts.Scene
	x := &run{
		Runner:        r,
		opts:          opts,
		scene:         s,
		logger:        opts.Logger,
		result:        &Result{RunID: uuid.NewString(), Scene: s.Name, DPI: int(math.Round(s.Figure.DPI))},
		overlays:      make(map[string]*geo.Collection),
		contextLayers: make(map[string]*geo.Collection),
	}

	start := time.Now()
	err := x.execute(ctx)
	observability.Pipeline().OnRenderComplete(ctx, x.result.RunID, s.Name, x.result.Output, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return x.result, nil
}

func (x *run) execute(ctx context.Context) error {
	if err := x.stage(ctx, StageLoad, x.load); err != nil {
		return err
	}
	if err := x.stage(ctx, StageReproject, x.reproject); err != nil {
		return err
	}
	if err := x.stage(ctx, StageFilter, func() error { return x.filter(ctx) }); err != nil {
		return err
	}
	if x.empty() {
		x.result.Empty = true
		x.result.Message = x.scene.EmptyMessage
		x.logger.Info(x.scene.EmptyMessage, "bbox", x.scene.BBox)
		return nil
	}

	if err := x.stage(ctx, StageContext, func() error { return x.drawContext(ctx) }); err != nil {
		return err
	}
	if err := x.stage(ctx, StageFeatures, x.drawFeatures); err != nil {
		return err
	}
	if err := x.stage(ctx, StageAnnotations, x.drawAnnotations); err != nil {
		return err
	}
	return x.stage(ctx, StageSave, x.save)
}

// stage runs fn between hook calls, recording its duration. A cancelled
// context stops the run before the stage starts.
func (x *run) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, x.result.RunID, name)

	start := time.Now()
	err := fn()
	d := time.Since(start)

	hooks.OnStageComplete(ctx, x.result.RunID, name, d, err)
	x.result.Timings = append(x.result.Timings, Timing{Stage: name, Duration: d})
	x.logger.Debug("stage complete", "stage", name, "duration", d.Round(time.Millisecond), "ok", err == nil)
	return err
}

// empty reports whether the scene has overlay layers and all of them are
// empty after filtering.
func (x *run) empty() bool {
	if len(x.scene.Layers) == 0 {
		return false
	}
	for _, c := range x.overlays {
		if !c.Empty() {
			return false
		}
	}
	return true
}

func (x *run) message() string {
	return fmt.Sprintf("Plot saved successfully to %s with DPI=%d.", x.result.Output, x.result.DPI)
}

func wrapRender(err error, what string) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeRender, err, "%s", what)
}
