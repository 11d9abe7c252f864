// Package pipeline runs a scene from datasets to PNG.
//
// # Stages
//
// A render is one linear pass:
//
//	load → reproject → filter → context → features → annotations → save
//
//   - load: check every required dataset exists, then read overlay and
//     context layers (optional context layers that are absent are skipped)
//   - reproject: convert each collection to lon/lat
//   - filter: keep overlay features intersecting the scene bbox for layers
//     that ask for it
//   - context: fetch the basemap and queue background, imagery, context
//     layers, grid and frame
//   - features: queue the overlay layers
//   - annotations: queue labels, rectangles, legend and title
//   - save: rasterise and write the PNG
//
// Each stage reports to [observability.Pipeline] hooks and is timed in
// [Result.Timings].
//
// # Outcomes
//
// Missing required inputs fail with INPUT_NOT_FOUND before anything is
// drawn, naming every expected path. When all overlay layers are empty
// after filtering the run stops with [Result.Empty] set and writes
// nothing; this is not an error. Otherwise exactly one PNG is written.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	defer runner.Close()
//
//	s, _ := scene.Resolve("belton")
//	result, err := runner.Execute(ctx, pipeline.Options{Scene: s})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Message)
//
// [observability.Pipeline]: github.com/txwater/studymap/pkg/observability.Pipeline
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/render"
	"github.com/txwater/studymap/pkg/scene"
)

// Stage names, in execution order.
const (
	StageLoad        = "load"
	StageReproject   = "reproject"
	StageFilter      = "filter"
	StageContext     = "context"
	StageFeatures    = "features"
	StageAnnotations = "annotations"
	StageSave        = "save"
)

// Stages lists the stage names in order.
var Stages = []string{StageLoad, StageReproject, StageFilter, StageContext, StageFeatures, StageAnnotations, StageSave}

// DefaultImageryTTL is how long fetched basemap imagery stays cached.
const DefaultImageryTTL = 30 * 24 * time.Hour

// Options configures one render.
type Options struct {
	// Scene is required. Execute applies its defaults.
	Scene *scene.Scene

	// DataDir is the base directory for relative layer paths.
	DataDir string
	// Output overrides the scene's output path.
	Output string

	// Refresh refetches basemap imagery instead of reading the cache.
	Refresh bool
	// DryRun runs every stage against a recording surface and skips the
	// basemap fetch and the file write.
	DryRun bool

	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults applies defaults and validates the scene. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Scene == nil {
		return errors.New(errors.ErrCodeInvalidScene, "no scene given")
	}
	if o.Output != "" {
		o.Scene.Output = o.Output
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.Scene.SetDefaults()
	if err := o.Scene.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Result describes a finished run.
type Result struct {
	RunID string
	Scene string

	// Output is the written file, empty when nothing was written.
	Output string
	DPI    int
	Width  int
	Height int

	// Empty is set when every overlay layer was empty after filtering.
	Empty bool
	// Message is the console summary line.
	Message string

	Layers  []LayerCount
	Render  render.Stats
	Basemap string
	Timings []Timing
}

// LayerCount records a layer's size before and after filtering.
type LayerCount struct {
	Name     string
	Context  bool
	Total    int
	Kept     int
	Filtered bool
	// Absent is set for optional layers whose file was missing.
	Absent bool
}

// Timing is one stage's duration.
type Timing struct {
	Stage    string
	Duration time.Duration
}

// Total sums the stage durations.
func (r *Result) Total() time.Duration {
	var d time.Duration
	for _, t := range r.Timings {
		d += t.Duration
	}
	return d
}

// Timing returns the duration of a stage, zero if it did not run.
func (r *Result) Timing(stage string) time.Duration {
	for _, t := range r.Timings {
		if t.Stage == stage {
			return t.Duration
		}
	}
	return 0
}
