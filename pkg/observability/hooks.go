// Package observability lets callers watch a render without the library
// depending on a metrics or tracing backend.
//
// Three hook sets exist: [PipelineHooks] for stage and layer progress,
// [CacheHooks] for imagery cache traffic and [FetchHooks] for outgoing
// tile and export requests. All are no-ops until replaced:
//
//	observability.SetPipelineHooks(observability.Funcs{
//	    StageStart: func(ctx context.Context, runID, stage string) {
//	        spinner.SetMessage("rendering: " + stage)
//	    },
//	})
//	defer observability.Reset()
package observability

import (
	"context"
	"time"
)

// PipelineHooks receives events from the render pipeline.
type PipelineHooks interface {
	// OnStageStart and OnStageComplete bracket each pipeline stage (load,
	// reproject, filter, context, features, annotations, save).
	OnStageStart(ctx context.Context, runID, stage string)
	OnStageComplete(ctx context.Context, runID, stage string, duration time.Duration, err error)

	// OnLayerFiltered reports how many of a layer's features fell inside
	// the bounding box. Unfiltered layers report kept == total.
	OnLayerFiltered(ctx context.Context, runID, layer string, total, kept int)

	// OnRenderComplete fires once per render; output is empty when
	// nothing was written.
	OnRenderComplete(ctx context.Context, runID, scene, output string, duration time.Duration, err error)
}

// CacheHooks receives imagery cache events. keyType is the key namespace,
// "tile" or "export".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// FetchHooks receives one event per HTTP request attempt. status is zero
// when the request failed before a response arrived.
type FetchHooks interface {
	OnFetch(ctx context.Context, host, path string, status, size int, duration time.Duration, err error)
}

// NoopPipelineHooks ignores every pipeline event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string, string)                          {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, string, time.Duration, error) {}
func (NoopPipelineHooks) OnLayerFiltered(context.Context, string, string, int, int)             {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, string, string, time.Duration, error) {
}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopFetchHooks ignores every fetch event.
type NoopFetchHooks struct{}

func (NoopFetchHooks) OnFetch(context.Context, string, string, int, int, time.Duration, error) {}

// Funcs adapts plain functions to PipelineHooks. Nil fields are skipped.
type Funcs struct {
	StageStart    func(ctx context.Context, runID, stage string)
	StageComplete func(ctx context.Context, runID, stage string, duration time.Duration, err error)
	LayerFiltered func(ctx context.Context, runID, layer string, total, kept int)
	RenderDone    func(ctx context.Context, runID, scene, output string, duration time.Duration, err error)
}

func (f Funcs) OnStageStart(ctx context.Context, runID, stage string) {
	if f.StageStart != nil {
		f.StageStart(ctx, runID, stage)
	}
}

func (f Funcs) OnStageComplete(ctx context.Context, runID, stage string, d time.Duration, err error) {
	if f.StageComplete != nil {
		f.StageComplete(ctx, runID, stage, d, err)
	}
}

func (f Funcs) OnLayerFiltered(ctx context.Context, runID, layer string, total, kept int) {
	if f.LayerFiltered != nil {
		f.LayerFiltered(ctx, runID, layer, total, kept)
	}
}

func (f Funcs) OnRenderComplete(ctx context.Context, runID, scene, output string, d time.Duration, err error) {
	if f.RenderDone != nil {
		f.RenderDone(ctx, runID, scene, output, d, err)
	}
}
