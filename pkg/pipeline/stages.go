package pipeline

import (
	"context"
	"io"
	"math"

	"github.com/txwater/studymap/pkg/basemap"
	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo"
	sio "github.com/txwater/studymap/pkg/io"
	"github.com/txwater/studymap/pkg/observability"
	"github.com/txwater/studymap/pkg/render"
	"github.com/txwater/studymap/pkg/render/sink"
	"github.com/txwater/studymap/pkg/scene"
)

func (x *run) path(l scene.Layer) string {
	return x.scene.LayerPath(x.opts.DataDir, l.Path)
}

func (x *run) load() error {
	required := x.scene.RequiredPaths(x.opts.DataDir)
	if missing := sio.Missing(required); len(missing) > 0 {
		x.logger.Debug("missing inputs", "paths", missing)
		return errors.InputNotFound(required)
	}

	loader := sio.Loader{Logger: x.logger}
	for _, l := range x.scene.Layers {
		c, err := loader.Load(x.path(l))
		if err != nil {
			return err
		}
		c.Name = l.Name
		x.overlays[l.Name] = c
	}
	for _, l := range x.scene.Context {
		p := x.path(l)
		if l.Optional && len(sio.Missing([]string{p})) > 0 {
			x.logger.Warn("context layer not found, skipping", "layer", l.Name, "path", p)
			x.result.Layers = append(x.result.Layers, LayerCount{Name: l.Name, Context: true, Absent: true})
			continue
		}
		c, err := loader.Load(p)
		if err != nil {
			return err
		}
		c.Name = l.Name
		x.contextLayers[l.Name] = c
	}

	for _, l := range x.scene.Layers {
		x.logger.Info("loaded layer", "layer", l.Name, "features", x.overlays[l.Name].Len())
	}
	return nil
}

func (x *run) reproject() error {
	for _, m := range []map[string]*geo.Collection{x.overlays, x.contextLayers} {
		for name, c := range m {
			out, err := geo.ToWGS84(c)
			if err != nil {
				return err
			}
			x.logger.Debug("reprojected layer", "layer", name, "from", c.CRS)
			m[name] = out
		}
	}
	return nil
}

func (x *run) filter(ctx context.Context) error {
	hooks := observability.Pipeline()
	for _, l := range x.scene.Layers {
		c := x.overlays[l.Name]
		count := LayerCount{Name: l.Name, Total: c.Len(), Kept: c.Len(), Filtered: l.Filter}
		if l.Filter {
			c = geo.Filter(c, x.scene.BBox)
			x.overlays[l.Name] = c
			count.Kept = c.Len()
		}
		x.result.Layers = append(x.result.Layers, count)
		hooks.OnLayerFiltered(ctx, x.result.RunID, l.Name, count.Total, count.Kept)
		x.logger.Info("filtered layer", "layer", l.Name, "total", count.Total, "kept", count.Kept, "filter", l.Filter)
	}
	for _, l := range x.scene.Context {
		if c, ok := x.contextLayers[l.Name]; ok {
			x.result.Layers = append(x.result.Layers, LayerCount{Name: l.Name, Context: true, Total: c.Len(), Kept: c.Len()})
		}
	}
	return nil
}

func (x *run) drawContext(ctx context.Context) error {
	if err := x.fetchBasemap(ctx); err != nil {
		return err
	}

	m, err := x.scene.Map(&scene.Inputs{Overlays: x.overlays, Context: x.contextLayers, Basemap: x.img})
	if err != nil {
		return err
	}
	w, h := m.Figure.Pixels()
	x.result.Width, x.result.Height = w, h
	if x.opts.DryRun {
		x.surf = sink.NewRecorder(w, h, m.Figure.DPI)
	} else {
		x.surf = sink.NewGG(w, h, m.Figure.DPI)
	}

	x.renderer, err = render.New(m, x.surf, render.WithLogger(x.logger))
	if err != nil {
		return err
	}
	x.renderer.DrawContext()
	return nil
}

func (x *run) fetchBasemap(ctx context.Context) error {
	cfg := x.scene.Basemap
	if cfg.Kind == basemap.KindNone {
		return nil
	}
	if x.opts.DryRun {
		x.logger.Info("dry run, skipping basemap", "kind", cfg.Kind)
		return nil
	}
	if cfg.Kind == basemap.KindMBTiles {
		cfg.Path = x.scene.LayerPath(x.opts.DataDir, cfg.Path)
	}

	src, err := basemap.New(cfg, basemap.Options{
		Client:  x.Client,
		Keyer:   x.Keyer,
		Refresh: x.opts.Refresh,
		Logger:  x.logger,
	})
	if err != nil {
		return err
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}

	extent := x.scene.ExtentBox()
	w, h := cfg.Size(extent)
	x.logger.Info("fetching basemap", "source", src.Name(), "size", [2]int{w, h})
	img, err := src.Fetch(ctx, extent, w, h)
	if err != nil {
		return err
	}
	x.img = img
	if img != nil {
		x.result.Basemap = src.Name()
	}
	return nil
}

func (x *run) drawFeatures() error {
	x.renderer.DrawFeatures()
	return nil
}

func (x *run) drawAnnotations() error {
	return x.renderer.DrawAnnotations()
}

func (x *run) save() error {
	stats, err := x.renderer.Flush()
	x.result.Render = stats
	if err != nil {
		return wrapRender(err, "rasterise map")
	}
	if n := stats.Skipped(); n > 0 {
		x.logger.Info("skipped multi-part geometries", "count", n)
	}

	if x.opts.DryRun {
		x.result.Message = "Dry run complete; " + x.scene.Output + " not written."
		return nil
	}

	out := x.scene.Output
	err = sio.WritePNG(out, x.surf.Image(), sio.PNGOptions{
		DPI:        x.result.DPI,
		Trim:       x.scene.Tight(),
		Pad:        int(math.Round(x.scene.Save.PadInches * x.scene.Figure.DPI)),
		Background: x.renderer.Background(),
	})
	if err != nil {
		return err
	}
	x.result.Output = out
	x.result.Message = x.message()
	return nil
}
