package render

import (
	"image/color"
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo"
	"github.com/txwater/studymap/pkg/render/sink"
	"github.com/txwater/studymap/pkg/render/styles"
)

// Z levels for elements that are not configured per layer.
const (
	zBackground = math.MinInt32
	zBasemap    = 0
	zFrame      = 2.5
	zText       = 3
	zLegend     = 5
	zLabels     = 10
)

// LayerStats counts what was queued for one layer.
type LayerStats struct {
	Name     string
	Features int
	Polygons int
	Lines    int
	Points   int
	// Skipped counts multi-part and unknown geometries left undrawn.
	Skipped int
	// Culled counts features outside the extent dropped before drawing.
	Culled int
	// Passes is the number of surface calls issued for the layer.
	Passes int
}

// Drawn returns the number of features that produced output.
func (s LayerStats) Drawn() int { return s.Polygons + s.Lines + s.Points }

// Stats summarises a render.
type Stats struct {
	Context     []LayerStats
	Overlays    []LayerStats
	Annotations int
	Rectangles  int
	Texts       int
	Ops         int
}

// Drawn returns the overlay features that produced output.
func (s Stats) Drawn() int {
	n := 0
	for _, l := range s.Overlays {
		n += l.Drawn()
	}
	return n
}

// Skipped returns the skipped overlay and context geometries.
func (s Stats) Skipped() int {
	n := 0
	for _, l := range append(slices.Clone(s.Context), s.Overlays...) {
		n += l.Skipped
	}
	return n
}

type op struct {
	z    float64
	clip bool
	draw func(sink.Surface) error
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger for skipped-geometry and layout messages.
func WithLogger(l *log.Logger) Option { return func(r *Renderer) { r.logger = l } }

// Renderer queues and replays the drawing of one Map.
type Renderer struct {
	m      *Map
	surf   sink.Surface
	frame  Frame
	ops    []op
	stats  Stats
	logger *log.Logger
}

// New prepares m for drawing onto surf. The surface size should match
// m.Figure.Pixels.
func New(m *Map, surf sink.Surface, opts ...Option) (*Renderer, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	w, h := surf.Size()
	r := &Renderer{m: m, surf: surf, frame: NewFrame(m.Extent, w, h)}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return r, nil
}

// Background returns the canvas colour.
func (r *Renderer) Background() color.NRGBA { return r.m.Style.Background }

// Frame returns the plot frame.
func (r *Renderer) Frame() Frame { return r.frame }

// Render runs every stage and flushes.
func Render(m *Map, surf sink.Surface, opts ...Option) (Stats, error) {
	r, err := New(m, surf, opts...)
	if err != nil {
		return Stats{}, err
	}
	r.DrawContext()
	r.DrawFeatures()
	if err := r.DrawAnnotations(); err != nil {
		return Stats{}, err
	}
	return r.Flush()
}

func (r *Renderer) px(points float64) float64 { return r.m.Figure.Px(points) }

func (r *Renderer) push(z float64, clip bool, draw func(sink.Surface) error) {
	r.ops = append(r.ops, op{z: z, clip: clip, draw: draw})
}

func (r *Renderer) pushPlain(z float64, clip bool, draw func(sink.Surface)) {
	r.push(z, clip, func(s sink.Surface) error { draw(s); return nil })
}

func (r *Renderer) text(z float64, s string, at sink.Point, ax, ay float64, f styles.Font) {
	r.stats.Texts++
	r.push(z, false, func(surf sink.Surface) error { return surf.Text(s, at, ax, ay, f) })
}

// DrawContext queues the background, basemap raster, context layers, grid
// and plot frame.
func (r *Renderer) DrawContext() {
	bg := r.m.Style.Background
	r.pushPlain(zBackground, false, func(s sink.Surface) { s.Fill(bg) })

	if img := r.m.Basemap; img != nil && img.Image != nil {
		dst := r.frame.Rect(img.BBox)
		r.pushPlain(zBasemap, true, func(s sink.Surface) { s.DrawImage(img.Image, dst) })
	}

	for _, l := range r.m.Context {
		r.stats.Context = append(r.stats.Context, r.layer(l))
	}

	if r.m.Grid.Enabled {
		r.grid()
	}

	if w := r.m.Style.FrameWidth; w > 0 {
		corners := r.frame.Plot.Corners()
		stroke := styles.Stroke{Color: r.m.Style.TextColor, Width: r.px(w)}
		r.pushPlain(zFrame, false, func(s sink.Surface) { s.StrokePath(corners, true, stroke) })
	}
}

// DrawFeatures queues the overlay layers.
func (r *Renderer) DrawFeatures() {
	for _, l := range r.m.Overlays {
		st := r.layer(l)
		r.logger.Debug("queued layer", "layer", l.Name, "features", st.Features,
			"polygons", st.Polygons, "lines", st.Lines, "points", st.Points, "skipped", st.Skipped)
		r.stats.Overlays = append(r.stats.Overlays, st)
	}
}

// DrawAnnotations queues rectangles, labelled points, the legend and the
// title.
func (r *Renderer) DrawAnnotations() error {
	for _, rect := range r.m.Rectangles {
		r.rectangle(rect)
	}
	for _, a := range r.m.Annotations {
		r.annotation(a)
	}
	if r.m.Legend.Enabled {
		if err := r.legend(); err != nil {
			return err
		}
	}
	return r.title()
}

// Flush replays the queue in z order and returns the statistics.
func (r *Renderer) Flush() (Stats, error) {
	slices.SortStableFunc(r.ops, func(a, b op) int {
		switch {
		case a.z < b.z:
			return -1
		case a.z > b.z:
			return 1
		}
		return 0
	})

	for i, o := range r.ops {
		if o.clip {
			r.surf.Clip(r.frame.Plot)
		} else {
			r.surf.ResetClip()
		}
		if err := o.draw(r.surf); err != nil {
			r.surf.ResetClip()
			return r.stats, errors.Wrap(errors.ErrCodeRender, err, "draw operation %d", i)
		}
	}
	r.surf.ResetClip()
	r.stats.Ops = len(r.ops)
	r.ops = nil
	return r.stats, nil
}

func (r *Renderer) layer(l Layer) LayerStats {
	st := LayerStats{Name: l.Name}
	if l.Features == nil {
		return st
	}
	for _, f := range l.Features.Features {
		st.Features++
		if f.Geometry == nil {
			st.Skipped++
			continue
		}
		if l.Cull && !geo.Intersects(f.Geometry, r.m.Extent) {
			st.Culled++
			continue
		}
		r.geometry(l, f.Geometry, &st)
	}
	return st
}

func (r *Renderer) geometry(l Layer, g orb.Geometry, st *LayerStats) {
	switch g := g.(type) {
	case orb.Polygon:
		r.polygon(l, g, st)
	case orb.Ring:
		r.polygon(l, orb.Polygon{g}, st)
	case orb.LineString:
		r.line(l, g, st)
	case orb.Point:
		r.point(l, g, st)
	case orb.MultiPolygon:
		if !l.Explode {
			r.skip(l, g, st)
			return
		}
		for _, p := range g {
			r.polygon(l, p, st)
		}
	case orb.MultiLineString:
		if !l.Explode {
			r.skip(l, g, st)
			return
		}
		for _, ls := range g {
			r.line(l, ls, st)
		}
	case orb.MultiPoint:
		if !l.Explode {
			r.skip(l, g, st)
			return
		}
		for _, p := range g {
			r.point(l, p, st)
		}
	default:
		r.skip(l, g, st)
	}
}

func (r *Renderer) skip(l Layer, g orb.Geometry, st *LayerStats) {
	st.Skipped++
	r.logger.Debug("skipping geometry", "layer", l.Name, "kind", geo.KindOf(g))
}

func (r *Renderer) polygon(l Layer, p orb.Polygon, st *LayerStats) {
	if len(p) == 0 || len(p[0]) < 3 {
		st.Skipped++
		return
	}
	st.Polygons++

	if l.Fill.A > 0 {
		rings := make([][]sink.Point, len(p))
		for i, ring := range p {
			rings[i] = r.frame.Path(ring)
		}
		fill := l.Fill
		st.Passes++
		r.pushPlain(l.FillZ, true, func(s sink.Surface) { s.FillPolygon(rings, fill) })
	}
	if l.Stroke.Visible() {
		outline := r.frame.Path(p[0])
		stroke := l.Stroke.Scale(r.px(1))
		st.Passes++
		r.pushPlain(l.Z, true, func(s sink.Surface) { s.StrokePath(outline, false, stroke) })
	}
}

func (r *Renderer) line(l Layer, ls orb.LineString, st *LayerStats) {
	if len(ls) < 2 {
		st.Skipped++
		return
	}
	st.Lines++
	if !l.Stroke.Visible() {
		return
	}
	path := r.frame.Path(ls)
	stroke := l.Stroke.Scale(r.px(1))
	st.Passes++
	r.pushPlain(l.Z, true, func(s sink.Surface) { s.StrokePath(path, false, stroke) })
}

func (r *Renderer) point(l Layer, p orb.Point, st *LayerStats) {
	st.Points++
	m := l.Marker
	if m == styles.MarkerNone {
		m = styles.MarkerCircle
	}
	size := l.MarkerSize
	if size <= 0 {
		size = 6
	}
	at, px, fill := r.frame.Project(p), r.px(size), l.Stroke.Color
	st.Passes++
	r.pushPlain(l.Z, true, func(s sink.Surface) { s.Marker(at, m, px, fill, styles.Stroke{}) })
}

func (r *Renderer) rectangle(rect Rectangle) {
	r.stats.Rectangles++
	dst := r.frame.Rect(rect.BBox)
	ring := [][]sink.Point{dst.Corners()}
	if rect.Fill.A > 0 {
		fill := rect.Fill
		r.pushPlain(rect.Z, true, func(s sink.Surface) { s.FillPolygon(ring, fill) })
	}
	if rect.Stroke.Visible() {
		stroke := rect.Stroke.Scale(r.px(1))
		r.pushPlain(rect.Z, true, func(s sink.Surface) { s.StrokePath(ring[0], true, stroke) })
	}
}

func (r *Renderer) annotation(a Annotation) {
	r.stats.Annotations++
	at := r.frame.Project(orb.Point{a.Lon, a.Lat})

	if a.Marker.Visible() {
		size := a.MarkerSize
		if size <= 0 {
			size = 6
		}
		m, px, c := a.Marker, r.px(size), a.Color
		r.pushPlain(zText-1, true, func(s sink.Surface) { s.Marker(at, m, px, c, styles.Stroke{}) })
	}
	if a.Text == "" {
		return
	}
	f := r.m.Style.Font(styles.RoleAnnotation)
	f.Bold = a.Bold
	if a.TextColor.A > 0 {
		f.Color = a.TextColor
	}
	pos := sink.Point{X: at.X + r.px(a.Offset[0]), Y: at.Y - r.px(a.Offset[1])}
	r.text(zText, a.Text, pos, 0, 0, f)
}

func (r *Renderer) title() error {
	if r.m.Title == "" {
		return nil
	}
	f := r.m.Style.Font(styles.RoleTitle)
	y := r.frame.Plot.Y - r.px(r.m.Style.TitlePad)
	if r.m.Grid.Enabled && r.m.Grid.MeridianLabels.Top {
		_, h, err := r.surf.MeasureText("0°", r.m.Style.Font(styles.RoleTickLabel))
		if err != nil {
			return errors.Wrap(errors.ErrCodeRender, err, "measure tick label")
		}
		y -= h + r.px(labelPad)
	}
	at := sink.Point{X: r.frame.Plot.X + r.frame.Plot.W/2, Y: y}
	r.text(zLabels, r.m.Title, at, 0.5, 0, f)
	return nil
}
