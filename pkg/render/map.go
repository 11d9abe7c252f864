package render

import (
	"fmt"
	"image/color"

	"github.com/txwater/studymap/pkg/basemap"
	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo"
	"github.com/txwater/studymap/pkg/render/styles"
)

// Map is everything needed to draw one figure. All coordinates are
// lon/lat; all sizes are points.
type Map struct {
	Title  string
	Extent geo.BBox
	Figure Figure
	Style  styles.Style

	// Basemap is an optional raster drawn under every layer.
	Basemap *basemap.Image

	Context     []Layer
	Overlays    []Layer
	Annotations []Annotation
	Rectangles  []Rectangle

	Grid   Grid
	Legend Legend
}

// Layer is a styled feature collection.
type Layer struct {
	Name string
	// Label is the legend entry; empty keeps the layer out of the legend.
	Label    string
	Features *geo.Collection

	Stroke styles.Stroke
	Fill   color.NRGBA
	// Z orders outlines, lines and markers; FillZ orders polygon fills.
	Z     float64
	FillZ float64

	Marker     styles.Marker
	MarkerSize float64

	// Explode draws multi-part geometries part by part instead of
	// skipping them.
	Explode bool
	// Cull drops features whose bounds miss the extent before queueing.
	Cull bool
}

// Annotation is a text label with an optional marker.
type Annotation struct {
	Lon, Lat   float64
	Text       string
	Marker     styles.Marker
	MarkerSize float64
	Color      color.NRGBA
	TextColor  color.NRGBA
	Bold       bool
	// Offset moves the text from the anchor, in points, x right and y up.
	Offset [2]float64
}

// Rectangle is a box patch such as a study domain outline.
type Rectangle struct {
	BBox   geo.BBox
	Stroke styles.Stroke
	Fill   color.NRGBA
	Label  string
	Z      float64
}

// Sides selects which plot edges carry labels.
type Sides struct {
	Left, Right, Top, Bottom bool
}

// SidesFromFlags reads a [left, right, top, bottom] flag list.
func SidesFromFlags(flags []int) Sides {
	at := func(i int) bool { return i < len(flags) && flags[i] != 0 }
	return Sides{Left: at(0), Right: at(1), Top: at(2), Bottom: at(3)}
}

// Any reports whether any side is set.
func (s Sides) Any() bool { return s.Left || s.Right || s.Top || s.Bottom }

// Grid is the graticule. Empty Parallels or Meridians are chosen
// automatically.
type Grid struct {
	Enabled        bool
	Parallels      []float64
	Meridians      []float64
	ParallelLabels Sides
	MeridianLabels Sides
	Stroke         styles.Stroke
	Z              float64
}

// Legend placement.
type Legend struct {
	Enabled bool
	// Location is "lower right", "lower left", "upper right" or
	// "upper left".
	Location string
	Frame    bool
}

var legendLocations = map[string]bool{
	"lower right": true, "lower left": true, "upper right": true, "upper left": true,
}

// Validate checks the map can be drawn.
func (m *Map) Validate() error {
	if err := m.Extent.Validate(); err != nil {
		return err
	}
	if m.Figure.Width <= 0 || m.Figure.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidScene, "figure size must be positive, got %gx%g", m.Figure.Width, m.Figure.Height)
	}
	if m.Figure.DPI <= 0 {
		return errors.New(errors.ErrCodeInvalidScene, "dpi must be positive, got %g", m.Figure.DPI)
	}
	if m.Style.FontSize <= 0 {
		return errors.New(errors.ErrCodeInvalidScene, "font size must be positive, got %g", m.Style.FontSize)
	}
	if m.Legend.Enabled && m.Legend.Location != "" && !legendLocations[m.Legend.Location] {
		return errors.New(errors.ErrCodeInvalidScene, "unknown legend location %q", m.Legend.Location)
	}
	for _, l := range append(append([]Layer(nil), m.Context...), m.Overlays...) {
		if !l.Marker.Valid() {
			return errors.New(errors.ErrCodeInvalidScene, "layer %s: unknown marker %q", l.Name, l.Marker)
		}
	}
	for i, a := range m.Annotations {
		if !a.Marker.Valid() {
			return errors.New(errors.ErrCodeInvalidScene, "annotation %d (%s): unknown marker %q", i, a.Text, a.Marker)
		}
	}
	return nil
}

func (l Layer) String() string {
	return fmt.Sprintf("%s (%d features)", l.Name, l.Features.Len())
}
