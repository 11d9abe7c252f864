package scene

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/txwater/studymap/pkg/basemap"
	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo"
	"github.com/txwater/studymap/pkg/render"
	"github.com/txwater/studymap/pkg/render/styles"
)

// Inputs are the loaded datasets and imagery for a scene, keyed by layer
// name. A layer missing from the map is left out of the render.
type Inputs struct {
	Overlays map[string]*geo.Collection
	Context  map[string]*geo.Collection
	Basemap  *basemap.Image
}

// Map converts the scene into a render.Map. With nil inputs every layer
// is kept with no features, which is enough to check styles.
func (s *Scene) Map(in *Inputs) (*render.Map, error) {
	style, err := s.Style.resolve()
	if err != nil {
		return nil, s.wrap(err, "style")
	}
	m := &render.Map{
		Title:  s.Title,
		Extent: s.ExtentBox(),
		Figure: s.Figure,
		Style:  style,
		Legend: render.Legend{
			Enabled:  s.Legend.Enabled,
			Location: s.Legend.Location,
			Frame:    s.Legend.Frame == nil || *s.Legend.Frame,
		},
	}
	if in != nil {
		m.Basemap = in.Basemap
	}

	for _, l := range s.Context {
		var c *geo.Collection
		if in != nil {
			var ok bool
			if c, ok = in.Context[l.Name]; !ok {
				continue
			}
		}
		rl, err := l.resolve(c)
		if err != nil {
			return nil, s.wrap(err, "context layer "+l.Name)
		}
		rl.Explode, rl.Cull = true, true
		m.Context = append(m.Context, rl)
	}
	for _, l := range s.Layers {
		var c *geo.Collection
		if in != nil {
			var ok bool
			if c, ok = in.Overlays[l.Name]; !ok {
				continue
			}
		}
		rl, err := l.resolve(c)
		if err != nil {
			return nil, s.wrap(err, "layer "+l.Name)
		}
		m.Overlays = append(m.Overlays, rl)
	}

	for i, a := range s.Annotations {
		ra, err := a.resolve()
		if err != nil {
			return nil, s.wrap(err, "annotation "+label(i, a.Text))
		}
		m.Annotations = append(m.Annotations, ra)
	}
	for i, r := range s.Rectangles {
		rr, err := r.resolve(s.BBox)
		if err != nil {
			return nil, s.wrap(err, "rectangle "+label(i, r.Label))
		}
		m.Rectangles = append(m.Rectangles, rr)
	}

	if m.Grid, err = s.Grid.resolve(); err != nil {
		return nil, s.wrap(err, "grid")
	}
	return m, nil
}

func (s *Scene) wrap(err error, what string) error {
	return errors.Wrap(errors.ErrCodeInvalidScene, err, "scene %s: %s", s.Name, what)
}

func label(i int, text string) string {
	if text != "" {
		return text
	}
	return fmt.Sprintf("#%d", i+1)
}

func (s Style) resolve() (styles.Style, error) {
	out := styles.Default()
	out.FontSize = s.FontSize
	out.TitleSizeOffset = s.TitleSizeOffset
	out.TitlePad = s.TitlePad
	if s.FrameWidth != nil {
		out.FrameWidth = *s.FrameWidth
	}
	var err error
	if s.Background != "" {
		if out.Background, err = styles.ParseColor(s.Background); err != nil {
			return out, err
		}
	}
	if s.TextColor != "" {
		if out.TextColor, err = styles.ParseColor(s.TextColor); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (l Layer) resolve(c *geo.Collection) (render.Layer, error) {
	stroke, err := strokeOf(l.Color, "black", l.Width, 1, l.LineStyle, l.Dashes, nil)
	if err != nil {
		return render.Layer{}, err
	}
	fill, err := fillOf(l.FillColor, l.Alpha)
	if err != nil {
		return render.Layer{}, err
	}
	m := styles.Marker(l.Marker)
	if !m.Valid() {
		return render.Layer{}, errors.New(errors.ErrCodeInvalidScene, "unknown marker %q", l.Marker)
	}
	fillZ := l.FillZ
	if fillZ == 0 {
		fillZ = l.Z
	}
	return render.Layer{
		Name:       l.Name,
		Label:      l.Label,
		Features:   c,
		Stroke:     stroke,
		Fill:       fill,
		Z:          l.Z,
		FillZ:      fillZ,
		Marker:     m,
		MarkerSize: l.MarkerSize,
	}, nil
}

func (a Annotation) resolve() (render.Annotation, error) {
	m := styles.Marker(a.Marker)
	if !m.Valid() {
		return render.Annotation{}, errors.New(errors.ErrCodeInvalidScene, "unknown marker %q", a.Marker)
	}
	c, err := colorOr(a.Color, "black")
	if err != nil {
		return render.Annotation{}, err
	}
	tc := c
	if a.TextColor != "" {
		if tc, err = styles.ParseColor(a.TextColor); err != nil {
			return render.Annotation{}, err
		}
	}
	return render.Annotation{
		Lon: a.Lon, Lat: a.Lat, Text: a.Text,
		Marker: m, MarkerSize: a.MarkerSize,
		Color: c, TextColor: tc, Bold: a.Bold, Offset: a.Offset,
	}, nil
}

func (r Rectangle) resolve(bbox geo.BBox) (render.Rectangle, error) {
	box := r.BBox
	if box.IsZero() {
		box = bbox
	}
	if err := box.Validate(); err != nil {
		return render.Rectangle{}, err
	}
	stroke, err := strokeOf(r.Color, "black", r.Width, 1, r.LineStyle, nil, nil)
	if err != nil {
		return render.Rectangle{}, err
	}
	fill, err := fillOf(r.FillColor, r.Alpha)
	if err != nil {
		return render.Rectangle{}, err
	}
	z := r.Z
	if z == 0 {
		z = 1
	}
	return render.Rectangle{BBox: box, Stroke: stroke, Fill: fill, Label: r.Label, Z: z}, nil
}

func (g Grid) resolve() (render.Grid, error) {
	stroke, err := strokeOf(g.Color, "black", g.Width, 0.5, g.LineStyle, g.Dashes, g.Alpha)
	if err != nil {
		return render.Grid{}, err
	}
	z := g.Z
	if z == 0 {
		z = 2
	}
	return render.Grid{
		Enabled:        g.Enabled,
		Parallels:      g.Parallels,
		Meridians:      g.Meridians,
		ParallelLabels: render.SidesFromFlags(g.ParallelLabels),
		MeridianLabels: render.SidesFromFlags(g.MeridianLabels),
		Stroke:         stroke,
		Z:              z,
	}, nil
}

// Dash patterns for named line styles, in multiples of the line width.
var lineStyles = map[string][]float64{
	"":        nil,
	"-":       nil,
	"solid":   nil,
	"--":      {3.7, 1.6},
	"dashed":  {3.7, 1.6},
	":":       {1, 1.65},
	"dotted":  {1, 1.65},
	"-.":      {6.4, 1.6, 1, 1.6},
	"dashdot": {6.4, 1.6, 1, 1.6},
}

// strokeOf builds a stroke in points. Explicit dashes win over a named
// line style; named styles scale with the width.
func strokeOf(c, defColor string, width, defWidth float64, ls string, dashes []float64, alpha *float64) (styles.Stroke, error) {
	col, err := colorOr(c, defColor)
	if err != nil {
		return styles.Stroke{}, err
	}
	if alpha != nil {
		col = styles.WithAlpha(col, *alpha)
	}
	if width == 0 {
		width = defWidth
	}
	if width < 0 {
		return styles.Stroke{}, errors.New(errors.ErrCodeInvalidScene, "line width must not be negative")
	}

	pattern, ok := lineStyles[strings.ToLower(ls)]
	if !ok {
		return styles.Stroke{}, errors.New(errors.ErrCodeInvalidScene, "unknown line style %q", ls)
	}
	out := styles.Stroke{Color: col, Width: width}
	if len(dashes) > 0 {
		out.Dashes = dashes
		return out, nil
	}
	for _, d := range pattern {
		out.Dashes = append(out.Dashes, d*width)
	}
	return out, nil
}

func fillOf(c string, alpha *float64) (color.NRGBA, error) {
	col, err := styles.ParseColor(c)
	if err != nil {
		return col, err
	}
	if alpha != nil {
		col = styles.WithAlpha(col, *alpha)
	}
	return col, nil
}

func colorOr(c, def string) (color.NRGBA, error) {
	if c == "" {
		c = def
	}
	return styles.ParseColor(c)
}
