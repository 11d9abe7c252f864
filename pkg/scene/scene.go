// Package scene describes a map render as data.
//
// A [Scene] is decoded from TOML: the study box, figure size, style,
// basemap source, context and overlay layers, labelled points and
// rectangles. The two original study-domain maps ship as embedded presets
// ("belton" and "texas"); any other scene is a TOML file.
//
//	s, err := scene.Resolve("belton")
//	s.Figure.DPI = 300
//	s.SetDefaults()
//	if err := s.Validate(); err != nil { ... }
package scene

import (
	"path/filepath"
	"strings"

	"github.com/txwater/studymap/pkg/basemap"
	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo"
	"github.com/txwater/studymap/pkg/render"
	"github.com/txwater/studymap/pkg/render/styles"
)

// Defaults for fields a scene file may omit.
const (
	DefaultOutput    = "map.png"
	DefaultFigure    = 15.0
	DefaultDPI       = 600.0
	DefaultPadInches = 0.1
	DefaultLegendLoc = "lower right"

	// DefaultEmptyMessage is printed when every filtered overlay layer
	// is empty.
	DefaultEmptyMessage = "No water features found within the specified bounding box."
)

// Scene is one map render.
type Scene struct {
	Name        string `toml:"name"`
	Description string `toml:"description,omitempty"`
	Title       string `toml:"title,omitempty"`
	Output      string `toml:"output"`

	// BBox is the study box: filter predicate and default extent.
	BBox geo.BBox `toml:"bbox"`
	// Extent overrides the drawn area; ExtentPad grows it on every side.
	Extent    *geo.BBox `toml:"extent,omitempty"`
	ExtentPad float64   `toml:"extent_pad,omitempty"`

	// Resolution picks the context dataset variant substituted for {res}
	// in layer paths: c, l, i, h, f or 110m, 50m, 10m.
	Resolution string `toml:"resolution,omitempty"`

	Figure  render.Figure  `toml:"figure"`
	Style   Style          `toml:"style"`
	Basemap basemap.Config `toml:"basemap"`
	Grid    Grid           `toml:"grid"`
	Legend  Legend         `toml:"legend"`
	Save    Save           `toml:"save"`

	Context     []Layer      `toml:"context,omitempty"`
	Layers      []Layer      `toml:"layers,omitempty"`
	Annotations []Annotation `toml:"annotations,omitempty"`
	Rectangles  []Rectangle  `toml:"rectangles,omitempty"`

	EmptyMessage string `toml:"empty_message,omitempty"`
}

// Style is the figure-wide text and background settings.
type Style struct {
	FontSize        float64  `toml:"font_size"`
	TitleSizeOffset float64  `toml:"title_size_offset,omitempty"`
	TitlePad        float64  `toml:"title_pad,omitempty"`
	Background      string   `toml:"background,omitempty"`
	TextColor       string   `toml:"text_color,omitempty"`
	FrameWidth      *float64 `toml:"frame_width,omitempty"`
}

// Layer is a vector dataset drawn with one style.
type Layer struct {
	Name  string `toml:"name"`
	Path  string `toml:"path"`
	Label string `toml:"label,omitempty"`

	// Filter keeps only features intersecting the scene bbox.
	Filter bool `toml:"filter,omitempty"`
	// Optional layers are skipped with a warning when the file is absent.
	Optional bool `toml:"optional,omitempty"`

	Color     string    `toml:"color,omitempty"`
	Width     float64   `toml:"width,omitempty"`
	LineStyle string    `toml:"linestyle,omitempty"`
	Dashes    []float64 `toml:"dashes,omitempty"`
	FillColor string    `toml:"fill,omitempty"`
	Alpha     *float64  `toml:"alpha,omitempty"`
	Z         float64   `toml:"z,omitempty"`
	FillZ     float64   `toml:"fill_z,omitempty"`

	Marker     string  `toml:"marker,omitempty"`
	MarkerSize float64 `toml:"marker_size,omitempty"`
}

// Annotation is a text label, optionally with a marker, at lon/lat.
type Annotation struct {
	Lon        float64    `toml:"lon"`
	Lat        float64    `toml:"lat"`
	Text       string     `toml:"text,omitempty"`
	Marker     string     `toml:"marker,omitempty"`
	MarkerSize float64    `toml:"marker_size,omitempty"`
	Color      string     `toml:"color,omitempty"`
	TextColor  string     `toml:"text_color,omitempty"`
	Bold       bool       `toml:"bold,omitempty"`
	Offset     [2]float64 `toml:"offset,omitempty"`
}

// Rectangle is a box patch. A zero BBox means the scene bbox.
type Rectangle struct {
	BBox      geo.BBox `toml:"bbox,omitempty"`
	Color     string   `toml:"color,omitempty"`
	Width     float64  `toml:"width,omitempty"`
	LineStyle string   `toml:"linestyle,omitempty"`
	FillColor string   `toml:"fill,omitempty"`
	Alpha     *float64 `toml:"alpha,omitempty"`
	Label     string   `toml:"label,omitempty"`
	Z         float64  `toml:"z,omitempty"`
}

// Grid is the graticule. Label flags are [left, right, top, bottom].
type Grid struct {
	Enabled        bool      `toml:"enabled"`
	Parallels      []float64 `toml:"parallels,omitempty"`
	Meridians      []float64 `toml:"meridians,omitempty"`
	ParallelLabels []int     `toml:"parallel_labels,omitempty"`
	MeridianLabels []int     `toml:"meridian_labels,omitempty"`
	Color          string    `toml:"color,omitempty"`
	Width          float64   `toml:"width,omitempty"`
	LineStyle      string    `toml:"linestyle,omitempty"`
	Dashes         []float64 `toml:"dashes,omitempty"`
	Alpha          *float64  `toml:"alpha,omitempty"`
	Z              float64   `toml:"z,omitempty"`
}

// Legend placement.
type Legend struct {
	Enabled  bool   `toml:"enabled"`
	Location string `toml:"location,omitempty"`
	Frame    *bool  `toml:"frame,omitempty"`
}

// Save controls PNG output.
type Save struct {
	// Tight crops the canvas to drawn content plus PadInches.
	Tight     *bool   `toml:"tight,omitempty"`
	PadInches float64 `toml:"pad_inches,omitempty"`
}

// ExtentBox returns the drawn area.
func (s *Scene) ExtentBox() geo.BBox {
	e := s.BBox
	if s.Extent != nil && !s.Extent.IsZero() {
		e = *s.Extent
	}
	if s.ExtentPad != 0 {
		e = e.Pad(s.ExtentPad)
	}
	return e
}

// SetDefaults fills unset fields. It is idempotent.
func (s *Scene) SetDefaults() {
	if s.Output == "" {
		s.Output = DefaultOutput
	}
	if s.Figure.Width <= 0 {
		s.Figure.Width = DefaultFigure
	}
	if s.Figure.Height <= 0 {
		s.Figure.Height = s.Figure.Width
	}
	if s.Figure.DPI <= 0 {
		s.Figure.DPI = DefaultDPI
	}
	if s.Style.FontSize <= 0 {
		s.Style.FontSize = styles.Default().FontSize
	}
	if s.Style.TitlePad == 0 {
		s.Style.TitlePad = styles.Default().TitlePad
	}
	if s.Legend.Location == "" {
		s.Legend.Location = DefaultLegendLoc
	}
	if s.Save.PadInches == 0 {
		s.Save.PadInches = DefaultPadInches
	}
	if s.EmptyMessage == "" {
		s.EmptyMessage = DefaultEmptyMessage
	}
	s.Basemap.SetDefaults()
}

// Tight reports whether the saved image is cropped to content.
func (s *Scene) Tight() bool { return s.Save.Tight == nil || *s.Save.Tight }

// Validate checks the scene without touching the filesystem or network.
func (s *Scene) Validate() error {
	if err := s.BBox.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "scene %s: bbox", s.Name)
	}
	if err := s.ExtentBox().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "scene %s: extent", s.Name)
	}
	if err := errors.ValidateOutputPath(s.Output); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "scene %s: output", s.Name)
	}
	if _, err := NaturalEarthScale(s.Resolution); err != nil {
		return err
	}
	if err := s.Basemap.Validate(); err != nil {
		return err
	}
	if s.Save.PadInches < 0 {
		return errors.New(errors.ErrCodeInvalidScene, "scene %s: pad_inches must not be negative", s.Name)
	}

	seen := make(map[string]bool)
	for _, group := range [][]Layer{s.Context, s.Layers} {
		for i, l := range group {
			if l.Name == "" {
				return errors.New(errors.ErrCodeInvalidScene, "scene %s: layer %d has no name", s.Name, i)
			}
			if seen[l.Name] {
				return errors.New(errors.ErrCodeInvalidScene, "scene %s: duplicate layer name %q", s.Name, l.Name)
			}
			seen[l.Name] = true
			if l.Path == "" {
				return errors.New(errors.ErrCodeInvalidScene, "scene %s: layer %s has no path", s.Name, l.Name)
			}
		}
	}

	// Building the map parses every colour, marker and line style.
	m, err := s.Map(nil)
	if err != nil {
		return err
	}
	return m.Validate()
}

// LayerPath resolves a layer path: {res} is replaced with the Natural
// Earth scale and relative paths are joined to dataDir.
func (s *Scene) LayerPath(dataDir, path string) string {
	if strings.Contains(path, "{res}") {
		scale, _ := NaturalEarthScale(s.Resolution)
		path = strings.ReplaceAll(path, "{res}", scale)
	}
	if dataDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(dataDir, path)
	}
	return path
}

// RequiredPaths lists the overlay and context datasets that must exist.
func (s *Scene) RequiredPaths(dataDir string) []string {
	var out []string
	for _, group := range [][]Layer{s.Layers, s.Context} {
		for _, l := range group {
			if !l.Optional {
				out = append(out, s.LayerPath(dataDir, l.Path))
			}
		}
	}
	return out
}

var resolutions = map[string]string{
	"":     "50m",
	"c":    "110m",
	"l":    "110m",
	"i":    "50m",
	"h":    "10m",
	"f":    "10m",
	"110m": "110m",
	"50m":  "50m",
	"10m":  "10m",
}

// NaturalEarthScale maps a Basemap-style resolution letter or a Natural
// Earth scale to the scale used in dataset names.
func NaturalEarthScale(res string) (string, error) {
	scale, ok := resolutions[strings.ToLower(res)]
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidScene, "unknown resolution %q (want c, l, i, h, f, 110m, 50m or 10m)", res)
	}
	return scale, nil
}
