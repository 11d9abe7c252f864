// Package styles holds the resolved visual settings passed to every map
// drawing call: the figure-wide [Style], per-element [Stroke] and [Font],
// marker shapes and colour parsing.
//
// Nothing here is global. A render builds one Style and hands it down, so
// changing FontSize changes every piece of text in that render and nothing
// else.
package styles

import "image/color"

// Role identifies a kind of text on the map.
type Role int

const (
	RoleTitle Role = iota
	RoleTickLabel
	RoleGridLabel
	RoleAnnotation
	RoleLegend
)

var roleNames = [...]string{"title", "tick", "grid", "annotation", "legend"}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// Style is the figure-wide appearance.
type Style struct {
	// FontSize in points applies to every text role.
	FontSize float64
	// TitleSizeOffset is added to FontSize for the title only.
	TitleSizeOffset float64
	// TitlePad is the gap in points between the title and the plot.
	TitlePad float64

	Background color.NRGBA
	TextColor  color.NRGBA
	// FrameWidth is the plot border width in points; zero hides it.
	FrameWidth float64
}

// Default returns the 24 pt black-on-white style both presets start from.
func Default() Style {
	return Style{
		FontSize:   24,
		TitlePad:   6,
		Background: color.NRGBA{255, 255, 255, 255},
		TextColor:  color.NRGBA{0, 0, 0, 255},
		FrameWidth: 0.8,
	}
}

// Font returns the font for a text role.
func (s Style) Font(role Role) Font {
	size := s.FontSize
	if role == RoleTitle {
		size += s.TitleSizeOffset
	}
	return Font{Size: size, Color: s.TextColor}
}

// Font is a resolved text appearance. Size is in points.
type Font struct {
	Size  float64
	Bold  bool
	Color color.NRGBA
}

// Stroke is a line appearance. Scene files give Width and Dashes in
// points; surfaces take pixels, see [Stroke.Scale].
type Stroke struct {
	Color  color.NRGBA
	Width  float64
	Dashes []float64
}

// Visible reports whether the stroke draws anything.
func (s Stroke) Visible() bool { return s.Width > 0 && s.Color.A > 0 }

// Scale returns a copy with Width and Dashes multiplied by k.
func (s Stroke) Scale(k float64) Stroke {
	out := Stroke{Color: s.Color, Width: s.Width * k}
	if len(s.Dashes) > 0 {
		out.Dashes = make([]float64, len(s.Dashes))
		for i, d := range s.Dashes {
			out.Dashes[i] = d * k
		}
	}
	return out
}

// Marker is a point symbol, named as in matplotlib.
type Marker string

const (
	MarkerNone     Marker = ""
	MarkerCircle   Marker = "o"
	MarkerTriangle Marker = "^"
	MarkerSquare   Marker = "s"
	MarkerDiamond  Marker = "D"
	MarkerPlus     Marker = "+"
	MarkerX        Marker = "x"
)

// Valid reports whether m is a known marker.
func (m Marker) Valid() bool {
	switch m {
	case MarkerNone, MarkerCircle, MarkerTriangle, MarkerSquare, MarkerDiamond, MarkerPlus, MarkerX, "none":
		return true
	}
	return false
}

// Visible reports whether m draws anything.
func (m Marker) Visible() bool { return m != MarkerNone && m != "none" }

// PointsToPixels converts a length in points at dpi.
func PointsToPixels(points, dpi float64) float64 { return points * dpi / 72 }
