package render

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/txwater/studymap/pkg/geo"
	"github.com/txwater/studymap/pkg/render/sink"
)

// Figure is the output canvas size. Width and Height are in inches.
type Figure struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	DPI    float64 `toml:"dpi"`
}

// Pixels returns the canvas size in pixels.
func (f Figure) Pixels() (w, h int) {
	return int(math.Round(f.Width * f.DPI)), int(math.Round(f.Height * f.DPI))
}

// Px converts a length in points to pixels.
func (f Figure) Px(points float64) float64 { return points * f.DPI / 72 }

// Subplot area as figure fractions, matplotlib's defaults.
const (
	subplotLeft   = 0.125
	subplotRight  = 0.9
	subplotBottom = 0.11
	subplotTop    = 0.88
)

// Frame maps lon/lat onto the plot rectangle.
type Frame struct {
	Extent geo.BBox
	Plot   sink.Rect
}

// NewFrame fits extent into the subplot area of a w×h canvas with equal
// degrees per pixel on both axes, centred in the spare direction.
func NewFrame(extent geo.BBox, w, h int) Frame {
	area := sink.Rect{
		X: subplotLeft * float64(w),
		Y: (1 - subplotTop) * float64(h),
		W: (subplotRight - subplotLeft) * float64(w),
		H: (subplotTop - subplotBottom) * float64(h),
	}
	scale := min(area.W/extent.Width(), area.H/extent.Height())
	pw, ph := extent.Width()*scale, extent.Height()*scale
	return Frame{
		Extent: extent,
		Plot:   sink.Rect{X: area.X + (area.W-pw)/2, Y: area.Y + (area.H-ph)/2, W: pw, H: ph},
	}
}

// Project converts a lon/lat point to pixels.
func (f Frame) Project(p orb.Point) sink.Point {
	e := f.Extent
	return sink.Point{
		X: f.Plot.X + (p[0]-e.MinLon)/e.Width()*f.Plot.W,
		Y: f.Plot.Y + (e.MaxLat-p[1])/e.Height()*f.Plot.H,
	}
}

// Path projects every vertex.
func (f Frame) Path(pts []orb.Point) []sink.Point {
	out := make([]sink.Point, len(pts))
	for i, p := range pts {
		out[i] = f.Project(p)
	}
	return out
}

// Rect projects a box.
func (f Frame) Rect(b geo.BBox) sink.Rect {
	tl := f.Project(orb.Point{b.MinLon, b.MaxLat})
	br := f.Project(orb.Point{b.MaxLon, b.MinLat})
	return sink.Rect{X: tl.X, Y: tl.Y, W: br.X - tl.X, H: br.Y - tl.Y}
}
