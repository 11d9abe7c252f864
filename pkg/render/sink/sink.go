// Package sink provides the drawing surfaces a map is rendered onto.
//
// A [Surface] works in pixel space: the map renderer projects lon/lat to
// pixels and converts point sizes using the surface DPI before calling it.
// [GG] rasterises with github.com/fogleman/gg; [Recorder] only counts and
// records calls, which is what dry runs and tests use.
package sink

import (
	"image"
	"image/color"

	"golang.org/x/image/font"

	"github.com/txwater/studymap/pkg/fonts"
	"github.com/txwater/studymap/pkg/render/styles"
)

// Point is a pixel position, y growing downwards.
type Point struct{ X, Y float64 }

// Rect is a pixel rectangle.
type Rect struct{ X, Y, W, H float64 }

// Max returns the lower-right corner.
func (r Rect) Max() Point { return Point{r.X + r.W, r.Y + r.H} }

// Corners returns the four corners clockwise from the top-left.
func (r Rect) Corners() []Point {
	return []Point{{r.X, r.Y}, {r.X + r.W, r.Y}, {r.X + r.W, r.Y + r.H}, {r.X, r.Y + r.H}}
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Surface is a raster drawing target.
type Surface interface {
	Size() (w, h int)
	DPI() float64

	// Fill paints the whole surface, ignoring any clip.
	Fill(c color.NRGBA)
	// DrawImage scales img into r.
	DrawImage(img image.Image, r Rect)
	StrokePath(pts []Point, closed bool, s styles.Stroke)
	// FillPolygon fills rings with the even-odd rule, so inner rings
	// punch holes.
	FillPolygon(rings [][]Point, c color.NRGBA)
	// Marker draws a symbol of the given pixel diameter centred on at.
	Marker(at Point, m styles.Marker, size float64, fill color.NRGBA, edge styles.Stroke)
	// Text draws s so that the anchor fraction (ax, ay) of its box sits at
	// at; (0, 0) puts the baseline start at at.
	Text(s string, at Point, ax, ay float64, f styles.Font) error
	MeasureText(s string, f styles.Font) (w, h float64, err error)

	Clip(r Rect)
	ResetClip()

	Image() image.Image
}

func measure(face font.Face, s string) (w, h float64) {
	adv := font.MeasureString(face, s)
	return float64(adv) / 64, float64(face.Metrics().Height) / 64
}

func face(f styles.Font, dpi float64) (font.Face, error) {
	return fonts.Face(f.Bold, f.Size, dpi)
}
