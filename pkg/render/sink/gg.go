package sink

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/txwater/studymap/pkg/render/styles"
)

// GG is a Surface backed by a gg.Context.
type GG struct {
	dc  *gg.Context
	dpi float64
}

// NewGG allocates a w×h pixel canvas for the given DPI.
func NewGG(w, h int, dpi float64) *GG {
	return &GG{dc: gg.NewContext(w, h), dpi: dpi}
}

func (g *GG) Size() (int, int) { return g.dc.Width(), g.dc.Height() }
func (g *GG) DPI() float64     { return g.dpi }
func (g *GG) Image() image.Image {
	return g.dc.Image()
}

func (g *GG) Fill(c color.NRGBA) {
	g.dc.SetColor(c)
	g.dc.Clear()
}

func (g *GG) DrawImage(img image.Image, r Rect) {
	w, h := int(math.Round(r.W)), int(math.Round(r.H))
	if w <= 0 || h <= 0 {
		return
	}
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		img = imaging.Resize(img, w, h, imaging.Linear)
	}
	g.dc.DrawImage(img, int(math.Round(r.X)), int(math.Round(r.Y)))
}

func (g *GG) StrokePath(pts []Point, closed bool, s styles.Stroke) {
	if len(pts) < 2 || !s.Visible() {
		return
	}
	g.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		g.dc.LineTo(p.X, p.Y)
	}
	if closed {
		g.dc.ClosePath()
	}
	g.stroke(s)
}

func (g *GG) stroke(s styles.Stroke) {
	g.dc.SetColor(s.Color)
	g.dc.SetLineWidth(s.Width)
	g.dc.SetDash(s.Dashes...)
	g.dc.Stroke()
	g.dc.SetDash()
}

func (g *GG) FillPolygon(rings [][]Point, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		g.dc.MoveTo(ring[0].X, ring[0].Y)
		for _, p := range ring[1:] {
			g.dc.LineTo(p.X, p.Y)
		}
		g.dc.ClosePath()
	}
	g.dc.SetFillRuleEvenOdd()
	g.dc.SetColor(c)
	g.dc.Fill()
	g.dc.SetFillRuleWinding()
}

func (g *GG) Marker(at Point, m styles.Marker, size float64, fill color.NRGBA, edge styles.Stroke) {
	r := size / 2
	switch m {
	case styles.MarkerCircle:
		g.dc.DrawCircle(at.X, at.Y, r)
	case styles.MarkerTriangle:
		g.dc.DrawRegularPolygon(3, at.X, at.Y, r, 0)
	case styles.MarkerSquare:
		g.dc.DrawRectangle(at.X-r, at.Y-r, size, size)
	case styles.MarkerDiamond:
		g.dc.DrawRegularPolygon(4, at.X, at.Y, r, math.Pi/4)
	case styles.MarkerPlus, styles.MarkerX:
		// Line markers have no interior; they take the fill colour as
		// their stroke like matplotlib does.
		s := edge
		s.Color = fill
		if s.Width <= 0 {
			s.Width = size / 8
		}
		d := r
		if m == styles.MarkerX {
			d = r / math.Sqrt2
			g.StrokePath([]Point{{at.X - d, at.Y - d}, {at.X + d, at.Y + d}}, false, s)
			g.StrokePath([]Point{{at.X - d, at.Y + d}, {at.X + d, at.Y - d}}, false, s)
			return
		}
		g.StrokePath([]Point{{at.X - d, at.Y}, {at.X + d, at.Y}}, false, s)
		g.StrokePath([]Point{{at.X, at.Y - d}, {at.X, at.Y + d}}, false, s)
		return
	default:
		return
	}
	g.dc.SetColor(fill)
	if edge.Visible() {
		g.dc.FillPreserve()
		g.stroke(edge)
		return
	}
	g.dc.Fill()
}

func (g *GG) Text(s string, at Point, ax, ay float64, f styles.Font) error {
	ff, err := face(f, g.dpi)
	if err != nil {
		return err
	}
	g.dc.SetFontFace(ff)
	g.dc.SetColor(f.Color)
	g.dc.DrawStringAnchored(s, at.X, at.Y, ax, ay)
	return nil
}

func (g *GG) MeasureText(s string, f styles.Font) (float64, float64, error) {
	ff, err := face(f, g.dpi)
	if err != nil {
		return 0, 0, err
	}
	w, h := measure(ff, s)
	return w, h, nil
}

func (g *GG) Clip(r Rect) {
	g.dc.ResetClip()
	g.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	g.dc.Clip()
}

func (g *GG) ResetClip() { g.dc.ResetClip() }
