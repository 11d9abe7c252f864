package sink

import (
	"image"
	"image/color"
	"testing"

	"github.com/txwater/studymap/pkg/render/styles"
)

var (
	white = color.NRGBA{255, 255, 255, 255}
	red   = color.NRGBA{255, 0, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
)

func rgba(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func square(x, y, s float64) []Point {
	return []Point{{x, y}, {x + s, y}, {x + s, y + s}, {x, y + s}}
}

func TestGGFillPolygon(t *testing.T) {
	g := NewGG(100, 100, 72)
	g.Fill(white)
	g.FillPolygon([][]Point{square(10, 10, 80), square(40, 40, 20)}, red)

	img := g.Image()
	if got := rgba(img, 20, 20); got != red {
		t.Errorf("inside outer ring = %v, want red", got)
	}
	if got := rgba(img, 50, 50); got != white {
		t.Errorf("inside hole = %v, want white", got)
	}
	if got := rgba(img, 5, 5); got != white {
		t.Errorf("outside = %v, want white", got)
	}
}

func TestGGClip(t *testing.T) {
	g := NewGG(100, 100, 72)
	g.Fill(white)
	g.Clip(Rect{0, 0, 50, 100})
	g.FillPolygon([][]Point{square(0, 0, 100)}, blue)
	g.ResetClip()

	img := g.Image()
	if got := rgba(img, 25, 50); got != blue {
		t.Errorf("inside clip = %v, want blue", got)
	}
	if got := rgba(img, 75, 50); got != white {
		t.Errorf("outside clip = %v, want white", got)
	}
}

func TestGGStrokeAndMarker(t *testing.T) {
	g := NewGG(100, 100, 72)
	g.Fill(white)
	g.StrokePath([]Point{{0, 50}, {100, 50}}, false, styles.Stroke{Color: red, Width: 4})
	g.Marker(Point{50, 20}, styles.MarkerCircle, 10, blue, styles.Stroke{})

	img := g.Image()
	if got := rgba(img, 10, 50); got != red {
		t.Errorf("on line = %v, want red", got)
	}
	if got := rgba(img, 50, 20); got != blue {
		t.Errorf("marker centre = %v, want blue", got)
	}
	if got := rgba(img, 50, 35); got != white {
		t.Errorf("between = %v, want white", got)
	}
}

func TestGGDrawImageScales(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetNRGBA(x, y, red)
		}
	}
	g := NewGG(40, 40, 72)
	g.Fill(white)
	g.DrawImage(src, Rect{10, 10, 20, 20})

	img := g.Image()
	if got := rgba(img, 25, 25); got != red {
		t.Errorf("scaled image = %v, want red", got)
	}
	if got := rgba(img, 35, 35); got != white {
		t.Errorf("outside image = %v, want white", got)
	}
}

func TestGGText(t *testing.T) {
	g := NewGG(200, 60, 72)
	g.Fill(white)
	f := styles.Font{Size: 24, Color: color.NRGBA{0, 0, 0, 255}}
	if err := g.Text("Belton Lake", Point{10, 40}, 0, 0, f); err != nil {
		t.Fatal(err)
	}

	dark := 0
	b := g.Image().Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if rgba(g.Image(), x, y).R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("Text() drew nothing")
	}
}

func TestMeasureTextScalesWithDPI(t *testing.T) {
	f := styles.Font{Size: 24}
	w72, h72, err := NewRecorder(1, 1, 72).MeasureText("GAST2", f)
	if err != nil {
		t.Fatal(err)
	}
	w600, h600, err := NewGG(1, 1, 600).MeasureText("GAST2", f)
	if err != nil {
		t.Fatal(err)
	}
	if w600 < w72*7 || h600 < h72*7 {
		t.Errorf("600 DPI text %vx%v not ~8x of 72 DPI %vx%v", w600, h600, w72, h72)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(100, 100, 72)
	r.Fill(white)
	r.Clip(Rect{0, 0, 50, 50})
	r.FillPolygon([][]Point{square(0, 0, 10)}, red)
	r.FillPolygon([][]Point{square(0, 0, 10)}, color.NRGBA{})
	r.StrokePath([]Point{{0, 0}, {1, 1}, {2, 2}}, false, styles.Stroke{Color: red, Width: 1})
	r.StrokePath([]Point{{0, 0}}, false, styles.Stroke{Color: red, Width: 1})
	r.ResetClip()
	r.Marker(Point{}, styles.MarkerTriangle, 12, red, styles.Stroke{})
	if err := r.Text("PICT2", Point{}, 0, 0, styles.Font{Size: 24}); err != nil {
		t.Fatal(err)
	}

	counts := map[OpKind]int{
		OpFill:        1,
		OpFillPolygon: 1,
		OpStroke:      1,
		OpMarker:      1,
		OpText:        1,
	}
	for kind, want := range counts {
		if got := r.Count(kind); got != want {
			t.Errorf("Count(%s) = %d, want %d", kind, got, want)
		}
	}
	if !r.Ops[1].Clipped || r.Ops[3].Clipped {
		t.Error("clip state not recorded")
	}
	if texts := r.Texts(); len(texts) != 1 || texts[0].Text != "PICT2" {
		t.Errorf("Texts() = %v", texts)
	}
	if r.Ops[2].Points != 3 {
		t.Errorf("stroke points = %d, want 3", r.Ops[2].Points)
	}
}
