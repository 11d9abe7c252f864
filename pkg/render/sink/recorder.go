package sink

import (
	"image"
	"image/color"

	"github.com/txwater/studymap/pkg/render/styles"
)

// OpKind names a Surface call.
type OpKind string

const (
	OpFill        OpKind = "fill"
	OpImage       OpKind = "image"
	OpStroke      OpKind = "stroke"
	OpFillPolygon OpKind = "fill-polygon"
	OpMarker      OpKind = "marker"
	OpText        OpKind = "text"
)

// Op is one recorded call.
type Op struct {
	Kind    OpKind
	Points  int
	Color   color.NRGBA
	Width   float64
	Marker  styles.Marker
	Text    string
	Font    styles.Font
	Clipped bool
}

// Recorder is a Surface that draws nothing. It keeps every call in order
// and measures text with the real font metrics, so layouts computed
// against it match the rasterised ones.
type Recorder struct {
	W, H    int
	Res     float64
	Ops     []Op
	clipped bool
}

// NewRecorder returns an empty recorder of the given size.
func NewRecorder(w, h int, dpi float64) *Recorder {
	return &Recorder{W: w, H: h, Res: dpi}
}

func (r *Recorder) Size() (int, int) { return r.W, r.H }
func (r *Recorder) DPI() float64     { return r.Res }
func (r *Recorder) Clip(Rect)        { r.clipped = true }
func (r *Recorder) ResetClip()       { r.clipped = false }

// Image returns a blank canvas of the recorder's size.
func (r *Recorder) Image() image.Image {
	return image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
}

func (r *Recorder) add(op Op) {
	op.Clipped = r.clipped
	r.Ops = append(r.Ops, op)
}

func (r *Recorder) Fill(c color.NRGBA) { r.add(Op{Kind: OpFill, Color: c}) }

func (r *Recorder) DrawImage(img image.Image, _ Rect) { r.add(Op{Kind: OpImage}) }

func (r *Recorder) StrokePath(pts []Point, _ bool, s styles.Stroke) {
	if len(pts) < 2 || !s.Visible() {
		return
	}
	r.add(Op{Kind: OpStroke, Points: len(pts), Color: s.Color, Width: s.Width})
}

func (r *Recorder) FillPolygon(rings [][]Point, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	n := 0
	for _, ring := range rings {
		n += len(ring)
	}
	r.add(Op{Kind: OpFillPolygon, Points: n, Color: c})
}

func (r *Recorder) Marker(_ Point, m styles.Marker, size float64, fill color.NRGBA, _ styles.Stroke) {
	r.add(Op{Kind: OpMarker, Marker: m, Width: size, Color: fill})
}

func (r *Recorder) Text(s string, _ Point, _, _ float64, f styles.Font) error {
	if _, err := face(f, r.Res); err != nil {
		return err
	}
	r.add(Op{Kind: OpText, Text: s, Font: f, Color: f.Color})
	return nil
}

func (r *Recorder) MeasureText(s string, f styles.Font) (float64, float64, error) {
	ff, err := face(f, r.Res)
	if err != nil {
		return 0, 0, err
	}
	w, h := measure(ff, s)
	return w, h, nil
}

// Count returns how many ops of kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Texts returns the recorded text ops.
func (r *Recorder) Texts() []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op)
		}
	}
	return out
}
