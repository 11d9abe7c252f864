package render

import (
	"image/color"

	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo"
	"github.com/txwater/studymap/pkg/render/sink"
	"github.com/txwater/studymap/pkg/render/styles"
)

type swatch int

const (
	swatchLine swatch = iota
	swatchPatch
	swatchMarker
)

type legendEntry struct {
	label  string
	kind   swatch
	stroke styles.Stroke
	fill   color.NRGBA
	marker styles.Marker
}

func (r *Renderer) legendEntries() []legendEntry {
	var out []legendEntry
	for _, l := range r.m.Overlays {
		if l.Label == "" {
			continue
		}
		e := legendEntry{label: l.Label, stroke: l.Stroke, fill: l.Fill, marker: l.Marker}
		switch layerKind(l) {
		case geo.KindPolygon, geo.KindMultiPolygon:
			e.kind = swatchPatch
		case geo.KindPoint, geo.KindMultiPoint:
			e.kind = swatchMarker
		}
		out = append(out, e)
	}
	for _, rect := range r.m.Rectangles {
		if rect.Label != "" {
			out = append(out, legendEntry{label: rect.Label, kind: swatchPatch, stroke: rect.Stroke, fill: rect.Fill})
		}
	}
	return out
}

// layerKind guesses the swatch from the first feature, falling back to the
// layer's fill.
func layerKind(l Layer) geo.Kind {
	if l.Features != nil {
		for _, f := range l.Features.Features {
			if k := f.Kind(); k != geo.KindUnknown {
				return k
			}
		}
	}
	if l.Fill.A > 0 {
		return geo.KindPolygon
	}
	return geo.KindLineString
}

func (r *Renderer) legend() error {
	entries := r.legendEntries()
	if len(entries) == 0 {
		return nil
	}
	font := r.m.Style.Font(styles.RoleLegend)

	var textW, rowH float64
	for _, e := range entries {
		w, h, err := r.surf.MeasureText(e.label, font)
		if err != nil {
			return errors.Wrap(errors.ErrCodeRender, err, "measure legend label")
		}
		textW, rowH = max(textW, w), max(rowH, h)
	}

	em := r.px(font.Size)
	pad, gap, swatchW := 0.4*em, 0.8*em, 2*em
	boxW := pad + swatchW + gap + textW + pad
	boxH := pad + rowH*float64(len(entries)) + pad

	p, inset := r.frame.Plot, 0.5*em
	box := sink.Rect{X: p.X + p.W - inset - boxW, Y: p.Y + p.H - inset - boxH, W: boxW, H: boxH}
	switch r.m.Legend.Location {
	case "lower left":
		box.X = p.X + inset
	case "upper right":
		box.Y = p.Y + inset
	case "upper left":
		box.X, box.Y = p.X+inset, p.Y+inset
	}

	if r.m.Legend.Frame {
		ring := [][]sink.Point{box.Corners()}
		bg := styles.WithAlpha(r.m.Style.Background, 0.8)
		edge := styles.Stroke{Color: color.NRGBA{204, 204, 204, 255}, Width: r.px(0.8)}
		r.pushPlain(zLegend, false, func(s sink.Surface) {
			s.FillPolygon(ring, bg)
			s.StrokePath(ring[0], true, edge)
		})
	}

	for i, e := range entries {
		cy := box.Y + pad + rowH*(float64(i)+0.5)
		x0 := box.X + pad
		r.swatch(e, sink.Rect{X: x0, Y: cy - 0.35*em, W: swatchW, H: 0.7 * em})
		r.text(zLegend, e.label, sink.Point{X: x0 + swatchW + gap, Y: cy}, 0, 0.35, font)
	}
	return nil
}

func (r *Renderer) swatch(e legendEntry, at sink.Rect) {
	stroke := e.stroke.Scale(r.px(1))
	switch e.kind {
	case swatchPatch:
		ring := [][]sink.Point{at.Corners()}
		fill := e.fill
		r.pushPlain(zLegend, false, func(s sink.Surface) {
			s.FillPolygon(ring, fill)
			s.StrokePath(ring[0], true, stroke)
		})
	case swatchMarker:
		m := e.marker
		if m == styles.MarkerNone {
			m = styles.MarkerCircle
		}
		c, size := stroke.Color, at.H
		center := sink.Point{X: at.X + at.W/2, Y: at.Y + at.H/2}
		r.pushPlain(zLegend, false, func(s sink.Surface) { s.Marker(center, m, size, c, styles.Stroke{}) })
	default:
		y := at.Y + at.H/2
		line := []sink.Point{{X: at.X, Y: y}, {X: at.X + at.W, Y: y}}
		r.pushPlain(zLegend, false, func(s sink.Surface) { s.StrokePath(line, false, stroke) })
	}
}
