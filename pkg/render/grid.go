package render

import (
	"math"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/txwater/studymap/pkg/render/sink"
	"github.com/txwater/studymap/pkg/render/styles"
)

// labelPad is the gap in points between the plot edge and tick labels.
const labelPad = 4

// autoTicks is the rough number of grid lines chosen per axis.
const autoTicks = 5

// Ticks returns the values of explicit that lie within [lo, hi], or nice
// round values when explicit is empty.
func Ticks(explicit []float64, lo, hi float64) []float64 {
	if len(explicit) > 0 {
		var out []float64
		for _, v := range explicit {
			if v >= lo-1e-9 && v <= hi+1e-9 {
				out = append(out, v)
			}
		}
		return out
	}

	step := NiceStep((hi - lo) / autoTicks)
	if step <= 0 {
		return nil
	}
	var out []float64
	for v := math.Ceil(lo/step-1e-9) * step; v <= hi+1e-9; v += step {
		out = append(out, round6(v))
	}
	return out
}

// NiceStep rounds raw up to 1, 2, 2.5 or 5 times a power of ten.
func NiceStep(raw float64) float64 {
	if raw <= 0 || math.IsInf(raw, 0) || math.IsNaN(raw) {
		return 0
	}
	exp := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if raw <= m*exp+1e-12 {
			return m * exp
		}
	}
	return 10 * exp
}

// FormatLat formats a latitude like 31.2°N.
func FormatLat(v float64) string { return formatDeg(v, "N", "S") }

// FormatLon formats a longitude like 97.9°W.
func FormatLon(v float64) string { return formatDeg(v, "E", "W") }

func formatDeg(v float64, pos, neg string) string {
	v = round6(v)
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64) + "°"
	switch {
	case v > 0:
		return s + pos
	case v < 0:
		return s + neg
	}
	return s
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

func (r *Renderer) grid() {
	g, e, p := r.m.Grid, r.m.Extent, r.frame.Plot
	stroke := g.Stroke.Scale(r.px(1))
	font := r.m.Style.Font(styles.RoleGridLabel)
	pad := r.px(labelPad)

	for _, lat := range Ticks(g.Parallels, e.MinLat, e.MaxLat) {
		line := r.frame.Path([]orb.Point{{e.MinLon, lat}, {e.MaxLon, lat}})
		if stroke.Visible() {
			r.pushPlain(g.Z, true, func(s sink.Surface) { s.StrokePath(line, false, stroke) })
		}
		y, label := line[0].Y, FormatLat(lat)
		if g.ParallelLabels.Left {
			r.text(zLabels, label, sink.Point{X: p.X - pad, Y: y}, 1, 0.35, font)
		}
		if g.ParallelLabels.Right {
			r.text(zLabels, label, sink.Point{X: p.X + p.W + pad, Y: y}, 0, 0.35, font)
		}
	}

	for _, lon := range Ticks(g.Meridians, e.MinLon, e.MaxLon) {
		line := r.frame.Path([]orb.Point{{lon, e.MinLat}, {lon, e.MaxLat}})
		if stroke.Visible() {
			r.pushPlain(g.Z, true, func(s sink.Surface) { s.StrokePath(line, false, stroke) })
		}
		x, label := line[0].X, FormatLon(lon)
		if g.MeridianLabels.Bottom {
			r.text(zLabels, label, sink.Point{X: x, Y: p.Y + p.H + pad}, 0.5, 1, font)
		}
		if g.MeridianLabels.Top {
			r.text(zLabels, label, sink.Point{X: x, Y: p.Y - pad}, 0.5, 0, font)
		}
	}
}
