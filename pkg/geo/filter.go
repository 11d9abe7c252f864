package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Filter returns a new collection holding the features of c whose geometry
// intersects box, in their original order. Touching the box edge counts as
// intersecting. The input collection is not modified.
func Filter(c *Collection, box BBox) *Collection {
	out := &Collection{Name: c.Name, CRS: c.CRS, Features: make([]Feature, 0, len(c.Features))}
	for _, f := range c.Features {
		if f.Geometry != nil && Intersects(f.Geometry, box) {
			out.Features = append(out.Features, f)
		}
	}
	return out
}

// Intersects reports whether g shares at least one point with box.
// Bounds are compared first; the exact test runs only on candidates.
func Intersects(g orb.Geometry, box BBox) bool {
	if !g.Bound().Intersects(box.Bound()) {
		return false
	}

	switch g := g.(type) {
	case orb.Point:
		return box.Contains(g)
	case orb.MultiPoint:
		for _, p := range g {
			if box.Contains(p) {
				return true
			}
		}
		return false
	case orb.LineString:
		return pathIntersects(g, box)
	case orb.MultiLineString:
		for _, ls := range g {
			if pathIntersects(ls, box) {
				return true
			}
		}
		return false
	case orb.Ring:
		return polygonIntersects(orb.Polygon{g}, box)
	case orb.Polygon:
		return polygonIntersects(g, box)
	case orb.MultiPolygon:
		for _, p := range g {
			if polygonIntersects(p, box) {
				return true
			}
		}
		return false
	case orb.Collection:
		for _, sub := range g {
			if Intersects(sub, box) {
				return true
			}
		}
		return false
	case orb.Bound:
		return true
	}
	return false
}

func polygonIntersects(p orb.Polygon, box BBox) bool {
	if len(p) == 0 {
		return false
	}
	for _, ring := range p {
		if pathIntersects(orb.LineString(ring), box) {
			return true
		}
	}
	// No boundary crossing: either the box lies wholly inside the polygon
	// (outside any hole) or they are disjoint.
	return planar.PolygonContains(p, box.Center())
}

func pathIntersects(ls orb.LineString, box BBox) bool {
	switch len(ls) {
	case 0:
		return false
	case 1:
		return box.Contains(ls[0])
	}
	for i := 1; i < len(ls); i++ {
		if segmentIntersects(ls[i-1], ls[i], box) {
			return true
		}
	}
	return false
}

// segmentIntersects clips segment a-b against box (Liang-Barsky).
func segmentIntersects(a, b orb.Point, box BBox) bool {
	if box.Contains(a) || box.Contains(b) {
		return true
	}
	dx, dy := b[0]-a[0], b[1]-a[1]
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}

	return clip(-dx, a[0]-box.MinLon) &&
		clip(dx, box.MaxLon-a[0]) &&
		clip(-dy, a[1]-box.MinLat) &&
		clip(dy, box.MaxLat-a[1]) &&
		t0 <= t1
}
