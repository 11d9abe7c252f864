package geo

import (
	"github.com/paulmach/orb"

	"github.com/txwater/studymap/pkg/geo/crs"
)

// Kind is the closed set of geometry shapes the renderer understands.
type Kind int

const (
	KindUnknown Kind = iota
	KindPoint
	KindLineString
	KindPolygon
	KindMultiPoint
	KindMultiLineString
	KindMultiPolygon
)

var kindNames = [...]string{
	KindUnknown:         "Unknown",
	KindPoint:           "Point",
	KindLineString:      "LineString",
	KindPolygon:         "Polygon",
	KindMultiPoint:      "MultiPoint",
	KindMultiLineString: "MultiLineString",
	KindMultiPolygon:    "MultiPolygon",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// SinglePart reports whether the renderer draws this kind. Multi-part
// kinds are skipped, not split.
func (k Kind) SinglePart() bool {
	return k == KindPoint || k == KindLineString || k == KindPolygon
}

// KindOf classifies an orb geometry.
func KindOf(g orb.Geometry) Kind {
	switch g.(type) {
	case orb.Point:
		return KindPoint
	case orb.LineString:
		return KindLineString
	case orb.Polygon, orb.Ring:
		return KindPolygon
	case orb.MultiPoint:
		return KindMultiPoint
	case orb.MultiLineString:
		return KindMultiLineString
	case orb.MultiPolygon:
		return KindMultiPolygon
	}
	return KindUnknown
}

// Feature is one geometry with its attribute row.
type Feature struct {
	Geometry   orb.Geometry
	Properties map[string]string
}

// Kind returns the feature's geometry kind.
func (f Feature) Kind() Kind { return KindOf(f.Geometry) }

// Collection is an ordered set of features sharing one CRS.
type Collection struct {
	Name     string
	CRS      *crs.CRS
	Features []Feature
}

// Len returns the number of features.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Features)
}

// Empty reports whether the collection has no features.
func (c *Collection) Empty() bool { return c.Len() == 0 }

// Bound returns the union of feature bounds.
func (c *Collection) Bound() orb.Bound {
	var b orb.Bound
	seen := false
	for _, f := range c.Features {
		if f.Geometry == nil {
			continue
		}
		if !seen {
			b, seen = f.Geometry.Bound(), true
			continue
		}
		b = b.Union(f.Geometry.Bound())
	}
	return b
}

// Counts tallies features by kind.
func (c *Collection) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, f := range c.Features {
		counts[f.Kind()]++
	}
	return counts
}
