// Package geo holds the geographic data model: bounding boxes, features
// with tagged geometries, feature collections, spatial filtering and
// reprojection to longitude/latitude.
//
// Geometries are [github.com/paulmach/orb] values; [Kind] classifies them
// into the closed set the renderer dispatches on.
package geo

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/txwater/studymap/pkg/errors"
)

// BBox is a longitude/latitude rectangle. It is a value type; methods
// return new boxes rather than mutating.
type BBox struct {
	MinLon float64 `toml:"min_lon" json:"min_lon"`
	MinLat float64 `toml:"min_lat" json:"min_lat"`
	MaxLon float64 `toml:"max_lon" json:"max_lon"`
	MaxLat float64 `toml:"max_lat" json:"max_lat"`
}

// NewBBox builds a box from its corners.
func NewBBox(minLon, minLat, maxLon, maxLat float64) BBox {
	return BBox{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}
}

// BBoxFromBound converts an orb.Bound.
func BBoxFromBound(b orb.Bound) BBox {
	return BBox{MinLon: b.Min[0], MinLat: b.Min[1], MaxLon: b.Max[0], MaxLat: b.Max[1]}
}

// Validate checks ordering and range.
func (b BBox) Validate() error {
	return errors.ValidateBBox(b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// IsZero reports whether the box was never set.
func (b BBox) IsZero() bool { return b == BBox{} }

// Bound returns the box as an orb.Bound.
func (b BBox) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinLon, b.MinLat}, Max: orb.Point{b.MaxLon, b.MaxLat}}
}

// Polygon returns the box as a closed counter-clockwise polygon.
func (b BBox) Polygon() orb.Polygon {
	return orb.Polygon{b.Ring()}
}

// Ring returns the closed outline, starting at the lower-left corner.
func (b BBox) Ring() orb.Ring {
	return orb.Ring{
		{b.MinLon, b.MinLat},
		{b.MaxLon, b.MinLat},
		{b.MaxLon, b.MaxLat},
		{b.MinLon, b.MaxLat},
		{b.MinLon, b.MinLat},
	}
}

// Pad grows the box by deg degrees on every side.
func (b BBox) Pad(deg float64) BBox {
	return BBox{MinLon: b.MinLon - deg, MinLat: b.MinLat - deg, MaxLon: b.MaxLon + deg, MaxLat: b.MaxLat + deg}
}

// Width is the longitude span in degrees.
func (b BBox) Width() float64 { return b.MaxLon - b.MinLon }

// Height is the latitude span in degrees.
func (b BBox) Height() float64 { return b.MaxLat - b.MinLat }

// Center returns the midpoint.
func (b BBox) Center() orb.Point {
	return orb.Point{(b.MinLon + b.MaxLon) / 2, (b.MinLat + b.MaxLat) / 2}
}

// Contains reports whether p lies inside or on the edge of the box.
func (b BBox) Contains(p orb.Point) bool {
	return p[0] >= b.MinLon && p[0] <= b.MaxLon && p[1] >= b.MinLat && p[1] <= b.MaxLat
}

// String formats the box the way the map titles do.
func (b BBox) String() string {
	return fmt.Sprintf("bbox(%.4f,%.4f,%.4f,%.4f)", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}
