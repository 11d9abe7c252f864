package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo/crs"
)

// Reproject returns a copy of c with every vertex converted to the target
// CRS. A collection with no CRS is taken to be WGS84. When source and
// target are equivalent the coordinates are copied unchanged, so
// reprojecting an already geographic collection to geographic is the
// identity.
//
// Failures carry errors.ErrCodeReprojection.
func Reproject(c *Collection, to *crs.CRS) (*Collection, error) {
	from := c.CRS
	if from == nil {
		from = crs.WGS84
	}
	out := &Collection{Name: c.Name, CRS: to, Features: make([]Feature, len(c.Features))}

	if crs.Equivalent(from, to) {
		for i, f := range c.Features {
			out.Features[i] = Feature{Geometry: cloneGeometry(f.Geometry), Properties: f.Properties}
		}
		return out, nil
	}

	var convErr error
	proj := func(p orb.Point) orb.Point {
		lon, lat, err := from.ToLonLat(p[0], p[1])
		if err != nil {
			if convErr == nil {
				convErr = err
			}
			return p
		}
		x, y := to.FromLonLat(lon, lat)
		return orb.Point{x, y}
	}

	for i, f := range c.Features {
		g := cloneGeometry(f.Geometry)
		if g != nil {
			g = project.Geometry(g, proj)
		}
		if convErr != nil {
			return nil, errors.Wrap(errors.ErrCodeReprojection, convErr,
				"reproject %s feature %d from %s to %s", c.Name, i, from, to)
		}
		out.Features[i] = Feature{Geometry: g, Properties: f.Properties}
	}
	return out, nil
}

// ToWGS84 is shorthand for Reproject(c, crs.WGS84).
func ToWGS84(c *Collection) (*Collection, error) {
	return Reproject(c, crs.WGS84)
}

func cloneGeometry(g orb.Geometry) orb.Geometry {
	if g == nil {
		return nil
	}
	return orb.Clone(g)
}
