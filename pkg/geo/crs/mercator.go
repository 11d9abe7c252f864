package crs

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// WebMercator is the spherical "Popular Visualisation" Mercator used by
// slippy-map tiles (EPSG:3857). It delegates to orb/project.
type WebMercator struct {
	x0, y0 float64
}

// Name implements Projection.
func (WebMercator) Name() string { return "Popular_Visualisation_Pseudo_Mercator" }

// Forward implements Projection.
func (p WebMercator) Forward(lon, lat float64) (x, y float64) {
	pt := project.WGS84.ToMercator(orb.Point{lon, lat})
	return pt[0] + p.x0, pt[1] + p.y0
}

// Inverse implements Projection.
func (p WebMercator) Inverse(x, y float64) (lon, lat float64) {
	pt := project.Mercator.ToWGS84(orb.Point{x - p.x0, y - p.y0})
	return pt[0], pt[1]
}
