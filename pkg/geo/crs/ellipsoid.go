package crs

import (
	"math"
	"strings"
)

// Ellipsoid is a reference ellipsoid given by semi-major axis and inverse
// flattening. InvF == 0 denotes a sphere.
type Ellipsoid struct {
	Name string
	A    float64
	InvF float64
}

// Common ellipsoids.
var (
	EllipsoidWGS84    = Ellipsoid{Name: "WGS 84", A: 6378137, InvF: 298.257223563}
	EllipsoidGRS80    = Ellipsoid{Name: "GRS 1980", A: 6378137, InvF: 298.257222101}
	EllipsoidClarke66 = Ellipsoid{Name: "Clarke 1866", A: 6378206.4, InvF: 294.9786982}
	SphereWebMercator = Ellipsoid{Name: "Popular Visualisation Sphere", A: 6378137}
)

// F returns the flattening.
func (e Ellipsoid) F() float64 {
	if e.InvF == 0 {
		return 0
	}
	return 1 / e.InvF
}

// E2 returns the first eccentricity squared.
func (e Ellipsoid) E2() float64 {
	f := e.F()
	return 2*f - f*f
}

// E returns the first eccentricity.
func (e Ellipsoid) E() float64 { return math.Sqrt(e.E2()) }

// ellipsoidByName matches WKT spheroid names to known ellipsoids so a
// .prj that only names its spheroid still resolves.
func ellipsoidByName(name string) (Ellipsoid, bool) {
	n := compactName(name)
	switch {
	case strings.Contains(n, "grs1980"), strings.Contains(n, "grs80"):
		return EllipsoidGRS80, true
	case strings.Contains(n, "wgs84"), strings.Contains(n, "wgs1984"):
		return EllipsoidWGS84, true
	case strings.Contains(n, "clarke1866"):
		return EllipsoidClarke66, true
	}
	return Ellipsoid{}, false
}
