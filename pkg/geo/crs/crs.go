// Package crs describes coordinate reference systems and converts projected
// coordinates back to geographic longitude/latitude.
//
// A [CRS] is either geographic (coordinates already in degrees) or projected
// (a [Projection] on an [Ellipsoid] plus a linear unit). CRSs come from an
// EPSG code ([FromEPSG]) or from the ESRI/OGC WKT found in a shapefile's .prj
// sidecar ([ParseWKT]).
//
// Datum shifts between WGS84, NAD83 and NAD27 are not applied. NAD83 and
// WGS84 agree to within a metre over Texas, well below a pixel at the
// scales studymap draws.
package crs

import (
	"fmt"
	"math"
)

// Projection converts between geographic degrees and projected metres.
type Projection interface {
	// Name is the canonical projection method name.
	Name() string
	// Forward projects lon/lat degrees to easting/northing metres.
	Forward(lon, lat float64) (x, y float64)
	// Inverse converts easting/northing metres to lon/lat degrees.
	Inverse(x, y float64) (lon, lat float64)
}

// CRS is a coordinate reference system.
type CRS struct {
	Name          string
	EPSG          int // 0 when unknown
	Ellipsoid     Ellipsoid
	Projection    Projection // nil for geographic systems
	Unit          float64    // metres per linear unit (projected only)
	PrimeMeridian float64    // degrees east of Greenwich (geographic only)
}

// WGS84 is EPSG:4326, the geographic longitude/latitude system every
// dataset is converted to before drawing.
var WGS84 = &CRS{Name: "WGS 84", EPSG: 4326, Ellipsoid: EllipsoidWGS84}

// IsGeographic reports whether coordinates are longitude/latitude degrees.
func (c *CRS) IsGeographic() bool { return c.Projection == nil }

// String returns "EPSG:<code>" when the code is known, else the name.
func (c *CRS) String() string {
	if c.EPSG != 0 {
		return fmt.Sprintf("EPSG:%d", c.EPSG)
	}
	if c.Name != "" {
		return c.Name
	}
	return "unknown CRS"
}

// ToLonLat converts one coordinate in this CRS to longitude/latitude.
func (c *CRS) ToLonLat(x, y float64) (lon, lat float64, err error) {
	if c.IsGeographic() {
		return x + c.PrimeMeridian, y, nil
	}
	unit := c.Unit
	if unit == 0 {
		unit = 1
	}
	lon, lat = c.Projection.Inverse(x*unit, y*unit)
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return 0, 0, fmt.Errorf("%s: (%g, %g) has no geographic equivalent", c, x, y)
	}
	return lon, lat, nil
}

// FromLonLat converts longitude/latitude to this CRS.
func (c *CRS) FromLonLat(lon, lat float64) (x, y float64) {
	if c.IsGeographic() {
		return lon - c.PrimeMeridian, lat
	}
	unit := c.Unit
	if unit == 0 {
		unit = 1
	}
	x, y = c.Projection.Forward(lon, lat)
	return x / unit, y / unit
}

// Equivalent reports whether a and b describe the same coordinate space
// for drawing purposes: both geographic, or the same EPSG code.
func Equivalent(a, b *CRS) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.IsGeographic() && b.IsGeographic() {
		return a.PrimeMeridian == b.PrimeMeridian
	}
	return a.EPSG != 0 && a.EPSG == b.EPSG
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
func deg(rad float64) float64 { return rad * 180 / math.Pi }

// normalizeLon wraps a longitude in degrees to [-180, 180].
func normalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
