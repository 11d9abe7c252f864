package crs

import "fmt"

// Linear units in metres.
const (
	UnitMetre      = 1.0
	UnitUSSurveyFt = 1200.0 / 3937.0
	UnitFoot       = 0.3048
)

// FromEPSG returns the CRS for the EPSG codes studymap knows about:
// geographic WGS84/NAD83/NAD27, Web Mercator, the three Texas statewide
// systems and the NAD83/WGS84 UTM zones.
func FromEPSG(code int) (*CRS, error) {
	switch code {
	case 4326:
		return WGS84, nil
	case 4269:
		return &CRS{Name: "NAD83", EPSG: code, Ellipsoid: EllipsoidGRS80}, nil
	case 4267:
		return &CRS{Name: "NAD27", EPSG: code, Ellipsoid: EllipsoidClarke66}, nil
	case 3857, 900913, 102100:
		return &CRS{Name: "WGS 84 / Pseudo-Mercator", EPSG: 3857, Ellipsoid: SphereWebMercator,
			Projection: WebMercator{}, Unit: UnitMetre}, nil
	case 3081:
		return &CRS{Name: "NAD83 / Texas State Mapping System", EPSG: code, Ellipsoid: EllipsoidGRS80, Unit: UnitMetre,
			Projection: NewLambertConic2SP(EllipsoidGRS80, 27.416666666666668, 34.916666666666664, 31.166666666666668, -100, 1_000_000, 1_000_000)}, nil
	case 3082:
		return &CRS{Name: "NAD83 / Texas Centric Lambert Conformal", EPSG: code, Ellipsoid: EllipsoidGRS80, Unit: UnitMetre,
			Projection: NewLambertConic2SP(EllipsoidGRS80, 27.5, 35, 18, -100, 1_500_000, 5_000_000)}, nil
	case 3083:
		return &CRS{Name: "NAD83 / Texas Centric Albers Equal Area", EPSG: code, Ellipsoid: EllipsoidGRS80, Unit: UnitMetre,
			Projection: NewAlbers(EllipsoidGRS80, 27.5, 35, 18, -100, 1_500_000, 6_000_000)}, nil
	}

	switch {
	case code >= 26901 && code <= 26923:
		zone := code - 26900
		return &CRS{Name: fmt.Sprintf("NAD83 / UTM zone %dN", zone), EPSG: code, Ellipsoid: EllipsoidGRS80,
			Unit: UnitMetre, Projection: NewUTM(EllipsoidGRS80, zone, true)}, nil
	case code >= 32601 && code <= 32660:
		zone := code - 32600
		return &CRS{Name: fmt.Sprintf("WGS 84 / UTM zone %dN", zone), EPSG: code, Ellipsoid: EllipsoidWGS84,
			Unit: UnitMetre, Projection: NewUTM(EllipsoidWGS84, zone, true)}, nil
	case code >= 32701 && code <= 32760:
		zone := code - 32700
		return &CRS{Name: fmt.Sprintf("WGS 84 / UTM zone %dS", zone), EPSG: code, Ellipsoid: EllipsoidWGS84,
			Unit: UnitMetre, Projection: NewUTM(EllipsoidWGS84, zone, false)}, nil
	}
	return nil, fmt.Errorf("unsupported EPSG code %d", code)
}
