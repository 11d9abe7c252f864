package crs

import "math"

// TransverseMercator is the ellipsoidal Transverse Mercator projection
// (Snyder §8, series form). Accurate to well under a millimetre within a
// UTM zone; degrades beyond roughly 10° from the central meridian.
type TransverseMercator struct {
	lon0, k0, x0, y0 float64
	a, e2, ep2       float64
	m0               float64
}

// NewTransverseMercator builds a Transverse Mercator projection.
func NewTransverseMercator(ell Ellipsoid, lat0, lon0, k0, x0, y0 float64) *TransverseMercator {
	e2 := ell.E2()
	p := &TransverseMercator{lon0: lon0, k0: k0, x0: x0, y0: y0, a: ell.A, e2: e2, ep2: e2 / (1 - e2)}
	p.m0 = p.meridianArc(rad(lat0))
	return p
}

// NewUTM builds the Universal Transverse Mercator projection for zone.
func NewUTM(ell Ellipsoid, zone int, north bool) *TransverseMercator {
	y0 := 0.0
	if !north {
		y0 = 10_000_000
	}
	return NewTransverseMercator(ell, 0, float64(zone*6-183), 0.9996, 500_000, y0)
}

// Name implements Projection.
func (p *TransverseMercator) Name() string { return "Transverse_Mercator" }

func (p *TransverseMercator) meridianArc(phi float64) float64 {
	e2 := p.e2
	e4, e6 := e2*e2, e2*e2*e2
	return p.a * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}

// Forward implements Projection.
func (p *TransverseMercator) Forward(lon, lat float64) (x, y float64) {
	phi := rad(lat)
	s, c := math.Sin(phi), math.Cos(phi)
	n := p.a / math.Sqrt(1-p.e2*s*s)
	t := math.Tan(phi) * math.Tan(phi)
	cc := p.ep2 * c * c
	a := rad(normalizeLon(lon-p.lon0)) * c
	a2 := a * a

	x = p.k0*n*(a+(1-t+cc)*a2*a/6+(5-18*t+t*t+72*cc-58*p.ep2)*a2*a2*a/120) + p.x0
	y = p.k0*(p.meridianArc(phi)-p.m0+n*math.Tan(phi)*
		(a2/2+(5-t+9*cc+4*cc*cc)*a2*a2/24+(61-58*t+t*t+600*cc-330*p.ep2)*a2*a2*a2/720)) + p.y0
	return x, y
}

// Inverse implements Projection.
func (p *TransverseMercator) Inverse(x, y float64) (lon, lat float64) {
	e2 := p.e2
	e4, e6 := e2*e2, e2*e2*e2

	m := p.m0 + (y-p.y0)/p.k0
	mu := m / (p.a * (1 - e2/4 - 3*e4/64 - 5*e6/256))
	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))

	phi1 := mu + (3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	s, c := math.Sin(phi1), math.Cos(phi1)
	c1 := p.ep2 * c * c
	t1 := math.Tan(phi1) * math.Tan(phi1)
	n1 := p.a / math.Sqrt(1-e2*s*s)
	r1 := p.a * (1 - e2) / math.Pow(1-e2*s*s, 1.5)
	d := (x - p.x0) / (n1 * p.k0)
	d2 := d * d

	phi := phi1 - (n1*math.Tan(phi1)/r1)*
		(d2/2-(5+3*t1+10*c1-4*c1*c1-9*p.ep2)*d2*d2/24+
			(61+90*t1+298*c1+45*t1*t1-252*p.ep2-3*c1*c1)*d2*d2*d2/720)
	lam := (d - (1+2*t1+c1)*d2*d/6 + (5-2*c1+28*t1-3*c1*c1+8*p.ep2+24*t1*t1)*d2*d2*d/120) / c

	return normalizeLon(p.lon0 + deg(lam)), deg(phi)
}
