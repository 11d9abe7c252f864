package crs

import "math"

// LambertConic is the Lambert Conformal Conic projection on an ellipsoid
// (Snyder §15). The one-standard-parallel form uses lat1 == lat2 == lat0
// with a scale factor k0; the two-parallel form uses k0 = 1.
type LambertConic struct {
	lon0, x0, y0 float64
	a, e         float64
	n, f, rho0   float64
}

// NewLambertConic2SP builds the two-standard-parallel variant.
func NewLambertConic2SP(ell Ellipsoid, lat1, lat2, lat0, lon0, x0, y0 float64) *LambertConic {
	return newLambertConic(ell, lat1, lat2, lat0, lon0, x0, y0, 1)
}

// NewLambertConic1SP builds the single-parallel variant with scale k0 at lat0.
func NewLambertConic1SP(ell Ellipsoid, lat0, lon0, k0, x0, y0 float64) *LambertConic {
	return newLambertConic(ell, lat0, lat0, lat0, lon0, x0, y0, k0)
}

func newLambertConic(ell Ellipsoid, lat1, lat2, lat0, lon0, x0, y0, k0 float64) *LambertConic {
	p := &LambertConic{lon0: lon0, x0: x0, y0: y0, a: ell.A, e: ell.E()}

	phi1, phi2 := rad(lat1), rad(lat2)
	m1, m2 := p.m(phi1), p.m(phi2)
	t1, t2, t0 := p.t(phi1), p.t(phi2), p.t(rad(lat0))

	if math.Abs(phi1-phi2) < 1e-10 {
		p.n = math.Sin(phi1)
	} else {
		p.n = (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	}
	p.f = k0 * m1 / (p.n * math.Pow(t1, p.n))
	p.rho0 = p.a * p.f * math.Pow(t0, p.n)
	return p
}

// Name implements Projection.
func (p *LambertConic) Name() string { return "Lambert_Conformal_Conic" }

func (p *LambertConic) m(phi float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-p.e*p.e*s*s)
}

func (p *LambertConic) t(phi float64) float64 {
	s := math.Sin(phi)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-p.e*s)/(1+p.e*s), p.e/2)
}

// Forward implements Projection.
func (p *LambertConic) Forward(lon, lat float64) (x, y float64) {
	rho := p.a * p.f * math.Pow(p.t(rad(lat)), p.n)
	theta := p.n * rad(normalizeLon(lon-p.lon0))
	return rho*math.Sin(theta) + p.x0, p.rho0 - rho*math.Cos(theta) + p.y0
}

// Inverse implements Projection.
func (p *LambertConic) Inverse(x, y float64) (lon, lat float64) {
	dx, dy := x-p.x0, p.rho0-(y-p.y0)
	if p.n < 0 {
		dx, dy = -dx, -dy
	}
	rho := math.Copysign(math.Hypot(dx, dy), p.n)
	theta := math.Atan2(dx, dy)

	if rho == 0 {
		return p.lon0, math.Copysign(90, p.n)
	}
	t := math.Pow(rho/(p.a*p.f), 1/p.n)

	phi := math.Pi/2 - 2*math.Atan(t)
	for i := 0; i < 25; i++ {
		s := math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(t*math.Pow((1-p.e*s)/(1+p.e*s), p.e/2))
		if math.Abs(next-phi) < 1e-14 {
			phi = next
			break
		}
		phi = next
	}
	return normalizeLon(p.lon0 + deg(theta/p.n)), deg(phi)
}
