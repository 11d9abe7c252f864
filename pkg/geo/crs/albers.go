package crs

import "math"

// Albers is the Albers Conic Equal Area projection on an ellipsoid
// (Snyder, "Map Projections: A Working Manual", §14).
type Albers struct {
	lon0, x0, y0 float64
	a, e, e2     float64
	n, c, rho0   float64
}

// NewAlbers builds an Albers projection. Angles are in degrees, false
// easting/northing in metres.
func NewAlbers(ell Ellipsoid, lat1, lat2, lat0, lon0, x0, y0 float64) *Albers {
	p := &Albers{lon0: lon0, x0: x0, y0: y0, a: ell.A, e2: ell.E2(), e: ell.E()}

	phi1, phi2 := rad(lat1), rad(lat2)
	m1, m2 := p.m(phi1), p.m(phi2)
	q1, q2, q0 := p.q(phi1), p.q(phi2), p.q(rad(lat0))

	if math.Abs(phi1-phi2) < 1e-10 {
		p.n = math.Sin(phi1)
	} else {
		p.n = (m1*m1 - m2*m2) / (q2 - q1)
	}
	p.c = m1*m1 + p.n*q1
	p.rho0 = p.a * math.Sqrt(p.c-p.n*q0) / p.n
	return p
}

// Name implements Projection.
func (p *Albers) Name() string { return "Albers_Conic_Equal_Area" }

func (p *Albers) m(phi float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-p.e2*s*s)
}

func (p *Albers) q(phi float64) float64 {
	s := math.Sin(phi)
	if p.e < 1e-12 {
		return 2 * s
	}
	return (1 - p.e2) * (s/(1-p.e2*s*s) - (1/(2*p.e))*math.Log((1-p.e*s)/(1+p.e*s)))
}

// Forward implements Projection.
func (p *Albers) Forward(lon, lat float64) (x, y float64) {
	rho := p.a * math.Sqrt(p.c-p.n*p.q(rad(lat))) / p.n
	theta := p.n * rad(normalizeLon(lon-p.lon0))
	return rho*math.Sin(theta) + p.x0, p.rho0 - rho*math.Cos(theta) + p.y0
}

// Inverse implements Projection.
func (p *Albers) Inverse(x, y float64) (lon, lat float64) {
	dx, dy := x-p.x0, p.rho0-(y-p.y0)
	if p.n < 0 {
		dx, dy = -dx, -dy
	}
	rho := math.Hypot(dx, dy)
	theta := math.Atan2(dx, dy)
	if p.n < 0 {
		rho = -rho
	}

	q := (p.c - rho*rho*p.n*p.n/(p.a*p.a)) / p.n
	phi := p.phiFromQ(q)
	return normalizeLon(p.lon0 + deg(theta/p.n)), deg(phi)
}

// phiFromQ inverts q(phi) by fixed-point iteration (Snyder eq. 3-16).
func (p *Albers) phiFromQ(q float64) float64 {
	if p.e < 1e-12 {
		return math.Asin(q / 2)
	}
	// Poles: q reaches ±(1 - (1-e²)/(2e)·ln((1-e)/(1+e))).
	qp := 1 - (1-p.e2)/(2*p.e)*math.Log((1-p.e)/(1+p.e))
	if math.Abs(math.Abs(q)-qp) < 1e-12 {
		return math.Copysign(math.Pi/2, q)
	}

	phi := math.Asin(q / 2)
	for i := 0; i < 25; i++ {
		s := math.Sin(phi)
		es2 := 1 - p.e2*s*s
		dphi := es2 * es2 / (2 * math.Cos(phi)) *
			(q/(1-p.e2) - s/es2 + (1/(2*p.e))*math.Log((1-p.e*s)/(1+p.e*s)))
		phi += dphi
		if math.Abs(dphi) < 1e-14 {
			break
		}
	}
	return phi
}
