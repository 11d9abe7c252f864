package crs

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// wktNode is one KEYWORD[arg, arg, ...] element. Args hold string,
// float64 or *wktNode values.
type wktNode struct {
	Key  string
	Args []any
}

// child returns the first direct child with one of the given keywords.
func (n *wktNode) child(keys ...string) *wktNode {
	for _, a := range n.Args {
		c, ok := a.(*wktNode)
		if !ok {
			continue
		}
		for _, k := range keys {
			if strings.EqualFold(c.Key, k) {
				return c
			}
		}
	}
	return nil
}

func (n *wktNode) str(i int) string {
	if i < len(n.Args) {
		if s, ok := n.Args[i].(string); ok {
			return s
		}
	}
	return ""
}

func (n *wktNode) num(i int) (float64, bool) {
	if i < len(n.Args) {
		if f, ok := n.Args[i].(float64); ok {
			return f, true
		}
	}
	return 0, false
}

// ParseWKT parses an ESRI or OGC WKT1 coordinate system definition, as
// found in shapefile .prj files.
//
// When the WKT carries an EPSG AUTHORITY that [FromEPSG] knows, that
// definition is used. Otherwise the CRS is built from the spheroid,
// projection name and parameters.
func ParseWKT(s string) (*CRS, error) {
	p := &wktParser{src: strings.TrimSpace(s)}
	root, err := p.node()
	if err != nil {
		return nil, fmt.Errorf("parse wkt: %w", err)
	}

	if auth := root.child("AUTHORITY", "ID"); auth != nil && strings.EqualFold(auth.str(0), "EPSG") {
		if code, err := authorityCode(auth); err == nil {
			if c, err := FromEPSG(code); err == nil {
				return c, nil
			}
		}
	}

	switch strings.ToUpper(root.Key) {
	case "GEOGCS", "GEOGCRS", "GEODCRS":
		return geographicFromWKT(root)
	case "PROJCS", "PROJCRS":
		return projectedFromWKT(root)
	}
	return nil, fmt.Errorf("unsupported WKT root %q", root.Key)
}

func authorityCode(n *wktNode) (int, error) {
	if s := n.str(1); s != "" {
		return strconv.Atoi(s)
	}
	if f, ok := n.num(1); ok {
		return int(f), nil
	}
	return 0, fmt.Errorf("authority without code")
}

func geographicFromWKT(n *wktNode) (*CRS, error) {
	c := &CRS{Name: n.str(0), Ellipsoid: EllipsoidWGS84}
	if ell, ok := ellipsoidFromWKT(n); ok {
		c.Ellipsoid = ell
	}
	if pm := n.child("PRIMEM"); pm != nil {
		c.PrimeMeridian, _ = pm.num(1)
	}
	name := compactName(c.Name)
	if datum := n.child("DATUM"); datum != nil {
		name += compactName(datum.str(0))
	}
	switch {
	case strings.Contains(name, "wgs1984"), strings.Contains(name, "wgs84"):
		c.EPSG = 4326
	case strings.Contains(name, "northamerican1983"), strings.Contains(name, "nad83"):
		c.EPSG = 4269
	case strings.Contains(name, "northamerican1927"), strings.Contains(name, "nad27"):
		c.EPSG = 4267
	}
	return c, nil
}

func compactName(s string) string {
	return strings.ToLower(strings.NewReplacer("_", "", " ", "", "-", "").Replace(s))
}

func ellipsoidFromWKT(n *wktNode) (Ellipsoid, bool) {
	datum := n.child("DATUM")
	if datum == nil {
		return Ellipsoid{}, false
	}
	sph := datum.child("SPHEROID", "ELLIPSOID")
	if sph == nil {
		return Ellipsoid{}, false
	}
	a, okA := sph.num(1)
	invf, okF := sph.num(2)
	if okA && okF {
		return Ellipsoid{Name: sph.str(0), A: a, InvF: invf}, true
	}
	return ellipsoidByName(sph.str(0))
}

func projectedFromWKT(n *wktNode) (*CRS, error) {
	c := &CRS{Name: n.str(0), Ellipsoid: EllipsoidWGS84, Unit: UnitMetre}
	if geog := n.child("GEOGCS", "BASEGEOGCRS", "BASEGEODCRS"); geog != nil {
		if ell, ok := ellipsoidFromWKT(geog); ok {
			c.Ellipsoid = ell
		}
	}
	if u := n.child("UNIT", "LENGTHUNIT"); u != nil {
		if v, ok := u.num(1); ok && v > 0 {
			c.Unit = v
		}
	}

	method := ""
	if p := n.child("PROJECTION", "METHOD"); p != nil {
		method = strings.ToLower(p.str(0))
	}
	params := map[string]float64{}
	for _, a := range n.Args {
		if pn, ok := a.(*wktNode); ok && strings.EqualFold(pn.Key, "PARAMETER") {
			if v, ok := pn.num(1); ok {
				params[strings.ToLower(pn.str(0))] = v
			}
		}
	}
	get := func(def float64, keys ...string) float64 {
		for _, k := range keys {
			if v, ok := params[k]; ok {
				return v
			}
		}
		return def
	}

	x0 := get(0, "false_easting") * c.Unit
	y0 := get(0, "false_northing") * c.Unit
	lon0 := get(0, "central_meridian", "longitude_of_center", "longitude_of_origin")
	lat0 := get(0, "latitude_of_origin", "latitude_of_center")
	k0 := get(1, "scale_factor")

	switch method {
	case "albers", "albers_conic_equal_area":
		lat1 := get(lat0, "standard_parallel_1")
		lat2 := get(lat1, "standard_parallel_2")
		c.Projection = NewAlbers(c.Ellipsoid, lat1, lat2, lat0, lon0, x0, y0)
	case "lambert_conformal_conic", "lambert_conformal_conic_2sp":
		lat1, ok1 := params["standard_parallel_1"]
		lat2, ok2 := params["standard_parallel_2"]
		switch {
		case ok1 && ok2:
			c.Projection = NewLambertConic2SP(c.Ellipsoid, lat1, lat2, lat0, lon0, x0, y0)
		case ok1:
			c.Projection = NewLambertConic1SP(c.Ellipsoid, lat1, lon0, k0, x0, y0)
		default:
			c.Projection = NewLambertConic1SP(c.Ellipsoid, lat0, lon0, k0, x0, y0)
		}
	case "lambert_conformal_conic_1sp":
		c.Projection = NewLambertConic1SP(c.Ellipsoid, lat0, lon0, k0, x0, y0)
	case "transverse_mercator":
		c.Projection = NewTransverseMercator(c.Ellipsoid, lat0, lon0, k0, x0, y0)
	case "mercator_auxiliary_sphere", "popular_visualisation_pseudo_mercator":
		c.Projection = WebMercator{x0: x0, y0: y0}
		c.EPSG = 3857
	case "":
		return nil, fmt.Errorf("projected CRS %q has no PROJECTION", c.Name)
	default:
		return nil, fmt.Errorf("unsupported projection %q", method)
	}
	return c, nil
}

// wktParser is a small recursive-descent parser for WKT1/WKT2 syntax.
type wktParser struct {
	src string
	pos int
}

func (p *wktParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *wktParser) node() (*wktNode, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && (unicode.IsLetter(rune(p.src[p.pos])) || unicode.IsDigit(rune(p.src[p.pos])) || p.src[p.pos] == '_') {
		p.pos++
	}
	if start == p.pos {
		return nil, fmt.Errorf("expected keyword at offset %d", p.pos)
	}
	n := &wktNode{Key: p.src[start:p.pos]}

	p.skipSpace()
	if p.pos >= len(p.src) || (p.src[p.pos] != '[' && p.src[p.pos] != '(') {
		return n, nil
	}
	closer := byte(']')
	if p.src[p.pos] == '(' {
		closer = ')'
	}
	p.pos++

	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("unterminated %s", n.Key)
		}
		switch ch := p.src[p.pos]; {
		case ch == closer:
			p.pos++
			return n, nil
		case ch == ',':
			p.pos++
		case ch == '"':
			s, err := p.quoted()
			if err != nil {
				return nil, err
			}
			n.Args = append(n.Args, s)
		case ch == '-' || ch == '+' || ch == '.' || unicode.IsDigit(rune(ch)):
			f, err := p.number()
			if err != nil {
				return nil, err
			}
			n.Args = append(n.Args, f)
		default:
			child, err := p.node()
			if err != nil {
				return nil, err
			}
			n.Args = append(n.Args, child)
		}
	}
}

func (p *wktParser) quoted() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		p.pos++
		if ch == '"' {
			// WKT escapes a quote by doubling it.
			if p.pos < len(p.src) && p.src[p.pos] == '"' {
				b.WriteByte('"')
				p.pos++
				continue
			}
			return b.String(), nil
		}
		b.WriteByte(ch)
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *wktParser) number() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("+-.0123456789eE", p.src[p.pos]) >= 0 {
		p.pos++
	}
	return strconv.ParseFloat(p.src[start:p.pos], 64)
}
