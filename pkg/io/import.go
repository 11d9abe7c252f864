package io

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo"
	"github.com/txwater/studymap/pkg/geo/crs"
)

// Loader reads vector datasets. The zero value is ready to use.
type Loader struct {
	// Logger receives debug notes such as a missing .prj. Nil discards them.
	Logger *log.Logger
}

// Load reads a dataset with a zero Loader.
func Load(path string) (*geo.Collection, error) {
	return Loader{}.Load(path)
}

// Load reads the shapefile or GeoJSON file at path. The format is chosen by
// extension: .shp for shapefiles, .geojson or .json for GeoJSON.
func (l Loader) Load(path string) (*geo.Collection, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InputNotFound([]string{path})
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "stat %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return l.loadShapefile(path)
	case ".geojson", ".json":
		return loadGeoJSON(path)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "%s: unsupported dataset format (want .shp, .geojson or .json)", path)
}

// Missing returns the paths that do not exist, in order.
func Missing(paths []string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			out = append(out, p)
		}
	}
	return out
}

// Name derives a collection name from a dataset path.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (l Loader) loadShapefile(path string) (*geo.Collection, error) {
	dbf := strings.TrimSuffix(path, filepath.Ext(path)) + ".dbf"
	if _, err := os.Stat(dbf); os.IsNotExist(err) {
		return nil, errors.InputNotFound([]string{dbf})
	}

	ref, err := l.readPRJ(path)
	if err != nil {
		return nil, err
	}

	r, err := shp.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open shapefile %s", path)
	}
	defer r.Close()

	fields := r.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}

	c := &geo.Collection{Name: Name(path), CRS: ref}
	for r.Next() {
		n, s := r.Shape()
		g := shapeGeometry(s)
		if g == nil {
			continue
		}
		props := make(map[string]string, len(names))
		for i, name := range names {
			props[name] = strings.TrimSpace(strings.TrimRight(r.ReadAttribute(n, i), "\x00"))
		}
		c.Features = append(c.Features, geo.Feature{Geometry: g, Properties: props})
	}
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read shapefile %s", path)
	}
	return c, nil
}

func (l Loader) readPRJ(path string) (*crs.CRS, error) {
	prj := strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
	data, err := os.ReadFile(prj)
	if os.IsNotExist(err) {
		if l.Logger != nil {
			l.Logger.Debug("no .prj sidecar, assuming WGS84", "dataset", path)
		}
		return crs.WGS84, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", prj)
	}
	ref, err := crs.ParseWKT(string(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeReprojection, err, "%s", prj)
	}
	return ref, nil
}

// shapeGeometry converts one shapefile record. Null shapes return nil.
func shapeGeometry(s shp.Shape) orb.Geometry {
	switch s := s.(type) {
	case *shp.Point:
		return orb.Point{s.X, s.Y}
	case *shp.PointZ:
		return orb.Point{s.X, s.Y}
	case *shp.PointM:
		return orb.Point{s.X, s.Y}
	case *shp.MultiPoint:
		return multiPoint(s.Points)
	case *shp.MultiPointZ:
		return multiPoint(s.Points)
	case *shp.MultiPointM:
		return multiPoint(s.Points)
	case *shp.PolyLine:
		return lines(s.Parts, s.Points)
	case *shp.PolyLineZ:
		return lines(s.Parts, s.Points)
	case *shp.PolyLineM:
		return lines(s.Parts, s.Points)
	case *shp.Polygon:
		return polygons(s.Parts, s.Points)
	case *shp.PolygonZ:
		return polygons(s.Parts, s.Points)
	case *shp.PolygonM:
		return polygons(s.Parts, s.Points)
	}
	return nil
}

func multiPoint(pts []shp.Point) orb.Geometry {
	mp := make(orb.MultiPoint, len(pts))
	for i, p := range pts {
		mp[i] = orb.Point{p.X, p.Y}
	}
	return mp
}

// splitParts cuts the flat point list at the part offsets.
func splitParts(parts []int32, pts []shp.Point) [][]orb.Point {
	out := make([][]orb.Point, 0, len(parts))
	for i, start := range parts {
		end := int32(len(pts))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || int(end) > len(pts) {
			continue
		}
		part := make([]orb.Point, 0, end-start)
		for _, p := range pts[start:end] {
			part = append(part, orb.Point{p.X, p.Y})
		}
		out = append(out, part)
	}
	return out
}

func lines(parts []int32, pts []shp.Point) orb.Geometry {
	split := splitParts(parts, pts)
	switch len(split) {
	case 0:
		return nil
	case 1:
		return orb.LineString(split[0])
	}
	mls := make(orb.MultiLineString, len(split))
	for i, p := range split {
		mls[i] = orb.LineString(p)
	}
	return mls
}

// polygons groups rings into polygons. Shapefile outer rings are clockwise
// and holes counter-clockwise.
func polygons(parts []int32, pts []shp.Point) orb.Geometry {
	var outers []orb.Polygon
	var holes []orb.Ring
	for _, p := range splitParts(parts, pts) {
		ring := orb.Ring(p)
		if len(ring) < 3 {
			continue
		}
		if ring.Orientation() == orb.CCW {
			holes = append(holes, ring)
			continue
		}
		outers = append(outers, orb.Polygon{ring})
	}

	if len(outers) == 0 {
		// Wound the wrong way throughout: treat every ring as an outer ring.
		for _, h := range holes {
			outers = append(outers, orb.Polygon{h})
		}
		holes = nil
	}

	for _, h := range holes {
		owner := len(outers) - 1
		for i, o := range outers {
			if planar.RingContains(o[0], h[0]) {
				owner = i
				break
			}
		}
		outers[owner] = append(outers[owner], h)
	}

	switch len(outers) {
	case 0:
		return nil
	case 1:
		return outers[0]
	}
	return orb.MultiPolygon(outers)
}

func loadGeoJSON(path string) (*geo.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}

	c := &geo.Collection{Name: Name(path), CRS: crs.WGS84}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		f, ferr := geojson.UnmarshalFeature(data)
		if ferr != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode GeoJSON %s", path)
		}
		fc = &geojson.FeatureCollection{Features: []*geojson.Feature{f}}
	}

	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		props := make(map[string]string, len(f.Properties))
		for k, v := range f.Properties {
			if v != nil {
				props[k] = fmt.Sprint(v)
			}
		}
		c.Features = append(c.Features, geo.Feature{Geometry: f.Geometry, Properties: props})
	}
	return c, nil
}
