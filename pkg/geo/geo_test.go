package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo/crs"
)

var belton = NewBBox(-97.95, 31.00, -97.25, 31.50)

func square(cx, cy, half float64) orb.Polygon {
	return orb.Polygon{{
		{cx - half, cy - half}, {cx - half, cy + half}, {cx + half, cy + half},
		{cx + half, cy - half}, {cx - half, cy - half},
	}}
}

func TestIntersects(t *testing.T) {
	tests := []struct {
		name string
		g    orb.Geometry
		want bool
	}{
		{"point inside", orb.Point{-97.5, 31.2}, true},
		{"point on edge", orb.Point{-97.25, 31.2}, true},
		{"point outside", orb.Point{-96.0, 31.2}, false},
		{"line inside", orb.LineString{{-97.6, 31.1}, {-97.5, 31.3}}, true},
		{"line crossing without vertex inside", orb.LineString{{-98.5, 31.2}, {-96.5, 31.3}}, true},
		{"line passing corner outside", orb.LineString{{-98.5, 31.0 - 0.6}, {-97.9, 30.9}}, false},
		{"diagonal line missing box", orb.LineString{{-98.0, 31.6}, {-97.8, 31.55}}, false},
		{"polygon inside", square(-97.5, 31.2, 0.05), true},
		{"polygon containing box", square(-97.6, 31.25, 2), true},
		{"polygon overlapping", square(-97.2, 31.5, 0.1), true},
		{"polygon outside", square(-95, 30, 0.1), false},
		{"box inside polygon hole", orb.Polygon{square(-97.6, 31.25, 3)[0], square(-97.6, 31.25, 1)[0]}, false},
		{"multipolygon with one part in", orb.MultiPolygon{square(-95, 30, 0.1), square(-97.5, 31.2, 0.05)}, true},
		{"multiline none in", orb.MultiLineString{{{-90, 30}, {-91, 30}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Intersects(tt.g, belton); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	c := &Collection{Name: "reservoirs", CRS: crs.WGS84}
	inside := []int{1, 3, 4}
	for i := 0; i < 6; i++ {
		var g orb.Geometry = square(-90+float64(i), 25, 0.1)
		for _, j := range inside {
			if i == j {
				g = square(-97.9+0.1*float64(i), 31.1, 0.02)
			}
		}
		c.Features = append(c.Features, Feature{Geometry: g, Properties: map[string]string{"id": string(rune('a' + i))}})
	}

	got := Filter(c, belton)
	if got.Len() != len(inside) {
		t.Fatalf("Filter() kept %d features, want %d", got.Len(), len(inside))
	}
	for k, j := range inside {
		if got.Features[k].Properties["id"] != c.Features[j].Properties["id"] {
			t.Errorf("feature %d = %s, want %s", k, got.Features[k].Properties["id"], c.Features[j].Properties["id"])
		}
	}
	if c.Len() != 6 {
		t.Error("Filter() must not modify its input")
	}
}

func TestFilterMatchesPredicate(t *testing.T) {
	// Every feature is either kept or dropped exactly per Intersects.
	c := &Collection{}
	for i := 0; i < 40; i++ {
		x := -99 + 0.1*float64(i)
		c.Features = append(c.Features, Feature{Geometry: orb.LineString{{x, 30.8}, {x + 0.05, 31.05}}})
	}
	got := Filter(c, belton)
	want := 0
	for _, f := range c.Features {
		if Intersects(f.Geometry, belton) {
			want++
		}
	}
	if got.Len() != want {
		t.Errorf("Filter() = %d features, want %d", got.Len(), want)
	}
}

func TestReprojectIdentity(t *testing.T) {
	c := &Collection{Name: "rivers", CRS: crs.WGS84, Features: []Feature{
		{Geometry: orb.LineString{{-97.8734669, 31.305827}, {-97.45, 31.2}}},
		{Geometry: square(-97.5, 31.2, 0.05)},
	}}

	got, err := ToWGS84(c)
	if err != nil {
		t.Fatal(err)
	}
	again, err := ToWGS84(got)
	if err != nil {
		t.Fatal(err)
	}
	for i := range c.Features {
		if !orb.Equal(c.Features[i].Geometry, again.Features[i].Geometry) {
			t.Errorf("feature %d changed: %v -> %v", i, c.Features[i].Geometry, again.Features[i].Geometry)
		}
	}
}

func TestReprojectFromAlbers(t *testing.T) {
	albers, _ := crs.FromEPSG(3083)
	x, y := albers.FromLonLat(-97.45, 31.2)

	c := &Collection{Name: "reservoirs", CRS: albers, Features: []Feature{{Geometry: orb.Point{x, y}}}}
	got, err := ToWGS84(c)
	if err != nil {
		t.Fatal(err)
	}
	p := got.Features[0].Geometry.(orb.Point)
	if math.Abs(p[0]+97.45) > 1e-7 || math.Abs(p[1]-31.2) > 1e-7 {
		t.Errorf("reprojected point = %v, want [-97.45 31.2]", p)
	}
	if got.CRS != crs.WGS84 {
		t.Error("reprojected collection should carry the target CRS")
	}
	// The source must be untouched.
	if c.Features[0].Geometry.(orb.Point)[0] != x {
		t.Error("Reproject() must not mutate its input")
	}
}

type badProjection struct{}

func (badProjection) Name() string                            { return "bad" }
func (badProjection) Forward(lon, lat float64) (x, y float64) { return lon, lat }
func (badProjection) Inverse(x, y float64) (lon, lat float64) { return math.NaN(), math.NaN() }

func TestReprojectFailure(t *testing.T) {
	c := &Collection{Name: "broken", CRS: &crs.CRS{Name: "bad", Projection: badProjection{}},
		Features: []Feature{{Geometry: orb.Point{1, 2}}}}
	_, err := ToWGS84(c)
	if !errors.Is(err, errors.ErrCodeReprojection) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeReprojection)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		g      orb.Geometry
		want   Kind
		single bool
	}{
		{orb.Point{}, KindPoint, true},
		{orb.LineString{}, KindLineString, true},
		{orb.Polygon{}, KindPolygon, true},
		{orb.MultiLineString{}, KindMultiLineString, false},
		{orb.MultiPolygon{}, KindMultiPolygon, false},
		{orb.Collection{}, KindUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			k := KindOf(tt.g)
			if k != tt.want {
				t.Errorf("KindOf() = %v, want %v", k, tt.want)
			}
			if k.SinglePart() != tt.single {
				t.Errorf("SinglePart() = %v, want %v", k.SinglePart(), tt.single)
			}
		})
	}
}

func TestBBoxPad(t *testing.T) {
	texas := NewBBox(-106.75, 25.75, -93.5, 36.75)
	got := texas.Pad(2)
	want := NewBBox(-108.75, 23.75, -91.5, 38.75)
	if got != want {
		t.Errorf("Pad(2) = %v, want %v", got, want)
	}
	if texas.Width() != 13.25 || texas.Height() != 11 {
		t.Errorf("Width/Height = %v/%v", texas.Width(), texas.Height())
	}
}

func TestCollectionBound(t *testing.T) {
	c := &Collection{Features: []Feature{
		{Geometry: nil},
		{Geometry: orb.Point{-97, 31}},
		{Geometry: orb.Point{-96, 32}},
	}}
	b := c.Bound()
	if b.Min != (orb.Point{-97, 31}) || b.Max != (orb.Point{-96, 32}) {
		t.Errorf("Bound() = %v", b)
	}
}
