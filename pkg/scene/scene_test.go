package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/txwater/studymap/pkg/basemap"
	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo"
	"github.com/txwater/studymap/pkg/render/styles"
)

func TestNames(t *testing.T) {
	got := Names()
	if len(got) != 2 || got[0] != "belton" || got[1] != "texas" {
		t.Errorf("Names() = %v, want [belton texas]", got)
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := Preset(name)
			if err != nil {
				t.Fatal(err)
			}
			s.SetDefaults()
			if err := s.Validate(); err != nil {
				t.Fatalf("Validate() = %v", err)
			}
		})
	}
}

func TestBeltonPreset(t *testing.T) {
	s, err := Preset("belton")
	if err != nil {
		t.Fatal(err)
	}
	s.SetDefaults()

	if s.BBox != geo.NewBBox(-97.95, 31.00, -97.25, 31.50) {
		t.Errorf("bbox = %v", s.BBox)
	}
	if s.ExtentBox() != s.BBox {
		t.Errorf("extent = %v, want bbox", s.ExtentBox())
	}
	if s.Output != "SWOT_study_domain.png" || s.Figure.DPI != 600 || s.Figure.Width != 15 {
		t.Errorf("output/figure = %s %+v", s.Output, s.Figure)
	}
	if s.Basemap.Kind != basemap.KindArcGIS || !strings.HasSuffix(s.Basemap.URL, "/USA_Topo_Maps/MapServer") {
		t.Errorf("basemap = %+v", s.Basemap)
	}

	want := []string{"shapefile/TWDB_SWP2012_Major_Reservoirs.shp", "shapefile/MajorRivers_dd83.shp"}
	got := s.RequiredPaths("")
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("RequiredPaths() = %v, want %v", got, want)
	}

	m, err := s.Map(nil)
	if err != nil {
		t.Fatal(err)
	}
	res := m.Overlays[0]
	if res.Fill.A != 153 || res.Z != 2 || res.FillZ != 1 {
		t.Errorf("reservoirs = %+v", res)
	}
	if len(m.Annotations) != 3 || m.Annotations[2].Marker != styles.MarkerTriangle {
		t.Errorf("annotations = %+v", m.Annotations)
	}
	if m.Annotations[1].TextColor != styles.MustColor("magenta") {
		t.Error("annotation text colour should default to the marker colour")
	}
	if !m.Grid.ParallelLabels.Left || m.Grid.ParallelLabels.Bottom || !m.Grid.MeridianLabels.Bottom {
		t.Errorf("grid labels = %+v / %+v", m.Grid.ParallelLabels, m.Grid.MeridianLabels)
	}
	if len(m.Context) != 5 || !m.Context[0].Explode || !m.Context[0].Cull {
		t.Errorf("context layers = %d", len(m.Context))
	}
}

func TestTexasPreset(t *testing.T) {
	s, err := Preset("texas")
	if err != nil {
		t.Fatal(err)
	}
	s.SetDefaults()

	if got, want := s.ExtentBox(), geo.NewBBox(-108.75, 23.75, -91.5, 38.75); got != want {
		t.Errorf("extent = %v, want %v", got, want)
	}
	if s.RequiredPaths("") != nil {
		t.Errorf("texas has only optional layers, got %v", s.RequiredPaths(""))
	}
	m, err := s.Map(nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.Style.Font(styles.RoleTitle).Size != 26 {
		t.Errorf("title size = %v, want 26", m.Style.Font(styles.RoleTitle).Size)
	}
	r := m.Rectangles[0]
	if r.BBox != s.BBox || r.Stroke.Width != 4 || r.Fill.A != 0 {
		t.Errorf("rectangle = %+v", r)
	}
	if g := m.Grid.Stroke; g.Color.A != 179 || len(g.Dashes) != 2 || g.Dashes[0] != 3.7 {
		t.Errorf("grid stroke = %+v", g)
	}
	if len(m.Context[3].Stroke.Dashes) != 2 {
		t.Errorf("states should be dashed: %+v", m.Context[3].Stroke)
	}
	if m.Context[0].Stroke.Visible() || m.Context[0].Fill != styles.MustColor("white") {
		t.Errorf("land = %+v", m.Context[0])
	}
}

func TestLayerPath(t *testing.T) {
	s := &Scene{Resolution: "i"}
	if got := s.LayerPath("", "naturalearth/ne_{res}_coastline.shp"); got != "naturalearth/ne_50m_coastline.shp" {
		t.Errorf("LayerPath() = %s", got)
	}
	s.Resolution = "h"
	if got := s.LayerPath("/data", "ne_{res}_land.shp"); got != filepath.Join("/data", "ne_10m_land.shp") {
		t.Errorf("LayerPath() = %s", got)
	}
	if got := s.LayerPath("/data", "/abs/rivers.shp"); got != "/abs/rivers.shp" {
		t.Errorf("absolute path changed: %s", got)
	}
}

func TestMapInputs(t *testing.T) {
	s, _ := Preset("belton")
	s.SetDefaults()
	rivers := &geo.Collection{Name: "rivers"}
	m, err := s.Map(&Inputs{
		Overlays: map[string]*geo.Collection{"rivers": rivers, "reservoirs": {}},
		Context:  map[string]*geo.Collection{"states": {}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Context) != 1 || m.Context[0].Name != "states" {
		t.Errorf("absent optional context layers should be left out, got %d", len(m.Context))
	}
	if len(m.Overlays) != 2 || m.Overlays[1].Features != rivers {
		t.Errorf("overlays = %+v", m.Overlays)
	}
}

func TestValidateErrors(t *testing.T) {
	base := func() *Scene {
		s, _ := Preset("belton")
		s.SetDefaults()
		return s
	}
	tests := []struct {
		name   string
		modify func(*Scene)
	}{
		{"bad bbox", func(s *Scene) { s.BBox.MinLon = -90 }},
		{"bad output", func(s *Scene) { s.Output = "map.jpg" }},
		{"bad resolution", func(s *Scene) { s.Resolution = "x" }},
		{"bad colour", func(s *Scene) { s.Layers[0].Color = "reddish" }},
		{"bad marker", func(s *Scene) { s.Annotations[0].Marker = "*" }},
		{"bad linestyle", func(s *Scene) { s.Grid.LineStyle = "~~" }},
		{"bad layer linestyle with dashes", func(s *Scene) {
			s.Layers[0].LineStyle = "zigzag"
			s.Layers[0].Dashes = []float64{2, 1}
		}},
		{"bad basemap", func(s *Scene) { s.Basemap.Kind = "wms" }},
		{"duplicate layer", func(s *Scene) { s.Layers[1].Name = s.Layers[0].Name }},
		{"layer without path", func(s *Scene) { s.Layers[0].Path = "" }},
		{"bad legend", func(s *Scene) { s.Legend = Legend{Enabled: true, Location: "middle"} }},
		{"negative pad", func(s *Scene) { s.Save.PadInches = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.modify(s)
			if err := s.Validate(); !errors.Is(err, errors.ErrCodeInvalidScene) {
				t.Errorf("Validate() = %v, want %s", err, errors.ErrCodeInvalidScene)
			}
		})
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode([]byte("name = \"x\"\n[figure]\ndpi = 300\nwidht = 4\n"), "x.toml")
	if !errors.Is(err, errors.ErrCodeInvalidScene) || !strings.Contains(err.Error(), "figure.widht") {
		t.Errorf("Decode() = %v, want unknown key error", err)
	}
}

func TestLoadAndResolve(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lake.toml")
	src := `
title = "Lake"
output = "lake.png"
[bbox]
min_lon = -98
min_lat = 31
max_lon = -97
max_lat = 32
[[layers]]
name = "lakes"
path = "lakes.geojson"
fill = "#87ceeb99"
`
	if err := os.WriteFile(file, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Resolve(file)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "lake" {
		t.Errorf("Name = %q, want lake from the file name", s.Name)
	}
	s.SetDefaults()
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	if s.Figure.Height != DefaultFigure || s.Basemap.Kind != basemap.KindNone {
		t.Errorf("defaults not applied: %+v %+v", s.Figure, s.Basemap)
	}

	if _, err := Resolve(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeInputNotFound) {
		t.Errorf("missing file err = %v", err)
	}
	if _, err := Resolve("houston"); !errors.Is(err, errors.ErrCodeInvalidScene) {
		t.Errorf("unknown preset err = %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	s, _ := Preset("texas")
	data, err := Encode(s)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Decode(data, "texas")
	if err != nil {
		t.Fatalf("Decode(Encode()) = %v\n%s", err, data)
	}
	if again.BBox != s.BBox || len(again.Context) != len(s.Context) || again.ExtentPad != 2 {
		t.Errorf("round trip lost fields: %+v", again)
	}
}
