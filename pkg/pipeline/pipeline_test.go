package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonas-p/go-shp"

	"github.com/txwater/studymap/pkg/errors"
	sio "github.com/txwater/studymap/pkg/io"
	"github.com/txwater/studymap/pkg/observability"
	"github.com/txwater/studymap/pkg/scene"
)

func cwSquare(x, y, size float64) []shp.Point {
	return []shp.Point{{X: x, Y: y}, {X: x, Y: y + size}, {X: x + size, Y: y + size}, {X: x + size, Y: y}, {X: x, Y: y}}
}

func writeShapefile(t *testing.T, path string, typ shp.ShapeType, shapes ...shp.Shape) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	w, err := shp.Create(path, typ)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.SetFields([]shp.Field{shp.StringField("NAME", 20)}); err != nil {
		t.Fatal(err)
	}
	for i, s := range shapes {
		n := w.Write(s)
		if err := w.WriteAttribute(int(n), 0, "f"+strconv.Itoa(i)); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()
	// go-shp names the attribute file "<base>dbf", without the dot.
	base := strings.TrimSuffix(path, ".shp")
	if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
		t.Fatal(err)
	}
}

func polygon(pts []shp.Point) shp.Shape {
	p := shp.Polygon(*shp.NewPolyLine([][]shp.Point{pts}))
	return &p
}

func line(pts ...shp.Point) shp.Shape {
	return shp.NewPolyLine([][]shp.Point{pts})
}

// writeData creates the two belton datasets under dir. Reservoirs: two
// inside the box, one far outside. Rivers: one inside, one outside.
func writeData(t *testing.T, dir string) {
	writeShapefile(t, filepath.Join(dir, "shapefile", "TWDB_SWP2012_Major_Reservoirs.shp"), shp.POLYGON,
		polygon(cwSquare(-97.55, 31.15, 0.1)),
		polygon(cwSquare(-97.8, 31.3, 0.05)),
		polygon(cwSquare(-95, 29, 0.1)),
	)
	writeShapefile(t, filepath.Join(dir, "shapefile", "MajorRivers_dd83.shp"), shp.POLYLINE,
		line(shp.Point{X: -97.9, Y: 31.4}, shp.Point{X: -97.5, Y: 31.2}),
		line(shp.Point{X: -100, Y: 33}, shp.Point{X: -99, Y: 33}),
	)
}

const smallScene = `
name = "small"
title = "Small"
output = "out/map.png"

[bbox]
min_lon = -97.95
min_lat = 31.00
max_lon = -97.25
max_lat = 31.50

[figure]
width = 3
height = 3
dpi = 50

[style]
font_size = 10

[grid]
enabled = true
parallel_labels = [1, 0, 0, 0]
meridian_labels = [0, 0, 0, 1]

[[context]]
name = "coastlines"
path = "naturalearth/ne_{res}_coastline.shp"
optional = true

[[layers]]
name = "reservoirs"
path = "shapefile/TWDB_SWP2012_Major_Reservoirs.shp"
filter = true
color = "blue"
fill = "skyblue"
alpha = 0.6
z = 2
fill_z = 1

[[layers]]
name = "rivers"
path = "shapefile/MajorRivers_dd83.shp"
color = "darkblue"
width = 2
z = 3

[[annotations]]
lon = -97.7583
lat = 31.4347
text = "GAST2"
marker = "o"
color = "magenta"
`

func loadScene(t *testing.T, src string) *scene.Scene {
	t.Helper()
	s, err := scene.Decode([]byte(src), "test")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func outputFor(dir string) string { return filepath.Join(dir, "out", "map.png") }

func TestExecuteWritesOnePNG(t *testing.T) {
	dir := t.TempDir()
	writeData(t, dir)

	result, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Scene:   loadScene(t, smallScene),
		DataDir: dir,
		Output:  outputFor(dir),
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "map.png" {
		t.Fatalf("output dir = %v, want exactly map.png", entries)
	}

	f, err := os.Open(outputFor(dir))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if dpi, err := sio.ReadDPI(f); err != nil || dpi != 50 {
		t.Errorf("ReadDPI() = %d, %v; want 50", dpi, err)
	}

	if want := "Plot saved successfully to " + outputFor(dir) + " with DPI=50."; result.Message != want {
		t.Errorf("Message = %q, want %q", result.Message, want)
	}
	if result.Output != outputFor(dir) || result.Empty {
		t.Errorf("Output = %q, Empty = %v", result.Output, result.Empty)
	}

	counts := map[string]LayerCount{}
	for _, l := range result.Layers {
		counts[l.Name] = l
	}
	if c := counts["reservoirs"]; c.Total != 3 || c.Kept != 2 || !c.Filtered {
		t.Errorf("reservoirs count = %+v, want 3 total, 2 kept", c)
	}
	if c := counts["rivers"]; c.Total != 2 || c.Kept != 2 || c.Filtered {
		t.Errorf("rivers count = %+v, want unfiltered 2", c)
	}
	if c := counts["coastlines"]; !c.Absent {
		t.Errorf("coastlines should be reported absent: %+v", c)
	}

	// Drawn features equal filtered counts.
	res, riv := result.Render.Overlays[0], result.Render.Overlays[1]
	if res.Polygons != 2 || res.Passes != 4 || riv.Lines != 2 || riv.Passes != 2 {
		t.Errorf("render stats = %+v / %+v", res, riv)
	}
	if result.RunID == "" || len(result.Timings) != len(Stages) {
		t.Errorf("RunID = %q, timings = %d", result.RunID, len(result.Timings))
	}
}

func TestExecuteMissingInputs(t *testing.T) {
	dir := t.TempDir()
	s, err := scene.Preset("belton")
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Scene:   s,
		DataDir: dir,
		Output:  outputFor(dir),
	})
	if !errors.Is(err, errors.ErrCodeInputNotFound) {
		t.Fatalf("err = %v, want %s", err, errors.ErrCodeInputNotFound)
	}
	paths := errors.MissingPaths(err)
	want := []string{
		filepath.Join(dir, "shapefile", "TWDB_SWP2012_Major_Reservoirs.shp"),
		filepath.Join(dir, "shapefile", "MajorRivers_dd83.shp"),
	}
	if !slices.Equal(paths, want) {
		t.Errorf("MissingPaths() = %v, want %v", paths, want)
	}
	for _, p := range want {
		if !strings.Contains(err.Error(), p) {
			t.Errorf("error %q does not name %s", err, p)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !os.IsNotExist(err) {
		t.Error("no output should be written when inputs are missing")
	}
}

func TestExecuteOneInputMissing(t *testing.T) {
	dir := t.TempDir()
	writeData(t, dir)
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		os.Remove(filepath.Join(dir, "shapefile", "MajorRivers_dd83"+ext))
	}

	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Scene: loadScene(t, smallScene), DataDir: dir, Output: outputFor(dir),
	})
	if len(errors.MissingPaths(err)) != 2 {
		t.Errorf("MissingPaths() = %v, want both expected paths", errors.MissingPaths(err))
	}
}

func TestExecuteNoFeaturesInBox(t *testing.T) {
	dir := t.TempDir()
	writeShapefile(t, filepath.Join(dir, "shapefile", "TWDB_SWP2012_Major_Reservoirs.shp"), shp.POLYGON,
		polygon(cwSquare(-95, 29, 0.1)))
	writeShapefile(t, filepath.Join(dir, "shapefile", "MajorRivers_dd83.shp"), shp.POLYLINE,
		line(shp.Point{X: -100, Y: 33}, shp.Point{X: -99, Y: 33}))

	src := strings.Replace(smallScene, "color = \"darkblue\"", "color = \"darkblue\"\nfilter = true", 1)
	result, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Scene: loadScene(t, src), DataDir: dir, Output: outputFor(dir),
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !result.Empty || result.Message != scene.DefaultEmptyMessage {
		t.Errorf("Empty = %v, Message = %q", result.Empty, result.Message)
	}
	if result.Output != "" {
		t.Errorf("Output = %q, want nothing written", result.Output)
	}
	if _, err := os.Stat(outputFor(dir)); !os.IsNotExist(err) {
		t.Error("no PNG should be written when the box holds no features")
	}
}

func TestExecuteDryRun(t *testing.T) {
	dir := t.TempDir()
	writeData(t, dir)

	result, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Scene: loadScene(t, smallScene), DataDir: dir, Output: outputFor(dir), DryRun: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Render.Ops == 0 || result.Render.Texts == 0 {
		t.Errorf("dry run recorded nothing: %+v", result.Render)
	}
	if _, err := os.Stat(outputFor(dir)); !os.IsNotExist(err) {
		t.Error("dry run must not write the PNG")
	}
}

func TestExecuteCancelled(t *testing.T) {
	dir := t.TempDir()
	writeData(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, nil).Execute(ctx, Options{
		Scene: loadScene(t, smallScene), DataDir: dir, Output: outputFor(dir),
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestOptionsValidation(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidScene) {
		t.Errorf("nil scene err = %v", err)
	}

	o = Options{Scene: loadScene(t, smallScene), Output: "map.tiff"}
	if err := o.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidScene) {
		t.Errorf("bad output err = %v", err)
	}

	o = Options{Scene: loadScene(t, smallScene)}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Logger == nil || o.Scene.Figure.DPI != 50 {
		t.Errorf("defaults not applied: %+v", o)
	}
}

type stageRecorder struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	started []string
	kept    map[string]int
	output  string
}

func (h *stageRecorder) OnLayerFiltered(_ context.Context, _, layer string, _, kept int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.kept[layer] = kept
}

func (h *stageRecorder) OnStageStart(_ context.Context, _, stage string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, stage)
}

func (h *stageRecorder) OnRenderComplete(_ context.Context, _, _, output string, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.output = output
}

func TestExecuteHooks(t *testing.T) {
	hooks := &stageRecorder{kept: map[string]int{}}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	dir := t.TempDir()
	writeData(t, dir)
	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Scene: loadScene(t, smallScene), DataDir: dir, Output: outputFor(dir),
	}); err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(hooks.started, Stages) {
		t.Errorf("stages = %v, want %v", hooks.started, Stages)
	}
	if hooks.kept["reservoirs"] != 2 || hooks.kept["rivers"] != 2 {
		t.Errorf("layer events = %v", hooks.kept)
	}
	if hooks.output != outputFor(dir) {
		t.Errorf("OnRenderComplete output = %q", hooks.output)
	}
}

func TestExecuteArcGISBasemap(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if !strings.HasSuffix(r.URL.Path, "/MapServer/export") {
			http.NotFound(w, r)
			return
		}
		size := strings.Split(r.URL.Query().Get("size"), ",")
		width, _ := strconv.Atoi(size[0])
		height, _ := strconv.Atoi(size[1])
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		for i := range img.Pix {
			img.Pix[i] = 200
			if i%4 == 3 {
				img.Pix[i] = 255
			}
		}
		var buf bytes.Buffer
		png.Encode(&buf, img)
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeData(t, dir)
	src := smallScene + "\n[basemap]\nkind = \"arcgis\"\nurl = \"" + srv.URL + "/MapServer\"\nxpixels = 70\n"

	result, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Scene: loadScene(t, src), DataDir: dir, Output: outputFor(dir),
	})
	if err != nil {
		t.Fatal(err)
	}
	if requests != 1 || !strings.HasPrefix(result.Basemap, "arcgis:") {
		t.Errorf("requests = %d, basemap = %q", requests, result.Basemap)
	}

	f, err := os.Open(outputFor(dir))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	// The imagery grey must show through inside the plot.
	grey := color.NRGBA{200, 200, 200, 255}
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA) == grey {
				n++
			}
		}
	}
	if n < 100 {
		t.Errorf("basemap imagery covers %d pixels, want at least 100", n)
	}
}
