package basemap

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/project"

	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo"
	"github.com/txwater/studymap/pkg/httputil"
)

const (
	tileSize = 256
	maxTiles = 256
	// Web Mercator is undefined at the poles; tiles stop here.
	maxMercatorLat = 85.05112878
)

// errNoTile marks a tile the source does not have. The mosaic leaves it
// transparent.
var errNoTile = stderrors.New("tile not available")

type tileFunc func(ctx context.Context, t maptile.Tile) ([]byte, error)

// XYZ fetches slippy-map tiles from a URL template.
type XYZ struct {
	Template    string
	MaxZoom     int
	Attribution string
	opts        Options
}

// Name returns the template host.
func (x *XYZ) Name() string {
	host := strings.TrimPrefix(strings.TrimPrefix(x.Template, "https://"), "http://")
	if i := strings.IndexByte(host, '/'); i > 0 {
		host = host[:i]
	}
	return sourceName(KindXYZ, host)
}

// TileURL expands the template for t.
func (x *XYZ) TileURL(t maptile.Tile) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(int(t.Z)),
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
	).Replace(x.Template)
}

// Fetch mosaics the covering tiles and warps them to box.
func (x *XYZ) Fetch(ctx context.Context, box geo.BBox, width, height int) (*Image, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	name := x.Name()
	fetch := func(ctx context.Context, t maptile.Tile) ([]byte, error) {
		key := x.opts.Keyer.TileKey(name, uint32(t.Z), t.X, t.Y)
		data, _, err := x.opts.Client.Cached(ctx, key, x.opts.Refresh, func(ctx context.Context) ([]byte, error) {
			body, _, err := x.opts.Client.Fetch(ctx, x.TileURL(t))
			return body, err
		})
		if stderrors.Is(err, httputil.ErrNotFound) {
			return nil, errNoTile
		}
		return data, err
	}

	img, err := mosaic(ctx, box, width, height, x.MaxZoom, fetch, x.opts)
	if err != nil {
		return nil, err
	}
	return &Image{Image: img, BBox: box, Attribution: x.Attribution}, nil
}

// ChooseZoom returns the lowest zoom whose tiles give at least width pixels
// across box, capped at maxZoom and at the zoom where the covering tile
// count stays within a sane limit.
func ChooseZoom(box geo.BBox, width, maxZoom int) maptile.Zoom {
	z := 0
	for z < maxZoom {
		span := float64(tileSize) * math.Exp2(float64(z)) * box.Width() / 360
		if span >= float64(width) {
			break
		}
		z++
	}
	for z > 0 && tileCount(box, maptile.Zoom(z)) > maxTiles {
		z--
	}
	return maptile.Zoom(z)
}

// tileRange returns the inclusive covering tile range at zoom z.
func tileRange(box geo.BBox, z maptile.Zoom) (minT, maxT maptile.Tile) {
	north := math.Min(box.MaxLat, maxMercatorLat)
	south := math.Max(box.MinLat, -maxMercatorLat)
	minT = maptile.At(orb.Point{box.MinLon, north}, z)
	maxT = maptile.At(orb.Point{box.MaxLon, south}, z)
	return minT, maxT
}

func tileCount(box geo.BBox, z maptile.Zoom) int {
	a, b := tileRange(box, z)
	return int(b.X-a.X+1) * int(b.Y-a.Y+1)
}

// mosaic fetches the tiles covering box at a suitable zoom and resamples
// them into a width x height plate-carrée image.
func mosaic(ctx context.Context, box geo.BBox, width, height, maxZoom int, fetch tileFunc, opts Options) (image.Image, error) {
	z := ChooseZoom(box, width, maxZoom)
	minT, maxT := tileRange(box, z)
	nx, ny := int(maxT.X-minT.X+1), int(maxT.Y-minT.Y+1)
	debugf(opts.Logger, "fetching tiles", "zoom", z, "tiles", nx*ny)

	tiles := image.NewNRGBA(image.Rect(0, 0, nx*tileSize, ny*tileSize))
	missing := 0
	for ty := minT.Y; ty <= maxT.Y; ty++ {
		for tx := minT.X; tx <= maxT.X; tx++ {
			t := maptile.New(tx, ty, z)
			data, err := fetch(ctx, t)
			if stderrors.Is(err, errNoTile) {
				missing++
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				if errors.GetCode(err) != "" {
					return nil, err
				}
				return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch tile %d/%d/%d", t.Z, t.X, t.Y)
			}
			img, err := imaging.Decode(bytes.NewReader(data))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeNetwork, err, "decode tile %d/%d/%d", t.Z, t.X, t.Y)
			}
			if b := img.Bounds(); b.Dx() != tileSize || b.Dy() != tileSize {
				img = imaging.Resize(img, tileSize, tileSize, imaging.Linear)
			}
			at := image.Pt(int(tx-minT.X)*tileSize, int(ty-minT.Y)*tileSize)
			draw.Draw(tiles, image.Rectangle{Min: at, Max: at.Add(image.Pt(tileSize, tileSize))}, img, img.Bounds().Min, draw.Src)
		}
	}
	if missing > 0 && opts.Logger != nil {
		opts.Logger.Warn("tiles missing from basemap", "count", missing, "zoom", z)
	}

	return warp(tiles, box, width, height, z, minT), nil
}

// warp resamples a Web Mercator mosaic whose top-left tile is origin into a
// plate-carrée image of box. Sampling is nearest-neighbour.
func warp(tiles *image.NRGBA, box geo.BBox, width, height int, z maptile.Zoom, origin maptile.Tile) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	world := float64(tileSize) * math.Exp2(float64(z))
	half := project.WGS84.ToMercator(orb.Point{180, 0})[0]
	ox, oy := float64(origin.X)*tileSize, float64(origin.Y)*tileSize
	tb := tiles.Bounds()

	// Columns depend only on longitude, rows only on latitude.
	cols := make([]int, width)
	for i := range cols {
		lon := box.MinLon + (float64(i)+0.5)/float64(width)*box.Width()
		m := project.WGS84.ToMercator(orb.Point{lon, 0})
		cols[i] = int(math.Floor((m[0]+half)/(2*half)*world - ox))
	}
	for j := 0; j < height; j++ {
		lat := box.MaxLat - (float64(j)+0.5)/float64(height)*box.Height()
		lat = math.Max(math.Min(lat, maxMercatorLat), -maxMercatorLat)
		m := project.WGS84.ToMercator(orb.Point{0, lat})
		row := int(math.Floor((half-m[1])/(2*half)*world - oy))
		if row < tb.Min.Y || row >= tb.Max.Y {
			continue
		}
		for i, col := range cols {
			if col < tb.Min.X || col >= tb.Max.X {
				continue
			}
			si := tiles.PixOffset(col, row)
			di := out.PixOffset(i, j)
			copy(out.Pix[di:di+4], tiles.Pix[si:si+4])
		}
	}
	return out
}

var _ Source = (*XYZ)(nil)
