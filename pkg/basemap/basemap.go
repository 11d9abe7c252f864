// Package basemap fetches raster imagery to draw beneath a map.
//
// Every [Source] returns an image in the plate-carrée frame of the requested
// box: pixel columns are linear in longitude and rows linear in latitude,
// so the renderer can stretch it straight onto the map extent.
//
// Sources:
//   - [ArcGIS]: an ArcGIS REST MapServer export, which reprojects server-side
//   - [XYZ]: slippy-map tiles, mosaicked and warped from Web Mercator
//   - [MBTiles]: the same tiles read from a local SQLite archive
//   - [None]: no imagery
package basemap

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/txwater/studymap/pkg/cache"
	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo"
	"github.com/txwater/studymap/pkg/httputil"
)

// Source kinds accepted in scene files.
const (
	KindArcGIS  = "arcgis"
	KindXYZ     = "xyz"
	KindMBTiles = "mbtiles"
	KindNone    = "none"
)

// Image is fetched imagery covering BBox.
type Image struct {
	Image       image.Image
	BBox        geo.BBox
	Attribution string
}

// Source produces basemap imagery for a box at a pixel size.
type Source interface {
	Name() string
	Fetch(ctx context.Context, box geo.BBox, width, height int) (*Image, error)
}

// Config selects and parameterises a source. It is embedded in scene files.
type Config struct {
	Kind string `toml:"kind"`

	// ArcGIS: MapServer root URL, or Service under ArcGISServer.
	URL     string `toml:"url,omitempty"`
	Service string `toml:"service,omitempty"`

	// XYZ tile template with {z}, {x} and {y}.
	Template string `toml:"template,omitempty"`

	// MBTiles archive path.
	Path string `toml:"path,omitempty"`

	// XPixels is the requested image width; the height follows the box
	// aspect ratio.
	XPixels int `toml:"xpixels,omitempty"`
	DPI     int `toml:"dpi,omitempty"`

	MaxZoom     int     `toml:"max_zoom,omitempty"`
	RateLimit   float64 `toml:"rate_limit,omitempty"`
	Attribution string  `toml:"attribution,omitempty"`
	Verbose     bool    `toml:"verbose,omitempty"`

	// CacheScope keeps this source's cached imagery apart from other
	// scenes that share a source name.
	CacheScope string `toml:"cache_scope,omitempty"`
}

// ArcGISServer is the public ArcGIS Online services root.
const ArcGISServer = "https://server.arcgisonline.com/ArcGIS/rest/services"

// Defaults.
const (
	DefaultXPixels   = 2000
	DefaultDPI       = 96
	DefaultMaxZoom   = 16
	DefaultRateLimit = 2.0
)

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Kind == "" {
		c.Kind = KindNone
	}
	c.Kind = strings.ToLower(c.Kind)
	if c.Kind == KindArcGIS && c.URL == "" && c.Service != "" {
		c.URL = ArcGISServer + "/" + c.Service + "/MapServer"
	}
	if c.XPixels <= 0 {
		c.XPixels = DefaultXPixels
	}
	if c.DPI <= 0 {
		c.DPI = DefaultDPI
	}
	if c.MaxZoom <= 0 {
		c.MaxZoom = DefaultMaxZoom
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
}

// Validate checks the fields the kind needs.
func (c *Config) Validate() error {
	switch c.Kind {
	case KindNone, "":
		return nil
	case KindArcGIS:
		if err := errors.ValidateURL(c.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "basemap url")
		}
	case KindXYZ:
		if err := errors.ValidateTileTemplate(c.Template); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "basemap template")
		}
	case KindMBTiles:
		if c.Path == "" {
			return errors.New(errors.ErrCodeInvalidScene, "mbtiles basemap needs a path")
		}
	default:
		return errors.New(errors.ErrCodeInvalidScene, "unknown basemap kind %q (want arcgis, xyz, mbtiles or none)", c.Kind)
	}
	if c.MaxZoom > 22 {
		return errors.New(errors.ErrCodeInvalidScene, "max_zoom %d exceeds 22", c.MaxZoom)
	}
	return nil
}

// Size returns the pixel size to request for box: XPixels wide and tall in
// proportion to the box.
func (c *Config) Size(box geo.BBox) (width, height int) {
	width = c.XPixels
	height = int(math.Round(float64(width) * box.Height() / box.Width()))
	return width, max(height, 1)
}

// Options carry the per-run settings shared by network sources.
type Options struct {
	Client  *httputil.Client
	Keyer   cache.Keyer
	Refresh bool
	Logger  *log.Logger
}

// New builds the source cfg describes. cfg should already have defaults
// applied.
func New(cfg Config, opts Options) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Client == nil {
		opts.Client = httputil.NewClient(nil, 0, nil)
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if cfg.CacheScope != "" {
		opts.Keyer = cache.NewScopedKeyer(opts.Keyer, cfg.CacheScope+":")
	}

	switch cfg.Kind {
	case KindArcGIS:
		return &ArcGIS{URL: cfg.URL, DPI: cfg.DPI, Attribution: cfg.Attribution, Verbose: cfg.Verbose, opts: opts}, nil
	case KindXYZ:
		opts.Client.SetRateLimit(cfg.RateLimit, 1)
		return &XYZ{Template: cfg.Template, MaxZoom: cfg.MaxZoom, Attribution: cfg.Attribution, opts: opts}, nil
	case KindMBTiles:
		return OpenMBTiles(cfg.Path, cfg.MaxZoom)
	}
	return None{}, nil
}

// None draws no imagery.
type None struct{}

// Name returns "none".
func (None) Name() string { return KindNone }

// Fetch returns nil.
func (None) Fetch(context.Context, geo.BBox, int, int) (*Image, error) { return nil, nil }

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "basemap size %dx%d must be positive", width, height)
	}
	return nil
}

func debugf(l *log.Logger, msg string, kv ...any) {
	if l != nil {
		l.Debug(msg, kv...)
	}
}

func sourceName(prefix, s string) string { return fmt.Sprintf("%s:%s", prefix, s) }
