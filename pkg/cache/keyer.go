package cache

import "fmt"

// Keyer derives cache keys for the requests studymap makes.
type Keyer interface {
	// HTTPKey keys a raw HTTP response body.
	HTTPKey(namespace, key string) string
	// TileKey keys one slippy-map tile from a named source.
	TileKey(source string, z, x, y uint32) string
	// ExportKey keys one rendered ArcGIS export image.
	ExportKey(opts ExportKeyOpts) string
}

// ExportKeyOpts identifies an ArcGIS MapServer export request.
type ExportKeyOpts struct {
	Service string     `json:"service"`
	BBox    [4]float64 `json:"bbox"`
	Width   int        `json:"width"`
	Height  int        `json:"height"`
	DPI     int        `json:"dpi"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns http:<namespace>:<key>.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// TileKey returns tile:<source>:<z>/<x>/<y>.
func (DefaultKeyer) TileKey(source string, z, x, y uint32) string {
	return fmt.Sprintf("tile:%s:%d/%d/%d", source, z, x, y)
}

// ExportKey hashes every request parameter.
func (DefaultKeyer) ExportKey(opts ExportKeyOpts) string {
	return hashKey("export", opts)
}

var _ Keyer = DefaultKeyer{}
