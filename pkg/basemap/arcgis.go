package basemap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/txwater/studymap/pkg/cache"
	"github.com/txwater/studymap/pkg/errors"
	"github.com/txwater/studymap/pkg/geo"
)

// ArcGIS fetches one image from a MapServer export endpoint. The server
// renders directly in EPSG:4326, so no client-side warp is needed.
type ArcGIS struct {
	URL         string
	DPI         int
	Attribution string
	// Verbose logs every export URL at info level.
	Verbose bool
	opts    Options
}

// Name returns the service name taken from the URL.
func (a *ArcGIS) Name() string {
	return sourceName(KindArcGIS, serviceName(a.URL))
}

// ExportURL returns the export request for box at width x height.
func (a *ArcGIS) ExportURL(box geo.BBox, width, height int) string {
	q := url.Values{}
	q.Set("bbox", fmt.Sprintf("%s,%s,%s,%s", ftoa(box.MinLon), ftoa(box.MinLat), ftoa(box.MaxLon), ftoa(box.MaxLat)))
	q.Set("bboxSR", "4326")
	q.Set("imageSR", "4326")
	q.Set("size", fmt.Sprintf("%d,%d", width, height))
	q.Set("dpi", strconv.Itoa(a.DPI))
	q.Set("format", "png32")
	q.Set("transparent", "false")
	q.Set("f", "image")
	return strings.TrimSuffix(a.URL, "/") + "/export?" + q.Encode()
}

// Fetch requests the export image, from cache when available.
func (a *ArcGIS) Fetch(ctx context.Context, box geo.BBox, width, height int) (*Image, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	u := a.ExportURL(box, width, height)
	if a.Verbose && a.opts.Logger != nil {
		a.opts.Logger.Info("requesting basemap", "url", u)
	} else {
		debugf(a.opts.Logger, "requesting basemap", "url", u)
	}

	key := a.opts.Keyer.ExportKey(cache.ExportKeyOpts{
		Service: a.URL,
		BBox:    [4]float64{box.MinLon, box.MinLat, box.MaxLon, box.MaxLat},
		Width:   width,
		Height:  height,
		DPI:     a.DPI,
	})
	data, hit, err := a.opts.Client.Cached(ctx, key, a.opts.Refresh, func(ctx context.Context) ([]byte, error) {
		body, contentType, err := a.opts.Client.Fetch(ctx, u)
		if err != nil {
			return nil, err
		}
		if err := exportError(body, contentType); err != nil {
			return nil, err
		}
		return body, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch ArcGIS export %s", serviceName(a.URL))
	}
	debugf(a.opts.Logger, "basemap image", "bytes", len(data), "cached", hit)

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "decode ArcGIS export image")
	}
	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		img = imaging.Resize(img, width, height, imaging.Linear)
	}
	return &Image{Image: img, BBox: box, Attribution: a.Attribution}, nil
}

type arcgisError struct {
	Error *struct {
		Code    int      `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

// exportError detects the JSON error body ArcGIS returns with status 200.
func exportError(body []byte, contentType string) error {
	if !strings.Contains(contentType, "json") && !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		return nil
	}
	var e arcgisError
	if err := json.Unmarshal(body, &e); err != nil || e.Error == nil {
		return fmt.Errorf("export returned %s instead of an image", contentType)
	}
	msg := e.Error.Message
	if len(e.Error.Details) > 0 {
		msg += ": " + strings.Join(e.Error.Details, "; ")
	}
	return fmt.Errorf("ArcGIS error %d: %s", e.Error.Code, msg)
}

// serviceName extracts "USA_Topo_Maps" from .../services/USA_Topo_Maps/MapServer.
func serviceName(u string) string {
	parts := strings.Split(strings.TrimSuffix(u, "/"), "/")
	for i := len(parts) - 1; i > 0; i-- {
		if strings.EqualFold(parts[i], "MapServer") {
			return parts[i-1]
		}
	}
	return parts[len(parts)-1]
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

var _ Source = (*ArcGIS)(nil)
