// Package fonts provides the embedded typefaces used for map text.
//
// The Go fonts ship inside golang.org/x/image, so rendering needs no
// system font lookup. Fonts are parsed once on first use.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Family is the name reported for the embedded typeface.
const Family = "Go"

var (
	regular, bold *truetype.Font
	parseOnce     sync.Once
	parseErr      error

	facesMu sync.Mutex
	faces   = map[faceKey]font.Face{}
)

type faceKey struct {
	bold        bool
	points, dpi float64
}

func parse() error {
	parseOnce.Do(func() {
		if regular, parseErr = truetype.Parse(goregular.TTF); parseErr != nil {
			return
		}
		bold, parseErr = truetype.Parse(gobold.TTF)
	})
	return parseErr
}

// Regular returns the regular weight.
func Regular() (*truetype.Font, error) {
	if err := parse(); err != nil {
		return nil, err
	}
	return regular, nil
}

// Bold returns the bold weight.
func Bold() (*truetype.Font, error) {
	if err := parse(); err != nil {
		return nil, err
	}
	return bold, nil
}

// Face returns a face at the given size in points for a canvas of dpi dots
// per inch, so a 24 pt label is 200 px tall at 600 DPI. Faces are shared;
// callers must not Close them.
func Face(isBold bool, points, dpi float64) (font.Face, error) {
	if err := parse(); err != nil {
		return nil, err
	}
	key := faceKey{bold: isBold, points: points, dpi: dpi}

	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faces[key]; ok {
		return f, nil
	}
	f := regular
	if isBold {
		f = bold
	}
	face := truetype.NewFace(f, &truetype.Options{Size: points, DPI: dpi, Hinting: font.HintingFull})
	faces[key] = face
	return face, nil
}

// PointsToPixels converts a size in points to pixels at dpi.
func PointsToPixels(points, dpi float64) float64 {
	return points * dpi / 72
}
