package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateBBox checks that a lon/lat box is finite, ordered and inside the
// geographic domain.
func ValidateBBox(minLon, minLat, maxLon, maxLat float64) error {
	for _, v := range []float64{minLon, minLat, maxLon, maxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidScene, "bbox contains a non-finite value")
		}
	}
	if minLon >= maxLon {
		return New(ErrCodeInvalidScene, "bbox min_lon %g must be less than max_lon %g", minLon, maxLon)
	}
	if minLat >= maxLat {
		return New(ErrCodeInvalidScene, "bbox min_lat %g must be less than max_lat %g", minLat, maxLat)
	}
	if minLon < -180 || maxLon > 180 {
		return New(ErrCodeInvalidScene, "bbox longitude outside [-180, 180]")
	}
	if minLat < -90 || maxLat > 90 {
		return New(ErrCodeInvalidScene, "bbox latitude outside [-90, 90]")
	}
	return nil
}

// ValidateOutputPath validates the PNG output path.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Extension must be .png
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidScene, "output path cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidScene, "output path contains invalid characters")
		}
	}
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		return New(ErrCodeInvalidScene, "output path %q must end in .png", path)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateTileTemplate checks an XYZ tile URL template.
func ValidateTileTemplate(tmpl string) error {
	if err := ValidateURL(tmpl); err != nil {
		return err
	}
	for _, p := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(tmpl, p) {
			return New(ErrCodeInvalidInput, "tile template %q is missing %s", tmpl, p)
		}
	}
	return nil
}
