package styles

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// named holds the matplotlib/CSS colour names used by scene files.
var named = map[string]color.NRGBA{
	"black":     {0, 0, 0, 255},
	"white":     {255, 255, 255, 255},
	"red":       {255, 0, 0, 255},
	"green":     {0, 128, 0, 255},
	"blue":      {0, 0, 255, 255},
	"darkblue":  {0, 0, 139, 255},
	"navy":      {0, 0, 128, 255},
	"skyblue":   {135, 206, 235, 255},
	"lightblue": {173, 216, 230, 255},
	"steelblue": {70, 130, 180, 255},
	"magenta":   {255, 0, 255, 255},
	"cyan":      {0, 255, 255, 255},
	"yellow":    {255, 255, 0, 255},
	"orange":    {255, 165, 0, 255},
	"purple":    {128, 0, 128, 255},
	"brown":     {165, 42, 42, 255},
	"gray":      {128, 128, 128, 255},
	"grey":      {128, 128, 128, 255},
	"lightgray": {211, 211, 211, 255},
	"darkgray":  {169, 169, 169, 255},
	"tan":       {210, 180, 140, 255},
	"beige":     {245, 245, 220, 255},
}

// matplotlib single-letter shorthands.
var short = map[string]string{
	"k": "black", "w": "white", "r": "red", "g": "green", "b": "blue",
	"m": "magenta", "c": "cyan", "y": "yellow",
}

// ParseColor reads a colour name, a single-letter shorthand, "#rgb",
// "#rrggbb" or "#rrggbbaa". "none" and the empty string are transparent.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" || s == "transparent" {
		return color.NRGBA{}, nil
	}
	if long, ok := short[s]; ok {
		s = long
	}
	if c, ok := named[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("unknown colour %q", s)
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// MustColor is ParseColor for literals known to be valid.
func MustColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// WithAlpha scales c's alpha by a in [0, 1]. Values outside the range are
// clamped.
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	a = max(0, min(1, a))
	c.A = uint8(float64(c.A)*a + 0.5)
	return c
}
