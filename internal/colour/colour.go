// Package colour provides colour-space conversions and palette extraction.
package colour

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB represents a colour in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSV represents a colour in HSV space.
// H is the hue angle in [0, 360), S and V are in [0, 1].
type HSV struct {
	H float64
	S float64
	V float64
}

// ParseHex parses a canonical hex colour code into RGB.
// The input must be exactly 7 characters: '#' followed by six hex digits.
// Parsing is case-insensitive.
func ParseHex(s string) (RGB, error) {
	if len(s) != 7 || s[0] != '#' {
		return RGB{}, fmt.Errorf("invalid hex colour %q: want #rrggbb", s)
	}
	var rgb RGB
	for i, dst := range []*uint8{&rgb.R, &rgb.G, &rgb.B} {
		hi, ok1 := hexDigit(s[1+i*2])
		lo, ok2 := hexDigit(s[2+i*2])
		if !ok1 || !ok2 {
			return RGB{}, fmt.Errorf("invalid hex colour %q: want #rrggbb", s)
		}
		*dst = hi<<4 | lo
	}
	return rgb, nil
}

// hexDigit decodes a single hex character.
func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// ParseHexList parses a list of hex colour codes, failing on the first
// invalid entry.
func ParseHexList(hexes []string) ([]RGB, error) {
	out := make([]RGB, 0, len(hexes))
	for _, h := range hexes {
		rgb, err := ParseHex(h)
		if err != nil {
			return nil, err
		}
		out = append(out, rgb)
	}
	return out, nil
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a lowercase hex string (e.g. "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// HSV converts the colour to HSV space.
func (rgb RGB) HSV() HSV {
	h, s, v := colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}.Hsv()
	return HSV{H: h, S: s, V: v}
}

// RGB converts the colour back from HSV space.
func (hsv HSV) RGB() RGB {
	r, g, b := colorful.Hsv(hsv.H, hsv.S, hsv.V).Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// ToRGB converts a color.Color to RGB.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255].
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// Color converts an RGB value to a color.Color with full opacity.
func (rgb RGB) Color() color.Color {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}
