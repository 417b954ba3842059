package colour

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Palette represents an ordered collection of colours extracted from an
// image, most frequent first. Counts holds the number of source pixels
// behind each colour and is parallel to Colors.
type Palette struct {
	Colors []RGB
	Counts []int
}

// NewPalette creates a new Palette with the given colours and no counts.
func NewPalette(colors []RGB) *Palette {
	return &Palette{Colors: colors}
}

// NewPaletteWithCounts creates a Palette carrying per-colour pixel counts.
func NewPaletteWithCounts(colors []RGB, counts []int) *Palette {
	return &Palette{Colors: colors, Counts: counts}
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	return len(p.Colors)
}

// TotalPixels returns the sum of all pixel counts.
func (p *Palette) TotalPixels() int {
	total := 0
	for _, c := range p.Counts {
		total += c
	}
	return total
}

// ToHex converts the palette colours to hex strings.
// Returns a slice of hex colour codes (e.g. ["#1a2b3c", "#4d5e6f"]).
func (p *Palette) ToHex() []string {
	hexColors := make([]string, len(p.Colors))
	for i, c := range p.Colors {
		hexColors[i] = c.Hex()
	}
	return hexColors
}

// SortedByBrightness returns the palette colours ordered from darkest to
// brightest by their HSV value channel. The sort is stable so colours with
// equal brightness keep their palette order. The receiver is not modified.
func (p *Palette) SortedByBrightness() []RGB {
	return SortByBrightness(slices.Clone(p.Colors))
}

// SortByBrightness orders colours in place from darkest to brightest by
// their HSV value channel and returns the slice.
func SortByBrightness(colors []RGB) []RGB {
	slices.SortStableFunc(colors, func(a, b RGB) int {
		va, vb := a.HSV().V, b.HSV().V
		if va < vb {
			return -1
		}
		if va > vb {
			return 1
		}
		return 0
	})
	return colors
}

// ColourJSON represents a single palette colour in JSON output format.
type ColourJSON struct {
	Hex    string `json:"hex"`
	RGB    RGB    `json:"rgb"`
	Pixels int    `json:"pixels,omitempty"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count   int          `json:"count"`
	Colours []ColourJSON `json:"colors"`
}

// ToJSON converts the palette to JSON format.
func (p *Palette) ToJSON() ([]byte, error) {
	colours := make([]ColourJSON, len(p.Colors))
	for i, c := range p.Colors {
		colours[i] = ColourJSON{
			Hex: c.Hex(),
			RGB: c,
		}
		if i < len(p.Counts) {
			colours[i].Pixels = p.Counts[i]
		}
	}

	return json.MarshalIndent(PaletteJSON{
		Count:   len(p.Colors),
		Colours: colours,
	}, "", "  ")
}

// String returns a human-readable representation of the palette as a
// rank/pixels/percentage table.
func (p *Palette) String() string {
	if len(p.Colors) == 0 {
		return "Empty palette"
	}

	total := p.TotalPixels()
	result := fmt.Sprintf("Palette with %d colours:\n", len(p.Colors))
	for i, c := range p.Colors {
		if i < len(p.Counts) && total > 0 {
			pct := float64(p.Counts[i]) / float64(total) * 100
			result += fmt.Sprintf("  %2d: %s  %8d px  %5.2f%%\n", i+1, c.Hex(), p.Counts[i], pct)
		} else {
			result += fmt.Sprintf("  %2d: %s (%s)\n", i+1, c.Hex(), c.String())
		}
	}
	return result
}

// Get returns the colour at the specified index.
// Returns an error if the index is out of bounds.
func (p *Palette) Get(index int) (RGB, error) {
	if index < 0 || index >= len(p.Colors) {
		return RGB{}, fmt.Errorf("index out of bounds: %d (palette has %d colours)", index, len(p.Colors))
	}
	return p.Colors[index], nil
}
