package colour

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
)

// Swatch rendering geometry.
const (
	swatchTileSize   = 160
	swatchLabelInset = 12
)

// RenderSwatch draws the palette as a horizontal strip of colour tiles,
// each labelled with its hex code. Tile order matches palette order, so an
// extractor palette reads most-frequent first.
func RenderSwatch(p *Palette) (image.Image, error) {
	if p == nil || p.Len() == 0 {
		return nil, fmt.Errorf("cannot render an empty palette")
	}

	width := swatchTileSize * p.Len()
	height := swatchTileSize
	dc := gg.NewContext(width, height)

	for i, c := range p.Colors {
		x := float64(i * swatchTileSize)
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		dc.DrawRectangle(x, 0, swatchTileSize, float64(height))
		dc.Fill()

		// Label colour follows tile brightness for contrast.
		if c.HSV().V > 0.5 {
			dc.SetRGB(0, 0, 0)
		} else {
			dc.SetRGB(1, 1, 1)
		}
		dc.DrawStringAnchored(c.Hex(), x+swatchTileSize/2, float64(height)-swatchLabelInset, 0.5, 0.5)
	}

	return dc.Image(), nil
}
