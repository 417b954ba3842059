package colour

import (
	"fmt"
	"image"
	"sort"

	"github.com/cenkalti/dominantcolor"
)

// DominantExtractor implements colour extraction using the dominantcolor
// library's weighted dominant-colour search. Unlike the k-means extractor
// it subsamples internally, trading exactness for speed.
type DominantExtractor struct{}

// NewDominantExtractor creates a new DominantExtractor.
func NewDominantExtractor() *DominantExtractor {
	return &DominantExtractor{}
}

// Extract extracts the count most dominant colours from an image, most
// frequent first.
func (e *DominantExtractor) Extract(img image.Image, count int) (*Palette, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if count < 1 {
		return nil, fmt.Errorf("colour count must be at least 1, got %d", count)
	}
	if count > 256 {
		return nil, fmt.Errorf("colour count too large: %d (maximum: 256)", count)
	}

	bounds := img.Bounds()
	totalPixels := bounds.Dx() * bounds.Dy()
	if totalPixels == 0 {
		return nil, fmt.Errorf("no pixels found in image")
	}

	candidates := dominantcolor.FindWeight(img, count)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no dominant colours found in image")
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Weight > candidates[b].Weight
	})

	colors := make([]RGB, 0, count)
	counts := make([]int, 0, count)
	for _, c := range candidates {
		colors = append(colors, RGB{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B})
		counts = append(counts, int(c.Weight*float64(totalPixels)))
	}

	// Fewer distinct colours than requested: pad with the weakest
	// candidate so the palette always has exactly count entries.
	for len(colors) < count {
		colors = append(colors, colors[len(colors)-1])
		counts = append(counts, 0)
	}

	return NewPaletteWithCounts(colors[:count], counts[:count]), nil
}
