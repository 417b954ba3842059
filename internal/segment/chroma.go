package segment

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/chromaknit/chromaknit/internal/colour"
)

// DefaultChromaThreshold is the RGB distance below which a pixel is
// considered part of the background.
const DefaultChromaThreshold = 40.0

// Chroma is a self-contained segmenter for photos taken against a roughly
// uniform backdrop. It estimates the background colour from the image
// border, then grades each pixel by its RGB distance from that estimate:
// pixels within the threshold get mask value zero, pixels beyond it ramp
// up to 255. The result is a soft mask, not a binary one.
type Chroma struct {
	threshold float64
}

// ChromaOptions configures a Chroma segmenter.
type ChromaOptions struct {
	// Threshold is the RGB distance below which a pixel counts as
	// background. If zero, DefaultChromaThreshold is used.
	Threshold float64
}

// NewChroma creates a border-sampling chroma-distance segmenter.
func NewChroma(opts ChromaOptions) *Chroma {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultChromaThreshold
	}
	return &Chroma{threshold: threshold}
}

// Segment estimates the background from the one-pixel image border and
// returns a soft foreground mask.
func (c *Chroma) Segment(_ context.Context, img image.Image) (*image.Gray, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: image cannot be nil", ErrSegmentation)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrSegmentation)
	}

	bg := borderAverage(img)
	mask := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgb := colour.ToRGB(img.At(x, y))
			dist := rgbDistance(rgb, bg)
			mask.SetGray(x, y, color.Gray{Y: c.grade(dist)})
		}
	}

	return mask, nil
}

// grade maps an RGB distance to a mask value: zero at or below the
// threshold, ramping linearly to 255 at twice the threshold.
func (c *Chroma) grade(dist float64) uint8 {
	if dist <= c.threshold {
		return 0
	}
	ramp := (dist - c.threshold) / c.threshold
	if ramp >= 1 {
		return 255
	}
	return uint8(ramp * 255)
}

// borderAverage averages the colours of the one-pixel frame around the
// image as the background estimate.
func borderAverage(img image.Image) colour.RGB {
	bounds := img.Bounds()
	var rSum, gSum, bSum, n int

	sample := func(x, y int) {
		rgb := colour.ToRGB(img.At(x, y))
		rSum += int(rgb.R)
		gSum += int(rgb.G)
		bSum += int(rgb.B)
		n++
	}

	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		sample(x, bounds.Min.Y)
		if bounds.Dy() > 1 {
			sample(x, bounds.Max.Y-1)
		}
	}
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		sample(bounds.Min.X, y)
		if bounds.Dx() > 1 {
			sample(bounds.Max.X-1, y)
		}
	}

	if n == 0 {
		return colour.RGB{}
	}
	return colour.RGB{
		R: uint8(rSum / n),
		G: uint8(gSum / n),
		B: uint8(bSum / n),
	}
}

// rgbDistance calculates the Euclidean distance between two colours in
// RGB space.
func rgbDistance(a, b colour.RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
