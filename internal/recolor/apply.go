package recolor

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/chromaknit/chromaknit/internal/colour"
)

// Apply recolours the foreground of a segmented garment image with the
// target palette. Targets are sorted by ascending brightness, so the
// darkest target lands on the garment's shadow regions and the brightest
// on its highlights. For each foreground pixel only the hue and
// saturation channels are replaced; the value channel is untouched, which
// preserves shading. Background pixels are copied through unchanged.
//
// The input image is never mutated; the result is a new buffer.
func Apply(s Segmented, targets []colour.RGB) (Recolored, error) {
	if s.Image == nil || s.Mask == nil {
		return Recolored{}, fmt.Errorf("%w: need image and mask first", ErrPrecondition)
	}
	if s.Mask.Bounds() != s.Image.Bounds() {
		return Recolored{}, fmt.Errorf("%w: mask bounds %v do not match image bounds %v",
			ErrPrecondition, s.Mask.Bounds(), s.Image.Bounds())
	}
	if len(targets) == 0 {
		return Recolored{}, ErrEmptyInput
	}

	targetHSV := sortedTargetHSV(targets)

	bounds := s.Image.Bounds()
	out := image.NewNRGBA(bounds)
	draw.Draw(out, bounds, s.Image, bounds.Min, draw.Src)

	// First pass: collect each foreground pixel's buffer offset and
	// brightness (HSV value channel).
	var offsets []int
	var values []float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if s.Mask.GrayAt(x, y).Y == 0 {
				continue
			}
			off := out.PixOffset(x, y)
			_, _, v := colorful.Color{
				R: float64(out.Pix[off]) / 255.0,
				G: float64(out.Pix[off+1]) / 255.0,
				B: float64(out.Pix[off+2]) / 255.0,
			}.Hsv()
			offsets = append(offsets, off)
			values = append(values, v)
		}
	}

	buckets := brightnessBuckets(values, len(targetHSV))

	// Second pass: rewrite hue and saturation from the bucket's target
	// colour, keeping each pixel's own brightness and alpha.
	for i, off := range offsets {
		t := targetHSV[buckets[i]]
		r, g, b := colorful.Hsv(t.H, t.S, values[i]).Clamped().RGB255()
		out.Pix[off] = r
		out.Pix[off+1] = g
		out.Pix[off+2] = b
	}

	return Recolored{Image: out}, nil
}

// sortedTargetHSV converts the targets to HSV and orders them darkest
// first. The sort is stable so equal-brightness targets keep caller order.
func sortedTargetHSV(targets []colour.RGB) []colour.HSV {
	sorted := colour.SortByBrightness(append([]colour.RGB(nil), targets...))
	out := make([]colour.HSV, len(sorted))
	for i, t := range sorted {
		out[i] = t.HSV()
	}
	return out
}

// brightnessBuckets maps each brightness reading to a target colour index
// in [0, numColors-1]. Brightness is normalized against the foreground's
// own observed minimum and maximum rather than the full channel range, so
// the whole palette is used regardless of the photo's dynamic range.
// When every reading is identical the spread is zero and all pixels map
// to bucket 0.
func brightnessBuckets(values []float64, numColors int) []int {
	buckets := make([]int, len(values))
	if len(values) == 0 || numColors < 2 {
		return buckets
	}

	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV <= minV {
		return buckets
	}

	spread := maxV - minV
	for i, v := range values {
		idx := int((v - minV) / spread * float64(numColors-1))
		if idx > numColors-1 {
			idx = numColors - 1
		}
		buckets[i] = idx
	}
	return buckets
}
