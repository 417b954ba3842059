// Package segment provides foreground/background separation for garment
// photos. Segmentation is a pluggable capability: the recolouring pipeline
// only depends on the Segmenter interface, so the model behind it can be a
// remote inference service or the built-in chroma-distance estimator.
package segment

import (
	"context"
	"errors"
	"image"
	"image/color"
)

// ErrSegmentation indicates that the underlying separation model failed.
var ErrSegmentation = errors.New("segmentation failed")

// Segmenter produces a foreground mask for an image. The mask has the same
// bounds as the input; a value greater than zero marks a pixel as part of
// the subject. The mask is soft, so consumers decide their own threshold.
type Segmenter interface {
	Segment(ctx context.Context, img image.Image) (*image.Gray, error)
}

// AlphaMask extracts the alpha channel of a 4-channel cutout image as a
// foreground mask.
func AlphaMask(img image.Image) *image.Gray {
	bounds := img.Bounds()
	mask := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			mask.SetGray(x, y, color.Gray{Y: uint8(a >> 8)})
		}
	}
	return mask
}
