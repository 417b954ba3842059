package imageio

import (
	"image"

	"golang.org/x/image/draw"
)

// Downscale scales an image down so its longest side is at most maxDim
// pixels, preserving aspect ratio. Images already within bounds are
// returned unchanged.
func Downscale(img image.Image, maxDim int) image.Image {
	if img == nil || maxDim <= 0 {
		return img
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDim && height <= maxDim {
		return img
	}

	newWidth, newHeight := width, height
	if width >= height {
		newWidth = maxDim
		newHeight = height * maxDim / width
	} else {
		newHeight = maxDim
		newWidth = width * maxDim / height
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// ScaleGray resizes a single-channel image to the given bounds. Used to
// fit a segmentation mask to its source image when the segmenter worked
// on a scaled copy.
func ScaleGray(src *image.Gray, bounds image.Rectangle) *image.Gray {
	if src == nil {
		return nil
	}
	if src.Bounds() == bounds {
		return src
	}

	dst := image.NewGray(bounds)
	draw.ApproxBiLinear.Scale(dst, bounds, src, src.Bounds(), draw.Src, nil)
	return dst
}
