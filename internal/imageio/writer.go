package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// ErrWrite indicates that an output image could not be encoded or written.
var ErrWrite = errors.New("image write failed")

// Save encodes an image to a lossless PNG at the given path, creating any
// missing parent directories. All failures wrap ErrWrite.
func Save(img image.Image, path string) error {
	if img == nil {
		return fmt.Errorf("%w: image cannot be nil", ErrWrite)
	}
	if path == "" {
		return fmt.Errorf("%w: output path cannot be empty", ErrWrite)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: failed to create output directory: %v", ErrWrite, err)
		}
	}

	file, err := os.Create(path) // #nosec G304 - User-specified output path, intended to be written
	if err != nil {
		return fmt.Errorf("%w: failed to create output file: %v", ErrWrite, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("%w: failed to encode image: %v", ErrWrite, err)
	}

	return nil
}

// EncodePNG encodes an image to PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: image cannot be nil", ErrWrite)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: failed to encode image: %v", ErrWrite, err)
	}
	return buf.Bytes(), nil
}
