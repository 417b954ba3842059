// Package recolor transfers a target colour palette onto a garment photo
// while preserving the garment's shading and texture.
//
// The pipeline is a strict sequence of stages, each a function from the
// previous stage's typed result to the next: Load -> Segment -> Apply ->
// Save. A stage invoked with a zero-value input fails with
// ErrPrecondition instead of crashing, and the orchestrator stops at the
// first failing stage without producing partial output.
package recolor

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/hashicorp/go-hclog"

	"github.com/chromaknit/chromaknit/internal/colour"
	"github.com/chromaknit/chromaknit/internal/imageio"
	"github.com/chromaknit/chromaknit/internal/segment"
)

var (
	// ErrPrecondition indicates a stage was invoked without the output of
	// its required prior stage.
	ErrPrecondition = errors.New("pipeline stage precondition not met")

	// ErrEmptyInput indicates an empty target colour list.
	ErrEmptyInput = errors.New("no target colours")
)

// Loaded is the result of the Load stage: a decoded garment image.
type Loaded struct {
	Image image.Image
}

// Segmented is the result of the Segment stage: the garment image together
// with its foreground mask. The mask has the same bounds as the image; a
// mask value greater than zero marks a foreground pixel.
type Segmented struct {
	Image image.Image
	Mask  *image.Gray
}

// Recolored is the result of the Apply stage: a freshly allocated image
// with the palette applied to the foreground.
type Recolored struct {
	Image *image.NRGBA
}

// Load decodes the garment image at the given path.
func Load(loader imageio.Loader, path string) (Loaded, error) {
	if loader == nil {
		return Loaded{}, fmt.Errorf("%w: no image loader", ErrPrecondition)
	}
	img, err := loader.Load(path)
	if err != nil {
		return Loaded{}, err
	}
	return Loaded{Image: img}, nil
}

// Segment runs the foreground separation model on a loaded image. The
// segmenter's mask is rescaled to the image bounds if necessary.
func Segment(ctx context.Context, l Loaded, seg segment.Segmenter) (Segmented, error) {
	if l.Image == nil {
		return Segmented{}, fmt.Errorf("%w: no image loaded", ErrPrecondition)
	}
	if seg == nil {
		return Segmented{}, fmt.Errorf("%w: no segmenter configured", ErrPrecondition)
	}

	mask, err := seg.Segment(ctx, l.Image)
	if err != nil {
		return Segmented{}, err
	}
	if mask.Bounds() != l.Image.Bounds() {
		mask = imageio.ScaleGray(mask, l.Image.Bounds())
	}

	return Segmented{Image: l.Image, Mask: mask}, nil
}

// Save encodes the recoloured image to the destination path, creating any
// missing parent directories.
func Save(r Recolored, path string) error {
	if r.Image == nil {
		return fmt.Errorf("%w: no recoloured image to save", ErrPrecondition)
	}
	return imageio.Save(r.Image, path)
}

// Pipeline bundles the collaborators needed to run the full recolouring
// sequence. A Pipeline holds no per-invocation state and each call builds
// its own buffers, but it is not designed for concurrent mutation of a
// single in-flight operation.
type Pipeline struct {
	Loader    imageio.Loader
	Segmenter segment.Segmenter
	Logger    hclog.Logger
}

// NewPipeline creates a Pipeline with the given segmenter, a file loader,
// and a default logger.
func NewPipeline(seg segment.Segmenter) *Pipeline {
	return &Pipeline{
		Loader:    imageio.NewFileLoader(),
		Segmenter: seg,
		Logger:    hclog.NewNullLogger(),
	}
}

// Recolor runs Load, Segment and Apply in order, returning the recoloured
// image. The first failing stage aborts the operation with no output.
func (p *Pipeline) Recolor(ctx context.Context, path string, targets []colour.RGB) (*image.NRGBA, error) {
	logger := p.logger()

	logger.Debug("loading garment image", "path", path)
	loaded, err := Load(p.Loader, path)
	if err != nil {
		return nil, err
	}

	return p.recolorLoaded(ctx, loaded, targets)
}

// RecolorImage runs Segment and Apply on an already decoded image.
func (p *Pipeline) RecolorImage(ctx context.Context, img image.Image, targets []colour.RGB) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image loaded", ErrPrecondition)
	}
	return p.recolorLoaded(ctx, Loaded{Image: img}, targets)
}

func (p *Pipeline) recolorLoaded(ctx context.Context, loaded Loaded, targets []colour.RGB) (*image.NRGBA, error) {
	logger := p.logger()

	logger.Debug("removing background")
	segmented, err := Segment(ctx, loaded, p.Segmenter)
	if err != nil {
		return nil, err
	}

	logger.Debug("applying colours", "count", len(targets))
	recolored, err := Apply(segmented, targets)
	if err != nil {
		return nil, err
	}

	return recolored.Image, nil
}

func (p *Pipeline) logger() hclog.Logger {
	if p.Logger == nil {
		return hclog.NewNullLogger()
	}
	return p.Logger
}
